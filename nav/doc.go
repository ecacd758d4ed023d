// Package nav holds the dashboard's navigation menu and filters it by role.
//
// Filtering is a display convenience only. Hiding an entry does not protect
// the data behind it; the API enforces access on its own.
package nav
