// Package auth reads dashboard sessions from cookies and gates routes and
// menu entries by role.
//
// A session is a token cookie plus a role cookie. Token presence means
// authenticated. When a signing key is configured the token is verified as a
// JWT and its role claim replaces the cookie role; otherwise the identity is
// marked unverified.
//
// Everything here is advisory. Guard and the RBAC authorizer shape what the
// dashboard shows; the API must still enforce authorization on its own and
// answers 401/403 when it does not agree.
package auth
