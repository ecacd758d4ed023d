// Package notify is the user-facing notification surface: the toast channel
// that mutations report success and failure through.
//
// Notify calls are fire-and-forget. A Dispatcher decouples callers from slow
// sinks and drops notifications rather than block a mutation.
package notify
