package auth

import (
	"context"
	"fmt"
)

// Common actions.
const (
	ActionView   = "view"
	ActionManage = "manage"
)

// Authorizer determines if an identity may act on a resource.
type Authorizer interface {
	// Authorize returns nil if permitted, or an error (typically *AuthzError).
	Authorize(ctx context.Context, req *AuthzRequest) error

	// Name returns a unique identifier for this authorizer.
	Name() string
}

// AuthzRequest contains the information needed for authorization.
type AuthzRequest struct {
	// Subject is the identity making the request.
	Subject *Identity

	// Resource is the target section, e.g. "riders".
	Resource string

	// Action is the requested action, e.g. "view".
	Action string
}

// AuthzError represents an authorization failure.
type AuthzError struct {
	// Role is the effective role that was denied.
	Role string

	// Resource is the resource that was denied access to.
	Resource string

	// Action is the action that was denied.
	Action string

	// Reason explains why access was denied.
	Reason string
}

// Error returns the error message.
func (e *AuthzError) Error() string {
	return fmt.Sprintf("authorization denied: role=%q resource=%q action=%q reason=%q",
		e.Role, e.Resource, e.Action, e.Reason)
}

// Is reports whether this error matches the target.
func (e *AuthzError) Is(target error) bool {
	return target == ErrForbidden
}

// AllowAllAuthorizer permits all requests.
type AllowAllAuthorizer struct{}

// Authorize always returns nil (permitted).
func (a AllowAllAuthorizer) Authorize(_ context.Context, _ *AuthzRequest) error {
	return nil
}

// Name returns "allow_all".
func (a AllowAllAuthorizer) Name() string {
	return "allow_all"
}
