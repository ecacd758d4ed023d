package auth

import (
	"context"
	"slices"
	"strings"
)

// Dashboard roles.
const (
	RoleAdmin      = "admin"
	RoleHubManager = "hub_manager"
)

// HubManagerSections are the sections a hub manager may open.
var HubManagerSections = []string{"dashboard", "riders", "shipments", "support", "profile", "settings"}

// RBACConfig configures the RBAC authorizer.
type RBACConfig struct {
	// Roles defines role configurations.
	Roles map[string]RoleConfig `mapstructure:"roles"`

	// FallbackRole applies to identities whose role is empty or not in Roles.
	FallbackRole string `mapstructure:"fallback_role"`
}

// RoleConfig defines what a role may do.
type RoleConfig struct {
	// Permissions are "<resource>:<action>" strings; "*" matches anything.
	Permissions []string `mapstructure:"permissions"`

	// Inherits lists roles this role inherits from.
	Inherits []string `mapstructure:"inherits"`

	// Allowed lists resource patterns this role can access.
	Allowed []string `mapstructure:"allowed"`

	// Denied lists resource patterns this role cannot access.
	Denied []string `mapstructure:"denied"`

	// Actions lists actions this role can perform. Empty allows all.
	Actions []string `mapstructure:"actions"`
}

// DefaultRBACConfig returns the dashboard policy: hub managers see a fixed
// subset of sections, every other role has full access.
func DefaultRBACConfig() RBACConfig {
	return RBACConfig{
		Roles: map[string]RoleConfig{
			RoleAdmin: {
				Allowed: []string{"*"},
			},
			RoleHubManager: {
				Allowed: slices.Clone(HubManagerSections),
			},
		},
		FallbackRole: RoleAdmin,
	}
}

// RBACAuthorizer provides role-based access control over dashboard sections.
//
// Contract:
// - Concurrency: safe for concurrent use; the config is not modified after construction.
// - Roles: unknown and empty roles are evaluated as FallbackRole.
type RBACAuthorizer struct {
	config RBACConfig
}

// NewRBACAuthorizer creates a new RBAC authorizer.
func NewRBACAuthorizer(config RBACConfig) *RBACAuthorizer {
	return &RBACAuthorizer{config: config}
}

// Name returns "rbac".
func (a *RBACAuthorizer) Name() string {
	return "rbac"
}

// Authorize checks if the identity is allowed to perform the action.
// A nil subject is evaluated with the fallback role.
func (a *RBACAuthorizer) Authorize(_ context.Context, req *AuthzRequest) error {
	var subjectRoles []string
	if req.Subject != nil {
		subjectRoles = req.Subject.Roles
	}
	roles := a.collectRoles(subjectRoles)

	for _, roleName := range roles {
		role, ok := a.config.Roles[roleName]
		if !ok {
			continue
		}
		if rolePermits(role, req) {
			return nil
		}
	}

	denied := ""
	if len(roles) > 0 {
		denied = roles[0]
	}
	return &AuthzError{
		Role:     denied,
		Resource: req.Resource,
		Action:   req.Action,
		Reason:   "no role permits this action",
	}
}

// Permits reports whether role may perform action on resource.
func (a *RBACAuthorizer) Permits(role, resource, action string) bool {
	var roles []string
	if role != "" {
		roles = []string{role}
	}
	return a.Authorize(context.Background(), &AuthzRequest{
		Subject:  &Identity{Roles: roles},
		Resource: resource,
		Action:   action,
	}) == nil
}

// EffectiveRole returns the role evaluated for role.
func (a *RBACAuthorizer) EffectiveRole(role string) string {
	if _, ok := a.config.Roles[role]; ok {
		return role
	}
	return a.config.FallbackRole
}

func (a *RBACAuthorizer) collectRoles(subjectRoles []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0)

	rolesToProcess := make([]string, 0, len(subjectRoles)+1)
	for _, r := range subjectRoles {
		if _, ok := a.config.Roles[r]; ok {
			rolesToProcess = append(rolesToProcess, r)
		}
	}
	if len(rolesToProcess) == 0 && a.config.FallbackRole != "" {
		rolesToProcess = append(rolesToProcess, a.config.FallbackRole)
	}

	for len(rolesToProcess) > 0 {
		current := rolesToProcess[0]
		rolesToProcess = rolesToProcess[1:]

		if seen[current] {
			continue
		}
		seen[current] = true
		result = append(result, current)

		if role, ok := a.config.Roles[current]; ok {
			for _, inherited := range role.Inherits {
				if !seen[inherited] {
					rolesToProcess = append(rolesToProcess, inherited)
				}
			}
		}
	}

	return result
}

func rolePermits(role RoleConfig, req *AuthzRequest) bool {
	// Deny takes precedence.
	for _, denied := range role.Denied {
		if matchPattern(denied, req.Resource) {
			return false
		}
	}

	if len(role.Actions) > 0 && !slices.ContainsFunc(role.Actions, func(action string) bool {
		return action == "*" || action == req.Action
	}) {
		return false
	}

	if slices.ContainsFunc(role.Allowed, func(p string) bool { return matchPattern(p, req.Resource) }) {
		return true
	}

	return slices.ContainsFunc(role.Permissions, func(perm string) bool { return matchPermission(perm, req) })
}

// matchPattern matches a pattern against a value.
// Supports "*" and a trailing "*" wildcard.
func matchPattern(pattern, value string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(value, prefix)
	}
	return pattern == value
}

// matchPermission checks a permission of the form <action> or
// <resource>:<action> against a request.
func matchPermission(perm string, req *AuthzRequest) bool {
	resource, action, found := strings.Cut(perm, ":")
	if !found {
		return perm == "*" || perm == req.Action
	}
	return matchPattern(resource, req.Resource) && (action == "*" || action == req.Action)
}

var _ Authorizer = (*RBACAuthorizer)(nil)
