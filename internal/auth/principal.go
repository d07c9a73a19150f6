// Package auth verifies signed session tokens and models the authenticated
// principal the gateway acts on behalf of. Verification is stateless: the
// token itself carries the user identity, role, and tenant association.
package auth

import "strings"

// Role is the authorization role carried in a session token.
type Role string

const (
	// RoleAdmin has full platform access.
	RoleAdmin Role = "ADMIN"

	// RoleExecutive sees the executive reporting surface and a restricted
	// slice of the operational dashboard.
	RoleExecutive Role = "EXECUTIVE"

	// RoleEditor manages microsite content for a single tenant.
	RoleEditor Role = "EDITOR"
)

// ParseRole normalizes a raw role claim. Unknown or empty values map to
// RoleEditor, the least privileged role.
func ParseRole(raw string) Role {
	switch Role(strings.ToUpper(raw)) {
	case RoleAdmin:
		return RoleAdmin
	case RoleExecutive:
		return RoleExecutive
	default:
		return RoleEditor
	}
}

// Principal is the verified identity extracted from a valid session token.
type Principal struct {
	UserID   string
	Email    string
	Role     Role
	TenantID string
}

// LandingPath returns the in-app home for this principal: executives land
// on the executive surface, everyone else on the dashboard.
func (p *Principal) LandingPath() string {
	if p.Role == RoleExecutive {
		return "/executive"
	}
	return "/dashboard"
}

// executiveDashboardAllowlist holds the dashboard sub-paths executives may
// reach even though the dashboard as a whole belongs to operational roles.
var executiveDashboardAllowlist = []string{
	"/dashboard/leads",
	"/dashboard/reports",
}

// CanAccess reports whether the principal may view the given path. The only
// role-restricted surfaces are the executive area, which is exclusive to
// executives and admins, and the dashboard, where executives are limited to
// an allowlist.
func (p *Principal) CanAccess(path string) bool {
	if isUnderPath(path, "/executive") {
		return p.Role == RoleExecutive || p.Role == RoleAdmin
	}

	if isUnderPath(path, "/dashboard") && p.Role == RoleExecutive {
		for _, allowed := range executiveDashboardAllowlist {
			if isUnderPath(path, allowed) {
				return true
			}
		}
		return false
	}

	return true
}

// isUnderPath reports whether path equals prefix or is nested below it.
// "/dashboards" is not under "/dashboard".
func isUnderPath(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
