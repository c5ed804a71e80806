package model

import "strings"

// Role is a user's authorization role.
type Role string

// Roles.
const (
	RoleUser             Role = "User"
	RoleAdmin            Role = "Admin"
	RoleLogisticsOfficer Role = "LogisticsOfficer"
	RoleSystemAdmin      Role = "SystemAdmin"
)

// Roles lists every known role.
var Roles = []Role{RoleUser, RoleAdmin, RoleLogisticsOfficer, RoleSystemAdmin}

// ParseRole resolves a role name case-insensitively.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Roles {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// CanApprove reports whether the role may approve or reject pending requests.
func (r Role) CanApprove() bool {
	return r.is(RoleAdmin) || r.is(RoleSystemAdmin)
}

// CanFulfill reports whether the role may issue stock and complete requests.
func (r Role) CanFulfill() bool {
	return r.is(RoleLogisticsOfficer) || r.is(RoleSystemAdmin)
}

// CanExecuteRepairs reports whether the role may move under-repair items along.
func (r Role) CanExecuteRepairs() bool {
	return r.is(RoleLogisticsOfficer) || r.is(RoleSystemAdmin)
}

// IsAdministrative reports whether the role may manage users and read the audit log.
func (r Role) IsAdministrative() bool {
	return r.is(RoleSystemAdmin)
}

func (r Role) is(other Role) bool {
	return strings.EqualFold(string(r), string(other))
}

// RolesWith returns the roles for which capability holds.
func RolesWith(capability func(Role) bool) []Role {
	var out []Role
	for _, r := range Roles {
		if capability(r) {
			out = append(out, r)
		}
	}
	return out
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID       int64
	Username string
	Role     Role
}
