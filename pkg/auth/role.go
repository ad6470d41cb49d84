// Package auth holds the closed set of roles the payroll service recognises
// and the single policy deciding what each role may do.
package auth

import (
	"strings"

	"github.com/medflow/payroll-backend/pkg/permissions"
)

// Role is a caller role carried in the bearer token
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleHRManager  Role = "hr_manager"
	RoleSupervisor Role = "supervisor"
	RoleEmployee   Role = "employee"
)

// Roles lists every valid role
var Roles = []Role{RoleAdmin, RoleHRManager, RoleSupervisor, RoleEmployee}

// ParseRole maps a token claim to a Role; unknown names are rejected.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

func (r Role) String() string { return string(r) }

var grants = map[Role][]string{
	RoleAdmin:      {permissions.All},
	RoleHRManager:  {permissions.OvertimeAll},
	RoleSupervisor: {permissions.OvertimeRead, permissions.OvertimeDecide},
	RoleEmployee:   {permissions.OvertimeRead},
}

// Authorize is the only place access decisions are made.
func Authorize(r Role, permission string) bool {
	return permissions.HasPermission(grants[r], permission)
}
