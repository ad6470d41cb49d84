// Package permissions matches permission strings with wildcard support.
//
// Permission Format:
//   - "*" - Full access (all permissions)
//   - "resource.*" - All actions on a resource (e.g., "overtime.*")
//   - "resource.action" - Specific action (e.g., "overtime.read")
package permissions

import (
	"strings"
)

// Overtime permissions understood by the payroll service
const (
	OvertimeCalculate = "overtime.calculate"
	OvertimeRead      = "overtime.read"
	OvertimeDecide    = "overtime.decide"
	OvertimeAll       = "overtime.*"
	All               = "*"
)

// HasPermission checks if the granted permissions include the required permission.
// Supports wildcard matching:
//   - "*" matches everything
//   - "overtime.*" matches "overtime.read", "overtime.decide", etc.
//   - Exact match for specific permissions
func HasPermission(granted []string, required string) bool {
	if required == "" {
		return true
	}

	for _, p := range granted {
		if p == All || p == required {
			return true
		}
		if strings.HasSuffix(p, ".*") {
			prefix := strings.TrimSuffix(p, ".*")
			if strings.HasPrefix(required, prefix+".") {
				return true
			}
		}
	}
	return false
}

// Known is the closed list of permissions routes may require.
var Known = []string{
	OvertimeCalculate,
	OvertimeRead,
	OvertimeDecide,
}

// IsKnown reports whether perm is a permission some route requires.
func IsKnown(perm string) bool {
	for _, p := range Known {
		if p == perm {
			return true
		}
	}
	return false
}
