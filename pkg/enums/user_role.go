package enums

import "fmt"

// UserRole represents a franchise-level permissions role.
type UserRole string

const (
	UserRoleSuperadmin  UserRole = "superadmin"
	UserRoleAdmin       UserRole = "admin"
	UserRoleManager     UserRole = "manager"
	UserRoleSalesperson UserRole = "salesperson"
)

var validUserRoles = []UserRole{
	UserRoleSuperadmin,
	UserRoleAdmin,
	UserRoleManager,
	UserRoleSalesperson,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// RequiresLocation reports whether the role must carry a location assignment.
func (r UserRole) RequiresLocation() bool {
	return r != UserRoleSuperadmin
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
