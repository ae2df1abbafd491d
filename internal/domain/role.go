package domain

import "fmt"

// Role is the closed set of roles a profile can hold. Keeping this a typed
// constant set (rather than free-form strings) means capability checks live
// in exactly one place.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleWorker  Role = "worker"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleWorker:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// HasManagerCapability reports whether the role may create tasks, read the
// full roster and see team-wide performance. Admins hold every manager
// capability.
func (r Role) HasManagerCapability() bool {
	return r == RoleAdmin || r == RoleManager
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// AssignableRoles are the roles an admin may grant or revoke through the
// roster endpoints. The admin role itself is never assignable this way.
func AssignableRoles() []Role {
	return []Role{RoleWorker, RoleManager}
}

func (r Role) Assignable() bool {
	for _, a := range AssignableRoles() {
		if r == a {
			return true
		}
	}
	return false
}
