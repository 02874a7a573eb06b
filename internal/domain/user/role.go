package user

import "strings"

// Role is the access level attached to a user and carried in session claims.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts any casing of a known role.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !role.IsValid() {
		return "", ErrInvalidUserRole
	}
	return role, nil
}

// RoleSet is the set of roles a protected route accepts.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}
