package domain

import "strings"

type Role string

const (
	RoleAdmin     Role = "admin"
	RolePastor    Role = "pastor"
	RoleStaff     Role = "staff"
	RoleVolunteer Role = "volunteer"
)

func AllRoles() []Role {
	return []Role{RoleAdmin, RolePastor, RoleStaff, RoleVolunteer}
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RolePastor, RoleStaff, RoleVolunteer:
		return r, true
	default:
		return "", false
	}
}

func (r Role) String() string { return string(r) }
