package user

import "strings"

type Role string

const (
	RoleSuperUser Role = "SUPER_USER"
	RoleEntryUser Role = "ENTRY_USER"
	RoleUser      Role = "USER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperUser, RoleEntryUser, RoleUser:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole is case-insensitive and rejects anything outside the three known roles.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}
