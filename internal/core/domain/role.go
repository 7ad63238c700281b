package domain

import (
	"encoding/json"
	"strings"
)

// Role is the intent a user declared when joining the marketplace.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleTenant Role = "tenant"
	RoleNone   Role = "none"
)

// legacyRoles maps the values written by the first web client.
var legacyRoles = map[string]Role{
	"proprietaire": RoleOwner,
	"locataire":    RoleTenant,
	"aucun":        RoleNone,
}

// Roles lists every defined role.
func Roles() []Role {
	return []Role{RoleOwner, RoleTenant, RoleNone}
}

// IsValid reports whether r is one of the defined roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleTenant, RoleNone:
		return true
	}
	return false
}

// Normalize maps unknown roles to RoleNone.
func (r Role) Normalize() Role {
	if r.IsValid() {
		return r
	}
	return RoleNone
}

// Label is the human-facing name shown in navigation.
func (r Role) Label() string {
	switch r {
	case RoleOwner:
		return "Owner"
	case RoleTenant:
		return "Tenant"
	default:
		return "No role yet"
	}
}

// ParseRole accepts current and legacy spellings. An empty string parses as
// RoleNone.
func ParseRole(s string) (Role, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return RoleNone, nil
	}
	if r := Role(v); r.IsValid() {
		return r, nil
	}
	if r, ok := legacyRoles[v]; ok {
		return r, nil
	}
	return "", ErrInvalidRole
}

// UnmarshalJSON normalises legacy spellings. Unknown values are kept verbatim
// so callers can decide whether to reject or downgrade them.
func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		*r = Role(s)
		return nil
	}
	*r = parsed
	return nil
}
