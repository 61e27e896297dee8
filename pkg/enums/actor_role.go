package enums

import "fmt"

// ActorRole distinguishes the caller type on authenticated routes.
type ActorRole string

const (
	RoleCustomer ActorRole = "customer"
	RoleVendor   ActorRole = "vendor"
	RoleAdmin    ActorRole = "admin"
)

var validActorRoles = []ActorRole{RoleCustomer, RoleVendor, RoleAdmin}

func (r ActorRole) String() string {
	return string(r)
}

// IsValid checks whether the role matches a known value.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseActorRole converts raw strings into ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
