package model

// Role distinguishes the two credentialed account kinds. Pin updates and
// access checks dispatch on this enum instead of interpolating table names.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleCustomer
}

// Identity is the request-scoped authenticated principal. It is resolved
// from the session token once per request and passed explicitly into every
// service operation; services never read ambient session state.
type Identity struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	Name string `json:"name"`
}

func (i Identity) IsOwner() bool {
	return i.Role == RoleOwner
}

func (i Identity) IsCustomer() bool {
	return i.Role == RoleCustomer
}
