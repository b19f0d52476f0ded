package domain

// User is the caller of an operation, resolved by the gateway
type User struct {
	ID        string
	Role      Role
	CompanyID *string
	Lang      string
}

// HasRole reports whether the user holds one of roles
func (u User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
