package auth

import "github.com/Adarsh0311/shopsphere-backend/models"

// Identity is the authenticated caller, resolved once per request.
type Identity struct {
	UserID   string
	Username string
	Roles    []string
}

func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i Identity) IsAdmin() bool { return i.HasRole(models.RoleAdmin) }
