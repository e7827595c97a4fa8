package models

import "github.com/google/uuid"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Profile holds the application role of a platform user. The role column is only
// changed through the make-admin function.
type Profile struct {
	ID   uuid.UUID `db:"id"   json:"id"`
	Role string    `db:"role" json:"role"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// User is an identity resolved from a platform access token.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}
