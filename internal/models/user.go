package models

import "time"

// User captures application-facing fields for an authenticated identity.
type User struct {
	ID           ID        `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Description  string    `json:"description"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// DisplayDescription falls back to the role placeholder when no description was saved.
func (u User) DisplayDescription() string {
	if u.Description == "" {
		return DefaultDescription(u.Role)
	}
	return u.Description
}
