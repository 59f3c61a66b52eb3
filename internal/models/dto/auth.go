package dto

import "github.com/hongminglow/santuario-be/internal/models"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type RegisterResponse struct {
	OK   bool        `json:"ok"`
	User models.User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUser is the subset of the user record returned after login.
type SessionUser struct {
	ID    models.ID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

type LoginResponse struct {
	OK    bool        `json:"ok"`
	User  SessionUser `json:"user"`
	Token string      `json:"token"`
}

type UpdateProfileRequest struct {
	UserID      models.ID `json:"userId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Description *string   `json:"description"`
}

type ProfileResponse struct {
	OK      bool        `json:"ok"`
	Message string      `json:"message,omitempty"`
	User    models.User `json:"user"`
}

type OKResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// NewSessionUser strips a user down to the fields exposed in a session.
func NewSessionUser(u models.User) SessionUser {
	return SessionUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
