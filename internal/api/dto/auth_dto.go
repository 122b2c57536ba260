package dto

import "github.com/spec-kit/user-admin/internal/domain"

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login. The token travels only in
// the session cookie, never in the body.
type LoginResponse struct {
	Success bool              `json:"success"`
	User    domain.PublicUser `json:"user"`
}

// LogoutResponse acknowledges a logout.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
