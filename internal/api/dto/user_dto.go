package dto

import (
	"errors"
	"regexp"
	"strings"

	"github.com/spec-kit/user-admin/internal/domain"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// CreateUserRequest payload for single-user creation.
type CreateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
	Password  string `json:"password"`
}

// Validate checks fields in declaration order and returns the first
// failure. The single-user path requires a 6+ character password; the bulk
// import deliberately does not.
func (r *CreateUserRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" {
		return errors.New("firstName is required")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return errors.New("lastName is required")
	}
	if !emailPattern.MatchString(strings.ToLower(strings.TrimSpace(r.Email))) {
		return errors.New("email is invalid")
	}
	if r.Age <= 0 {
		return errors.New("age is invalid")
	}
	if len(r.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

// UpdateUserRequest payload for profile updates. An empty password keeps
// the stored one; a provided password follows the creation rule.
type UpdateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
	Password  string `json:"password"`
}

// Validate mirrors CreateUserRequest.Validate with the password optional.
func (r *UpdateUserRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" {
		return errors.New("firstName is required")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return errors.New("lastName is required")
	}
	if !emailPattern.MatchString(strings.ToLower(strings.TrimSpace(r.Email))) {
		return errors.New("email is invalid")
	}
	if r.Age <= 0 {
		return errors.New("age is invalid")
	}
	if r.Password != "" && len(r.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

// UserListResponse is the JSON listing mirror of the dashboard page.
type UserListResponse struct {
	Data       []domain.PublicUser `json:"data"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	Total      int64               `json:"total"`
	TotalPages int                 `json:"totalPages"`
	Age        *int                `json:"age,omitempty"`
}

// UploadResponse reports a successful import.
type UploadResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}
