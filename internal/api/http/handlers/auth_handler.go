package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-admin/internal/api/dto"
	"github.com/spec-kit/user-admin/internal/auth"
	"github.com/spec-kit/user-admin/internal/service"
	apperrors "github.com/spec-kit/user-admin/pkg/util"
)

// AuthHandler exposes the login and logout endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	secure bool
}

// NewAuthHandler constructs the handler. secure controls the cookie's
// Secure attribute and should be on in production.
func NewAuthHandler(authService *service.AuthService, secure bool) *AuthHandler {
	return &AuthHandler{auth: authService, secure: secure}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password are required")
	}

	user, token, expiresAt, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})

	return c.Status(http.StatusOK).JSON(dto.LoginResponse{
		Success: true,
		User:    user.Public(),
	})
}

// Logout handles POST /api/auth/logout. It always succeeds: the session
// cookie is cleared and, best-effort, the token is revoked server-side.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.auth.Logout(c.Context(), c.Cookies(auth.CookieName))

	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(dto.LogoutResponse{Success: true, Message: "logged out successfully"})
}
