package auth

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CookieName is the session cookie carrying the JWT.
const CookieName = "token"

const claimsKey = "auth_claims"

const (
	loginPath     = "/"
	dashboardPath = "/dashboard"
)

// protectedPrefixes require a valid token.
var protectedPrefixes = []string{"/dashboard", "/api/users"}

// authActionPrefixes are always allowed so login/logout work with any
// cookie state.
var authActionPrefixes = []string{"/api/auth"}

// RequestGate decides per request whether to allow it, send the caller to
// the login page, or send an already-authenticated caller to the dashboard.
type RequestGate struct {
	tokens   *TokenManager
	denylist *TokenDenylist
}

// NewRequestGate constructs the gate.
func NewRequestGate(tokens *TokenManager, denylist *TokenDenylist) *RequestGate {
	return &RequestGate{tokens: tokens, denylist: denylist}
}

// Handle applies the routing decision table, first match wins:
//
//	login page  + valid token   -> redirect to dashboard
//	login page  + invalid token -> allow (render login)
//	protected   + valid token   -> allow
//	protected   + invalid token -> 401 for API paths, redirect to login otherwise
//	auth action + any token     -> allow
//	anything else               -> allow
func (g *RequestGate) Handle(c *fiber.Ctx) error {
	path := c.Path()
	claims, valid := g.verify(c)

	if path == loginPath {
		if valid {
			return c.Redirect(dashboardPath, fiber.StatusFound)
		}
		return c.Next()
	}

	if hasPrefix(path, protectedPrefixes) {
		if !valid {
			if strings.HasPrefix(path, "/api/") {
				return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
			}
			return c.Redirect(loginPath, fiber.StatusFound)
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}

	if hasPrefix(path, authActionPrefixes) {
		return c.Next()
	}

	return c.Next()
}

// verify extracts the cookie token and checks signature, expiry, and
// revocation. Every failure mode is uniformly "invalid".
func (g *RequestGate) verify(c *fiber.Ctx) (*Claims, bool) {
	token := c.Cookies(CookieName)
	if token == "" {
		return nil, false
	}
	claims, err := g.tokens.ParseToken(token)
	if err != nil {
		return nil, false
	}
	if g.denylist.IsRevoked(c.Context(), claims.ID) {
		return nil, false
	}
	return claims, true
}

// ClaimsFromContext retrieves the authenticated caller's claims.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}

func hasPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
