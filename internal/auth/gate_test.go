package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newGateApp(t *testing.T, tm *TokenManager) *fiber.App {
	t.Helper()

	gate := NewRequestGate(tm, NewTokenDenylist(nil, zap.NewNop()))
	app := fiber.New()
	app.Use(gate.Handle)

	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/", ok)
	app.Get("/dashboard", ok)
	app.Get("/api/users", ok)
	app.Post("/api/auth/login", ok)
	app.Get("/health/live", ok)

	return app
}

func validCookie(t *testing.T, tm *TokenManager) *http.Cookie {
	t.Helper()
	token, _, err := tm.GenerateToken("user-1", "admin@example.com")
	require.NoError(t, err)
	return &http.Cookie{Name: CookieName, Value: token}
}

func TestRequestGateDecisionTable(t *testing.T) {
	tm := NewTokenManager("gate-secret", time.Hour)
	app := newGateApp(t, tm)

	badCookie := &http.Cookie{Name: CookieName, Value: "garbage"}

	tests := []struct {
		name         string
		method       string
		path         string
		cookie       *http.Cookie
		wantStatus   int
		wantLocation string
	}{
		{"login page with valid token redirects to dashboard", "GET", "/", validCookie(t, tm), http.StatusFound, "/dashboard"},
		{"login page without token renders", "GET", "/", nil, http.StatusOK, ""},
		{"login page with invalid token renders", "GET", "/", badCookie, http.StatusOK, ""},
		{"dashboard with valid token allowed", "GET", "/dashboard", validCookie(t, tm), http.StatusOK, ""},
		{"dashboard without token redirects to login", "GET", "/dashboard", nil, http.StatusFound, "/"},
		{"dashboard with invalid token redirects to login", "GET", "/dashboard", badCookie, http.StatusFound, "/"},
		{"protected api without token gets 401", "GET", "/api/users", nil, http.StatusUnauthorized, ""},
		{"protected api with invalid token gets 401", "GET", "/api/users", badCookie, http.StatusUnauthorized, ""},
		{"protected api with valid token allowed", "GET", "/api/users", validCookie(t, tm), http.StatusOK, ""},
		{"auth action allowed without token", "POST", "/api/auth/login", nil, http.StatusOK, ""},
		{"auth action allowed with invalid token", "POST", "/api/auth/login", badCookie, http.StatusOK, ""},
		{"other paths always allowed", "GET", "/health/live", nil, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, resp.Header.Get("Location"))
			}
		})
	}
}

func TestRequestGateExpiredTokenIsInvalid(t *testing.T) {
	tm := NewTokenManager("gate-secret", time.Millisecond)
	token, _, err := tm.GenerateToken("user-1", "admin@example.com")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	app := newGateApp(t, tm)
	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestClaimsFromContextMissing(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, ok := ClaimsFromContext(c)
		assert.False(t, ok)
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	resp.Body.Close()
}
