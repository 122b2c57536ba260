package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-admin/internal/api/http/handlers"
	"github.com/spec-kit/user-admin/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Users     *handlers.UsersHandler
	Dashboard *handlers.DashboardHandler
	Gate      *auth.RequestGate
}

// RegisterRoutes wires HTTP routes. The request gate runs before every
// route and enforces the cookie-based authorization table; routes under
// /api/users and /dashboard are only reached with a valid session.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Gate.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/", cfg.Dashboard.LoginPage)
	app.Get("/dashboard", cfg.Dashboard.Dashboard)
	app.Get("/dashboard/users/:id", cfg.Dashboard.UserDetail)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	users := app.Group("/api/users")
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	users.Post("/upload", cfg.Users.Upload)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)
}
