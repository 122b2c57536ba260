package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/user-admin/internal/service"
)

// DashboardHandler renders the server-side pages: login, the paginated
// user listing, and the user detail view.
type DashboardHandler struct {
	users *service.UserService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(userService *service.UserService) *DashboardHandler {
	return &DashboardHandler{users: userService}
}

// LoginPage handles GET /.
func (h *DashboardHandler) LoginPage(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{"Title": "Sign in"})
}

// Dashboard handles GET /dashboard.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	result, err := h.users.ListUsers(c.Context(), listParamsFromQuery(c))
	if err != nil {
		return err
	}

	age := 0
	if result.Age != nil {
		age = *result.Age
	}

	return c.Render("dashboard", fiber.Map{
		"Title":      "Users",
		"Users":      publicViews(result.Users),
		"Page":       result.Page,
		"PageSize":   result.PageSize,
		"Total":      result.Total,
		"TotalPages": result.TotalPages,
		"Age":        age,
		"HasPrev":    result.Page > 1,
		"HasNext":    result.Page < result.TotalPages,
		"PrevPage":   result.Page - 1,
		"NextPage":   result.Page + 1,
	})
}

// UserDetail handles GET /dashboard/users/:id.
func (h *DashboardHandler) UserDetail(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(http.StatusNotFound).Render("notfound", fiber.Map{"Title": "Not found"})
		}
		return err
	}

	return c.Render("user", fiber.Map{
		"Title": user.FirstName + " " + user.LastName,
		"User":  user.Public(),
	})
}
