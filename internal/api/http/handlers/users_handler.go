package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/user-admin/internal/api/dto"
	"github.com/spec-kit/user-admin/internal/domain"
	"github.com/spec-kit/user-admin/internal/service"
	"github.com/spec-kit/user-admin/internal/upload"
	apperrors "github.com/spec-kit/user-admin/pkg/util"
)

// UsersHandler exposes the user-management API: single create, listing,
// update, delete, and the spreadsheet bulk import.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	user, err := h.users.CreateUser(c.Context(), service.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Age:       req.Age,
		Password:  req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return apperrors.NewConflict("email already registered")
		}
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"user": user.Public()})
}

// List handles GET /api/users with the same pagination semantics as the
// dashboard page.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	result, err := h.users.ListUsers(c.Context(), listParamsFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(dto.UserListResponse{
		Data:       publicViews(result.Users),
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
		Age:        result.Age,
	})
}

// Update handles PUT /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	user, err := h.users.UpdateUser(c.Context(), c.Params("id"), service.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Age:       req.Age,
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return apperrors.NewConflict("email already registered")
		case errors.Is(err, pgx.ErrNoRows):
			return apperrors.NewNotFound("user")
		}
		return err
	}

	return c.JSON(fiber.Map{"user": user.Public()})
}

// Delete handles DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.DeleteUser(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user")
		}
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Upload handles POST /api/users/upload (multipart form, field "file").
// Parse failures and row-level errors come back as 400 with the offending
// spreadsheet row where one exists.
func (h *UsersHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("file could not be read")
	}
	defer file.Close()

	rows, err := upload.Parse(file)
	if err != nil {
		var missing *upload.MissingColumnsError
		switch {
		case errors.Is(err, upload.ErrNoSheet):
			return apperrors.NewValidationError("no sheet found")
		case errors.Is(err, upload.ErrNoData):
			return apperrors.NewValidationError("no data rows found")
		case errors.As(err, &missing):
			return apperrors.NewValidationError(missing.Error())
		}
		return apperrors.NewValidationError("file could not be parsed")
	}

	count, err := h.users.ImportRows(c.Context(), rows)
	if err != nil {
		var importErr *service.ImportError
		if errors.As(err, &importErr) {
			return apperrors.NewUploadError(importErr.Message, importErr.Row)
		}
		return err
	}

	return c.JSON(dto.UploadResponse{Message: "users imported", Count: count})
}

func listParamsFromQuery(c *fiber.Ctx) service.ListParams {
	params := service.ListParams{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", 10),
	}
	if age := c.QueryInt("age", 0); age > 0 {
		params.Age = &age
	}
	return params
}

func publicViews(users []domain.User) []domain.PublicUser {
	views := make([]domain.PublicUser, len(users))
	for i := range users {
		views[i] = users[i].Public()
	}
	return views
}
