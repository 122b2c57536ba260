package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/user-admin/internal/auth"
	"github.com/spec-kit/user-admin/internal/domain"
	"github.com/spec-kit/user-admin/internal/events"
	"github.com/spec-kit/user-admin/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// CreateUserInput carries a validated single-user creation payload.
// Field-level validation happens at the transport layer; the service
// normalizes the email and enforces uniqueness.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Age       int
	Password  string
}

// ListParams are raw listing parameters before clamping.
type ListParams struct {
	Page     int
	PageSize int
	Age      *int
}

// ListResult is one page of users plus pagination metadata.
type ListResult struct {
	Users      []domain.User
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
	Age        *int
}

// UserService orchestrates user CRUD and the bulk-import pipeline.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	bcryptCost int
	logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, bcryptCost int, logger *zap.Logger) *UserService {
	return &UserService{
		users:      users,
		dispatcher: dispatcher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// CreateUser creates a single user with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        email,
		Age:          input.Age,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventUserCreated, user.ID, map[string]any{"email": user.Email}))
	return user, nil
}

// GetUser fetches a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateUser replaces a user's profile fields. A non-empty password is
// rehashed; an empty one keeps the stored hash.
func (s *UserService) UpdateUser(ctx context.Context, id string, input CreateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	if email != user.Email {
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.Email = email
	user.Age = input.Age
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventUserUpdated, user.ID, map[string]any{"email": user.Email}))
	return user, nil
}

// DeleteUser removes a user by id.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.NewEvent(events.EventUserDeleted, id, nil))
	return nil
}

// ListUsers returns one page of users. Page floors at 1 and pageSize is
// clamped to [1, 50], so out-of-range requests degrade instead of failing.
func (s *UserService) ListUsers(ctx context.Context, params ListParams) (*ListResult, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total, err := s.users.Count(ctx, params.Age)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, repository.ListFilter{Page: page, PageSize: pageSize, Age: params.Age})
	if err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	if totalPages < 1 {
		totalPages = 1
	}

	return &ListResult{
		Users:      users,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		Age:        params.Age,
	}, nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(ctx, event)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
