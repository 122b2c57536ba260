package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/user-admin/internal/domain"
)

// MemoryUserRepository is an in-memory UserRepository used in tests and for
// running the service without a database. It enforces the same email
// uniqueness the users table does, surfacing violations as pgconn errors so
// callers exercise the same mapping paths as against Postgres.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User // keyed by id
}

// NewMemoryUserRepository constructs an empty in-memory store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.User)}
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(user)
}

func (r *MemoryUserRepository) insertLocked(user *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return uniqueViolation()
		}
	}
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	for id, existing := range r.users {
		if id != user.ID && existing.Email == user.Email {
			return uniqueViolation()
		}
	}
	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryUserRepository) List(_ context.Context, filter ListFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := r.matchedLocked(filter.Age)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	start := (filter.Page - 1) * filter.PageSize
	if start >= len(matched) {
		return nil, nil
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (r *MemoryUserRepository) Count(_ context.Context, age *int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.matchedLocked(age))), nil
}

func (r *MemoryUserRepository) matchedLocked(age *int) []domain.User {
	matched := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		if age != nil && user.Age != *age {
			continue
		}
		matched = append(matched, user)
	}
	return matched
}

func (r *MemoryUserRepository) FindExistingEmails(_ context.Context, emails []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	known := make(map[string]struct{}, len(r.users))
	for _, user := range r.users {
		known[user.Email] = struct{}{}
	}

	var existing []string
	for _, email := range emails {
		if _, ok := known[email]; ok {
			existing = append(existing, email)
		}
	}
	return existing, nil
}

func (r *MemoryUserRepository) CreateMany(_ context.Context, users []domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var inserted int64
	for i := range users {
		if err := r.insertLocked(&users[i]); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// InTx snapshots the store before running fn and restores the snapshot when
// fn fails, giving the same all-or-nothing behavior as a database
// transaction.
func (r *MemoryUserRepository) InTx(_ context.Context, fn func(UserRepository) error) error {
	r.mu.Lock()
	snapshot := make(map[string]domain.User, len(r.users))
	for id, user := range r.users {
		snapshot[id] = user
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.users = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

// Len reports how many records the store holds.
func (r *MemoryUserRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}
