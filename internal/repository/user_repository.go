package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/user-admin/internal/domain"
)

// ListFilter captures dashboard listing parameters. Age, when non-nil,
// restricts the result to users of exactly that age.
type ListFilter struct {
	Page     int
	PageSize int
	Age      *int
}

// UserRepository defines persistence access for user records.
//
// InTx runs fn against a repository bound to a single database transaction;
// the transaction commits when fn returns nil and rolls back otherwise. The
// bulk-import pipeline relies on this to keep its existence check and insert
// atomic.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter ListFilter) ([]domain.User, error)
	Count(ctx context.Context, age *int) (int64, error)
	FindExistingEmails(ctx context.Context, emails []string) ([]string, error)
	CreateMany(ctx context.Context, users []domain.User) (int64, error)
	InTx(ctx context.Context, fn func(UserRepository) error) error
}

// querier is the subset of pgx used by the repository. Both *pgxpool.Pool
// and pgx.Tx satisfy it, so the same code serves pooled and transactional
// access.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

type userRepository struct {
	db   querier
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{db: pool, pool: pool}
}

const userColumns = `id, first_name, last_name, email, age, password_hash, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (first_name, last_name, email, age, password_hash)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Age,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET first_name=$1, last_name=$2, email=$3, age=$4, password_hash=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.db.Exec(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Age,
		user.PasswordHash,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Age,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter ListFilter) ([]domain.User, error) {
	offset := (filter.Page - 1) * filter.PageSize

	query := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if filter.Age != nil {
		args = append(args, *filter.Age)
		query += ` WHERE age=$1`
	}
	args = append(args, filter.PageSize, offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.Age,
			&user.PasswordHash,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) Count(ctx context.Context, age *int) (int64, error) {
	var total int64
	var err error
	if age != nil {
		err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE age=$1`, *age).Scan(&total)
	} else {
		err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	}
	return total, err
}

// FindExistingEmails returns the subset of emails already present in the
// store, in one query. The result order is whatever the database yields;
// callers must not depend on it.
func (r *userRepository) FindExistingEmails(ctx context.Context, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, `SELECT email FROM users WHERE email = ANY($1)`, emails)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		existing = append(existing, email)
	}
	return existing, rows.Err()
}

// CreateMany bulk-inserts user records via COPY. Generated columns (id,
// timestamps) take their table defaults.
func (r *userRepository) CreateMany(ctx context.Context, users []domain.User) (int64, error) {
	if len(users) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(users))
	for i, user := range users {
		rows[i] = []any{user.FirstName, user.LastName, user.Email, user.Age, user.PasswordHash}
	}

	return r.db.CopyFrom(ctx,
		pgx.Identifier{"users"},
		[]string{"first_name", "last_name", "email", "age", "password_hash"},
		pgx.CopyFromRows(rows),
	)
}

func (r *userRepository) InTx(ctx context.Context, fn func(UserRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&userRepository{db: tx, pool: r.pool}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. The users_email_key constraint is the storage-level backstop
// against a concurrent insert racing the import's existence check.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

