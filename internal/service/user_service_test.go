package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-admin/internal/domain"
	"github.com/spec-kit/user-admin/internal/repository"
)

func TestCreateUserNormalizesEmail(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := newTestUserService(repo)

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		FirstName: " Jane ", LastName: "Doe", Email: "  Jane@Example.COM ", Age: 28, Password: "secret-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "Jane", user.FirstName)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "secret-1", user.PasswordHash)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := newTestUserService(repo)

	input := CreateUserInput{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Age: 28, Password: "secret-1"}
	_, err := svc.CreateUser(context.Background(), input)
	require.NoError(t, err)

	input.Email = "JANE@example.com"
	_, err = svc.CreateUser(context.Background(), input)
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, 1, repo.Len())
}

func TestUpdateUserChecksEmailUniqueness(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := newTestUserService(repo)

	first, err := svc.CreateUser(context.Background(), CreateUserInput{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Age: 28, Password: "secret-1",
	})
	require.NoError(t, err)
	_, err = svc.CreateUser(context.Background(), CreateUserInput{
		FirstName: "John", LastName: "Smith", Email: "john@example.com", Age: 30, Password: "secret-2",
	})
	require.NoError(t, err)

	_, err = svc.UpdateUser(context.Background(), first.ID, CreateUserInput{
		FirstName: "Jane", LastName: "Doe", Email: "john@example.com", Age: 28,
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	updated, err := svc.UpdateUser(context.Background(), first.ID, CreateUserInput{
		FirstName: "Janet", LastName: "Doe", Email: "jane@example.com", Age: 29,
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet", updated.FirstName)
	assert.Equal(t, 29, updated.Age)
	assert.Equal(t, first.PasswordHash, updated.PasswordHash, "empty password keeps the stored hash")
}

func TestDeleteUser(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := newTestUserService(repo)

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Age: 28, Password: "secret-1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(context.Background(), user.ID))
	assert.Equal(t, 0, repo.Len())
	assert.Error(t, svc.DeleteUser(context.Background(), user.ID))
}

func seedUsers(t *testing.T, repo *repository.MemoryUserRepository, n int, age int) {
	t.Helper()
	for i := 0; i < n; i++ {
		user := domain.User{
			FirstName:    "User",
			LastName:     fmt.Sprintf("Number%03d", i),
			Email:        fmt.Sprintf("user%03d-age%d@example.com", i, age),
			Age:          age,
			PasswordHash: "x",
		}
		require.NoError(t, repo.Create(context.Background(), &user))
	}
}

func TestListUsersClampsPagination(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := newTestUserService(repo)
	seedUsers(t, repo, 60, 30)

	result, err := svc.ListUsers(context.Background(), ListParams{Page: 0, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Page, "page 0 behaves as page 1")
	assert.Equal(t, 50, result.PageSize, "pageSize clamps to 50")
	assert.Equal(t, int64(60), result.Total)
	assert.Equal(t, 2, result.TotalPages)
	assert.Len(t, result.Users, 50)
}

func TestListUsersDefaults(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := newTestUserService(repo)
	seedUsers(t, repo, 15, 30)

	result, err := svc.ListUsers(context.Background(), ListParams{Page: -3, PageSize: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 10, result.PageSize)
	assert.Len(t, result.Users, 10)
	assert.Equal(t, 2, result.TotalPages)
}

func TestListUsersAgeFilter(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := newTestUserService(repo)
	seedUsers(t, repo, 5, 30)
	seedUsers(t, repo, 3, 44)

	age := 44
	result, err := svc.ListUsers(context.Background(), ListParams{Page: 1, PageSize: 10, Age: &age})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total)
	assert.Len(t, result.Users, 3)
	for _, user := range result.Users {
		assert.Equal(t, 44, user.Age)
	}
}

func TestListUsersEmptyStore(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := newTestUserService(repo)

	result, err := svc.ListUsers(context.Background(), ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Total)
	assert.Equal(t, 1, result.TotalPages, "an empty listing still reports one page")
	assert.Empty(t, result.Users)
}
