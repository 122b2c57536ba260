package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/user-admin/internal/repository"
	"github.com/spec-kit/user-admin/internal/upload"
)

func newTestUserService(repo repository.UserRepository) *UserService {
	return NewUserService(repo, nil, bcrypt.MinCost, zap.NewNop())
}

func row(number int, firstName, lastName, email, age, password string) upload.Row {
	return upload.Row{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Age:       age,
		Password:  password,
		Number:    number,
	}
}

func TestImportRowsEmptyBatch(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := newTestUserService(repo)

	_, err := svc.ImportRows(context.Background(), nil)

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, 0, importErr.Row)
	assert.Equal(t, "no rows to import", importErr.Message)
	assert.Equal(t, 0, repo.Len())
}

func TestImportRowsFirstInvalidRowWins(t *testing.T) {
	tests := []struct {
		name        string
		bad         upload.Row
		wantMessage string
	}{
		{"missing first name", row(3, "  ", "Doe", "jane@example.com", "30", "pw"), "firstName is required"},
		{"missing last name", row(3, "Jane", "", "jane@example.com", "30", "pw"), "lastName is required"},
		{"missing email", row(3, "Jane", "Doe", "", "30", "pw"), "email is required"},
		{"malformed email", row(3, "Jane", "Doe", "jane-at-example", "30", "pw"), "email is invalid"},
		{"non-integer age", row(3, "Jane", "Doe", "jane@example.com", "30.5", "pw"), "age is invalid"},
		{"negative age", row(3, "Jane", "Doe", "jane@example.com", "-1", "pw"), "age is invalid"},
		{"missing password", row(3, "Jane", "Doe", "jane@example.com", "30", "   "), "password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewMemoryUserRepository()
			svc := newTestUserService(repo)

			rows := []upload.Row{
				row(2, "John", "Smith", "john@example.com", "40", "pw"),
				tt.bad,
				row(4, "Mary", "Major", "mary@example.com", "25", "pw"),
			}

			_, err := svc.ImportRows(context.Background(), rows)

			var importErr *ImportError
			require.ErrorAs(t, err, &importErr)
			assert.Equal(t, 3, importErr.Row)
			assert.Equal(t, tt.wantMessage, importErr.Message)
			assert.Equal(t, 0, repo.Len(), "no rows may be written on a validation failure")
		})
	}
}

func TestImportRowsIntraBatchDuplicate(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := newTestUserService(repo)

	// Same email in different case: normalization makes them collide, the
	// later occurrence takes the blame.
	rows := []upload.Row{
		row(2, "John", "Smith", "John@Example.com", "40", "pw"),
		row(3, "Mary", "Major", "mary@example.com", "25", "pw"),
		row(4, "Johnny", "Smithers", "john@example.com", "41", "pw"),
	}

	_, err := svc.ImportRows(context.Background(), rows)

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, 4, importErr.Row)
	assert.Equal(t, "duplicate email in file", importErr.Message)
	assert.Equal(t, 0, repo.Len())
}

func TestImportRowsSuccessRoundTrip(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := newTestUserService(repo)

	rows := []upload.Row{
		row(2, " John ", "Smith", "John@Example.com", "40", "secret-1"),
		row(3, "Mary", "Major", "mary@example.com", "25", "secret-2"),
		row(4, "Lee", "Chen", "lee@example.com", "31", "secret-3"),
	}

	count, err := svc.ImportRows(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, 3, repo.Len())

	user, err := repo.GetByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, "John", user.FirstName)
	assert.Equal(t, "Smith", user.LastName)
	assert.Equal(t, 40, user.Age)
	assert.Equal(t, "john@example.com", user.Email)
	assert.NotEqual(t, "secret-1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret-1")))
}

func TestImportRowsExistingEmailAbortsWholeBatch(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := newTestUserService(repo)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		FirstName: "Mary", LastName: "Major", Email: "mary@example.com", Age: 25, Password: "secret-0",
	})
	require.NoError(t, err)

	rows := []upload.Row{
		row(2, "John", "Smith", "john@example.com", "40", "pw"),
		row(3, "Mary", "Major", "mary@example.com", "25", "pw"),
		row(4, "Lee", "Chen", "lee@example.com", "31", "pw"),
	}

	_, err = svc.ImportRows(context.Background(), rows)

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, 3, importErr.Row)
	assert.Equal(t, "email already registered", importErr.Message)
	assert.Equal(t, 1, repo.Len(), "valid rows must not be inserted when any row conflicts")
}

func TestImportRowsExistingEmailLowestRowWins(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := newTestUserService(repo)

	for _, email := range []string{"lee@example.com", "john@example.com"} {
		_, err := svc.CreateUser(context.Background(), CreateUserInput{
			FirstName: "X", LastName: "Y", Email: email, Age: 20, Password: "secret-0",
		})
		require.NoError(t, err)
	}

	rows := []upload.Row{
		row(2, "John", "Smith", "john@example.com", "40", "pw"),
		row(3, "Mary", "Major", "mary@example.com", "25", "pw"),
		row(4, "Lee", "Chen", "lee@example.com", "31", "pw"),
	}

	_, err := svc.ImportRows(context.Background(), rows)

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, 2, importErr.Row)
}

func TestFirstByRowIgnoresStoreOrder(t *testing.T) {
	emailRows := map[string]int{
		"a@example.com": 7,
		"b@example.com": 2,
		"c@example.com": 5,
	}

	// Store return order is reversed relative to file order; the batch row
	// must still decide.
	gotRow, gotEmail := firstByRow([]string{"a@example.com", "c@example.com", "b@example.com"}, emailRows)
	assert.Equal(t, 2, gotRow)
	assert.Equal(t, "b@example.com", gotEmail)
}
