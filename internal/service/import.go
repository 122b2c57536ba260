package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/user-admin/internal/auth"
	"github.com/spec-kit/user-admin/internal/domain"
	"github.com/spec-kit/user-admin/internal/events"
	"github.com/spec-kit/user-admin/internal/repository"
	"github.com/spec-kit/user-admin/internal/upload"
)

// emailPattern accepts local@domain.tld shapes: no whitespace, one @, and
// a dot in the domain part.
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ImportError is a client-fixable import failure attributed to a 1-based
// spreadsheet row. Row 0 means the failure is not tied to a specific row.
type ImportError struct {
	Row     int
	Message string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

func importErr(row int, message string) *ImportError {
	return &ImportError{Row: row, Message: message}
}

// candidate is a validated, normalized row awaiting insertion.
type candidate struct {
	FirstName string
	LastName  string
	Email     string
	Age       int
	Password  string
	Row       int
}

// ImportRows runs the bulk-import pipeline: per-row validation and
// intra-batch duplicate detection in one pass, then a single transaction
// holding the cross-batch existence check, password hashing, and the bulk
// insert. Any failure leaves the store untouched; on success the number of
// inserted rows is returned.
func (s *UserService) ImportRows(ctx context.Context, rows []upload.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, importErr(0, "no rows to import")
	}

	candidates := make([]candidate, 0, len(rows))
	emailRows := make(map[string]int, len(rows))
	emailOrder := make([]string, 0, len(rows))

	for _, row := range rows {
		cand, err := validateRow(row)
		if err != nil {
			return 0, err
		}
		if _, seen := emailRows[cand.Email]; seen {
			return 0, importErr(row.Number, "duplicate email in file")
		}
		emailRows[cand.Email] = row.Number
		emailOrder = append(emailOrder, cand.Email)
		candidates = append(candidates, cand)
	}

	var inserted int64
	err := s.users.InTx(ctx, func(tx repository.UserRepository) error {
		existing, err := tx.FindExistingEmails(ctx, emailOrder)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			// Deterministic attribution: report the existing email whose
			// batch row is earliest, regardless of store return order.
			row, email := firstByRow(existing, emailRows)
			s.logger.Debug("import rejected: existing email", zap.String("email", email))
			return importErr(row, "email already registered")
		}

		records := make([]domain.User, len(candidates))
		var g errgroup.Group
		for i, cand := range candidates {
			i, cand := i, cand
			g.Go(func() error {
				hash, err := auth.HashPassword(cand.Password, s.bcryptCost)
				if err != nil {
					return err
				}
				records[i] = domain.User{
					FirstName:    cand.FirstName,
					LastName:     cand.LastName,
					Email:        cand.Email,
					Age:          cand.Age,
					PasswordHash: hash,
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		inserted, err = tx.CreateMany(ctx, records)
		if err != nil {
			if repository.IsUniqueViolation(err) {
				// A concurrent insert won the race after our existence
				// check; same conflict class, no row to blame.
				return importErr(0, "email already registered")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.publish(ctx, events.NewEvent(events.EventUsersImported, "", map[string]any{"count": inserted}))
	return inserted, nil
}

// validateRow applies the field rules in order, first failure wins.
func validateRow(row upload.Row) (candidate, error) {
	firstName := strings.TrimSpace(row.FirstName)
	if firstName == "" {
		return candidate{}, importErr(row.Number, "firstName is required")
	}

	lastName := strings.TrimSpace(row.LastName)
	if lastName == "" {
		return candidate{}, importErr(row.Number, "lastName is required")
	}

	email := strings.ToLower(strings.TrimSpace(row.Email))
	if email == "" {
		return candidate{}, importErr(row.Number, "email is required")
	}
	if !emailPattern.MatchString(email) {
		return candidate{}, importErr(row.Number, "email is invalid")
	}

	age, err := strconv.Atoi(strings.TrimSpace(row.Age))
	if err != nil || age <= 0 {
		return candidate{}, importErr(row.Number, "age is invalid")
	}

	// Import only requires a non-empty password; the 6-character minimum
	// applies to single-user creation only.
	password := strings.TrimSpace(row.Password)
	if password == "" {
		return candidate{}, importErr(row.Number, "password is required")
	}

	return candidate{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Age:       age,
		Password:  password,
		Row:       row.Number,
	}, nil
}

// firstByRow picks, among the existing emails, the one first seen in the
// batch (lowest row number).
func firstByRow(existing []string, emailRows map[string]int) (int, string) {
	bestRow := 0
	bestEmail := ""
	for _, email := range existing {
		row, ok := emailRows[email]
		if !ok {
			continue
		}
		if bestEmail == "" || row < bestRow {
			bestRow = row
			bestEmail = email
		}
	}
	return bestRow, bestEmail
}
