package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/user-admin/internal/auth"
	"github.com/spec-kit/user-admin/internal/domain"
	"github.com/spec-kit/user-admin/internal/repository"
)

// AuthService coordinates credential verification and token issuance.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
	denylist *auth.TokenDenylist
	logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(users repository.UserRepository, tokenMgr *auth.TokenManager, denylist *auth.TokenDenylist, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokenMgr: tokenMgr,
		denylist: denylist,
		logger:   logger,
	}
}

// Login verifies credentials and issues a token. The unknown-email branch
// still performs a bcrypt comparison so both failure modes return the same
// error in comparable time.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, err
		}
		auth.CompareDummy(password)
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// Logout revokes the presented token until its natural expiry. Unparseable
// tokens are ignored: logout always succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return
	}
	s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	s.logger.Info("session revoked", zap.String("user_id", claims.UserID))
}
