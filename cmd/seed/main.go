// Command seed creates the default admin account if it does not exist yet.
// Safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/user-admin/internal/auth"
	"github.com/spec-kit/user-admin/internal/config"
	"github.com/spec-kit/user-admin/internal/domain"
	"github.com/spec-kit/user-admin/internal/observability"
	"github.com/spec-kit/user-admin/internal/persistence"
	"github.com/spec-kit/user-admin/internal/repository"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	users := repository.NewUserRepository(pg.PoolHandle())

	if _, err := users.GetByEmail(ctx, adminEmail); err == nil {
		logger.Info("admin user already exists, skipping", zap.String("email", adminEmail))
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		logger.Fatal("failed to check admin user", zap.Error(err))
	}

	hash, err := auth.HashPassword(adminPassword, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to hash admin password", zap.Error(err))
	}

	admin := &domain.User{
		FirstName:    "admin",
		LastName:     "admin",
		Email:        adminEmail,
		Age:          30,
		PasswordHash: hash,
	}
	if err := users.Create(ctx, admin); err != nil {
		logger.Fatal("failed to create admin user", zap.Error(err))
	}

	logger.Info("admin user created", zap.String("id", admin.ID), zap.String("email", admin.Email))
}
