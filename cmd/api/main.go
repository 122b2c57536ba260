package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/user-admin/internal/api/http"
	"github.com/spec-kit/user-admin/internal/api/http/handlers"
	"github.com/spec-kit/user-admin/internal/auth"
	"github.com/spec-kit/user-admin/internal/config"
	"github.com/spec-kit/user-admin/internal/events"
	"github.com/spec-kit/user-admin/internal/observability"
	"github.com/spec-kit/user-admin/internal/persistence"
	"github.com/spec-kit/user-admin/internal/repository"
	"github.com/spec-kit/user-admin/internal/service"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	userRepo := repository.NewUserRepository(pg.PoolHandle())
	tokenMgr := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	denylist := auth.NewTokenDenylist(redis.ClientHandle(), logger)
	gate := auth.NewRequestGate(tokenMgr, denylist)

	dispatcher := events.NewInMemoryDispatcher()
	service.NewAuditService(dispatcher, logger).RegisterHandlers()

	authService := service.NewAuthService(userRepo, tokenMgr, denylist, logger)
	userService := service.NewUserService(userRepo, dispatcher, cfg.Auth.BcryptCost, logger)

	engine := html.New(cfg.App.ViewsDir, ".html")
	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
		Views:   engine,
	})

	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:      handlers.NewAuthHandler(authService, cfg.App.IsProduction()),
		Users:     handlers.NewUsersHandler(userService),
		Dashboard: handlers.NewDashboardHandler(userService),
		Gate:      gate,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
