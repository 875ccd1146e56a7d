package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/yuhuhero-service/internal/api/http"
	"github.com/spec-kit/yuhuhero-service/internal/api/http/handlers"
	"github.com/spec-kit/yuhuhero-service/internal/auth"
	"github.com/spec-kit/yuhuhero-service/internal/config"
	"github.com/spec-kit/yuhuhero-service/internal/events"
	"github.com/spec-kit/yuhuhero-service/internal/observability"
	"github.com/spec-kit/yuhuhero-service/internal/persistence"
	"github.com/spec-kit/yuhuhero-service/internal/repository"
	"github.com/spec-kit/yuhuhero-service/internal/service"
	"github.com/spec-kit/yuhuhero-service/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var userRepo repository.UserRepository
	if pool := pg.PoolHandle(); pool != nil {
		userRepo = repository.NewUserRepository(pool)
	} else {
		userRepo = repository.NewMemoryUserRepository()
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm, cfg.Auth.AccessTokenTTL())
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	var attempts repository.LoginAttemptStore
	if redis.Enabled() {
		attempts = repository.NewRedisLoginAttemptStore(redis.Client)
	} else {
		attempts = repository.NewMemoryLoginAttemptStore(nil)
	}

	guard := service.NewLoginGuard(
		attempts,
		cfg.Auth.LoginMaxAttempts,
		cfg.Auth.LoginLockout(),
		logger,
	)
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokens,
		Hasher:     auth.NewHasher(cfg.Auth.BcryptCost),
		Guard:      guard,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	userService := service.NewUserService(userRepo, dispatcher, logger)

	if cfg.Auth.AdminPhone != "" {
		if _, err := authService.EnsureAdmin(ctx, service.RegisterInput{
			Name:     cfg.Auth.AdminName,
			Phone:    cfg.Auth.AdminPhone,
			Password: cfg.Auth.AdminPassword,
		}); err != nil {
			logger.Fatal("failed to bootstrap admin", zap.Error(err))
		}
	}

	resolver := auth.NewResolver(tokens, userRepo, logger, metrics)
	authMiddleware := auth.NewAuthMiddleware(resolver)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
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
