package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/yuhuhero-service/internal/api/http/handlers"
	"github.com/spec-kit/yuhuhero-service/internal/auth"
	"github.com/spec-kit/yuhuhero-service/internal/domain"
	"github.com/spec-kit/yuhuhero-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireIdentity())
	users.Get("/me", cfg.Users.Me)
	users.Get("/profile", cfg.Users.Me)
	users.Put("/me/quiz-status", cfg.Users.UpdateQuizStatus)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRoleHandler(domain.RoleAdmin))
	admin.Get("/users", cfg.Users.List)
}
