package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/chirpy/internal/api/http/handlers"
	"github.com/spec-kit/chirpy/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Chirps         *handlers.ChirpsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	// StaticDir is served under /app; empty disables the file server.
	StaticDir string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.StaticDir != "" {
		app.Use("/app", cfg.Admin.CountHits)
		app.Static("/app", cfg.StaticDir)
	}

	admin := app.Group("/admin")
	admin.Get("/metrics", cfg.Admin.Metrics)
	admin.Post("/reset", cfg.Admin.Reset)

	api := app.Group("/api")
	api.Get("/healthz", cfg.Health.Healthz)
	api.Post("/users", cfg.Users.Create)
	api.Post("/login", cfg.Users.Login)
	api.Get("/chirps", cfg.Chirps.List)
	api.Get("/chirps/:chirpId", cfg.Chirps.Get)

	api.Put("/users", cfg.AuthMiddleware.Handle, auth.RequireUser(), cfg.Users.Update)
	api.Post("/chirps", cfg.AuthMiddleware.Handle, auth.RequireUser(), cfg.Chirps.Create)
	api.Delete("/chirps/:chirpId", cfg.AuthMiddleware.Handle, auth.RequireUser(), cfg.Chirps.Delete)
}
