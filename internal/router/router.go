package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/evalstar-go-api/internal/config"
	"github.com/noah-isme/evalstar-go-api/internal/handler"
	"github.com/noah-isme/evalstar-go-api/internal/middleware"
	"github.com/noah-isme/evalstar-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentTaskHandler *handler.StudentTaskHandler
	RankingHandler     *handler.RankingHandler
	ActivityHandler    *handler.ActivityHandler
	HealthProbes       map[string]handler.HealthProbe
	JWTMiddleware      fiber.Handler
	SubmissionLimiter  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	student := api.Group("/student", jwtMiddleware, middleware.RequireRole(middleware.RoleStudent))

	if deps.StudentTaskHandler != nil {
		limiter := deps.SubmissionLimiter
		if limiter == nil {
			limiter = middleware.RateLimit("submit", cfg.SubmissionRateLimit, cfg.SubmissionRateWindow)
		}
		deps.StudentTaskHandler.Register(student, limiter)
	}

	if deps.RankingHandler != nil {
		deps.RankingHandler.Register(student)
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(student)
	}
}
