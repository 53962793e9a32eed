package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/artem13815/copsboot/api/http/handlers"
	"github.com/artem13815/copsboot/api/http/middleware"
)

// NewApp builds a Fiber app with the shared middleware chain.
func NewApp(log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(middleware.Prometheus())
	return app
}

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, health *handlers.HealthHandler, users *handlers.UsersHandler, authMW fiber.Handler) {
	app.Get("/metrics", middleware.MetricsHandler())

	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", health.Health)
	v1.Get("/ready", health.Ready)

	u := v1.Group("/users", authMW)
	u.Post("/", users.Create)
	u.Get("/", users.List)
	u.Get("/by-email", users.FindByEmail)
	u.Get("/:id", users.Get)
	u.Put("/:id", users.Update)
	u.Delete("/:id", users.Delete)
}
