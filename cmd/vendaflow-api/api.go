// Package main provides the Vendaflow automation API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/vendaflow/vendaflow/pkg/persistence"
	"github.com/vendaflow/vendaflow/pkg/registry"
	"github.com/vendaflow/vendaflow/pkg/services"
	"github.com/vendaflow/vendaflow/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	automationService := services.NewAutomation(a.persistence, a.registry)

	handlers := web.NewAPIHandlers(automationService, a.persistence.Continuations(), a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Vendaflow API")
	})

	t := app.Group("/tenants/:tenantId")
	t.Get("/automations", handlers.GetAutomations)
	t.Post("/automations", handlers.CreateAutomation)
	t.Get("/automations/:id", handlers.GetAutomation)
	t.Put("/automations/:id", handlers.UpdateAutomation)
	t.Delete("/automations/:id", handlers.DeleteAutomation)
	t.Get("/deals/:dealId/continuations", handlers.GetDealContinuations)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
