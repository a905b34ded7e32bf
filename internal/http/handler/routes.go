package handler

import (
	"github.com/gofiber/fiber/v2"

	"execapi/internal/service"
)

// RegisterRoutes attaches the HTTP routes to the provided Fiber app.
// Handlers stay thin; everything interesting happens in the service layer.
func RegisterRoutes(app *fiber.App, db Pinger, svc service.ExecutionService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/executions", ListExecutions(svc))
	app.Post("/executions", CreateExecution(svc))
	app.Get("/executions/:id", GetExecution(svc))
	app.Delete("/executions/:id", DeleteExecution())
	app.Get("/executions/:id/children", GetExecutionChildren(svc))
	app.Get("/executions/:id/attribute/:attribute", GetExecutionAttribute(svc))
}
