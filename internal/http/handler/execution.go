package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"execapi/internal/api"
	"execapi/internal/service"
)

// Pinger is the slice of *mongo.Client the health check needs.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// HealthCheck reports whether the database is reachable.
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, readpref.Primary()); err != nil {
			return writeFault(c, fiber.StatusServiceUnavailable, "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 unconditionally.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListExecutions returns execution records newest first.
func ListExecutions(svc service.ExecutionService) fiber.Handler {
	return Expose(Options{
		Name: "list_executions",
		ArgTypes: map[string]ArgKind{
			"limit":  ArgInt,
			"offset": ArgInt,
		},
	}, func(c *fiber.Ctx, args Args) (any, error) {
		res, err := svc.List(c.UserContext(), args.IntDefault("limit", 10), args.IntDefault("offset", 0))
		if err != nil {
			return nil, err
		}
		return res, nil
	})
}

// GetExecution returns a single execution record by ID.
func GetExecution(svc service.ExecutionService) fiber.Handler {
	return Expose(Options{
		Name: "get_execution",
	}, func(c *fiber.Ctx, args Args) (any, error) {
		id := c.Params("id")
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid execution id")
		}
		res, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return nil, translateServiceError(err)
		}
		return res, nil
	})
}

// GetExecutionChildren returns the records spawned by an execution.
func GetExecutionChildren(svc service.ExecutionService) fiber.Handler {
	return Expose(Options{
		Name: "get_children",
	}, func(c *fiber.Ctx, args Args) (any, error) {
		id := c.Params("id")
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid execution id")
		}
		res, err := svc.Children(c.UserContext(), id)
		if err != nil {
			return nil, translateServiceError(err)
		}
		return res, nil
	})
}

// GetExecutionAttribute returns one attribute of an execution record.
func GetExecutionAttribute(svc service.ExecutionService) fiber.Handler {
	return Expose(Options{
		Name: "get_attribute",
	}, func(c *fiber.Ctx, args Args) (any, error) {
		id := c.Params("id")
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid execution id")
		}
		res, err := svc.Attribute(c.UserContext(), id, c.Params("attribute"))
		if err != nil {
			return nil, translateServiceError(err)
		}
		return res, nil
	})
}

// CreateExecution ingests a new execution record. The body is validated
// against the execution schema before the service sees it.
func CreateExecution(svc service.ExecutionService) fiber.Handler {
	return ExposeWithBody[api.ExecutionAPI](Options{
		Name:       "create_execution",
		StatusCode: fiber.StatusCreated,
	}, func(c *fiber.Ctx, args Args, body *api.ExecutionAPI) (any, error) {
		res, err := svc.Record(c.UserContext(), body)
		if err != nil {
			return nil, err
		}
		return res, nil
	})
}

// DeleteExecution is declared but not served: execution records are an
// immutable history. The 501 short-circuits inside Expose.
func DeleteExecution() fiber.Handler {
	return Expose(Options{
		Name:       "delete_execution",
		StatusCode: fiber.StatusNotImplemented,
	}, func(c *fiber.Ctx, args Args) (any, error) {
		return nil, nil
	})
}

// translateServiceError maps the service's sentinel errors onto HTTP
// statuses. Unknown errors fall through to the 500 path.
func translateServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "execution not found")
	case errors.Is(err, service.ErrAttributeNotFound):
		return fiber.NewError(fiber.StatusNotFound, "attribute not found")
	case errors.Is(err, service.ErrIDRequired):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
