package handler

import (
	"github.com/gofiber/fiber/v2"

	"execapi/internal/http/middleware"
)

// faultPayload is the uniform error body. Every failure, whether a schema
// violation, a missing record or an unhandled panic, surfaces as a
// faultstring so clients have one field to inspect.
type faultPayload struct {
	Faultstring string `json:"faultstring"`
	RequestID   string `json:"request_id,omitempty"`
}

// requestIDFromCtx extracts the request_id stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeFault writes the standardized JSON error response without leaking
// internal details.
func writeFault(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(faultPayload{
		Faultstring: message,
		RequestID:   requestIDFromCtx(c),
	})
}

// ErrorHandler returns the Fiber global error handler. Handlers built with
// Expose translate their own errors; this one catches routing failures and
// anything that escapes them.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := ""
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
			message = e.Message
		}

		switch status {
		case fiber.StatusNotFound:
			return writeFault(c, status, "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeFault(c, status, "method not allowed")
		case fiber.StatusInternalServerError:
			return writeFault(c, status, "internal server error")
		default:
			if message == "" {
				message = "internal server error"
			}
			return writeFault(c, status, message)
		}
	}
}
