package handler

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"execapi/internal/api"
	"execapi/internal/logging"
)

// log is swapped out by tests to capture output.
var log = logging.New("api")

// ArgKind selects how a path or query parameter is coerced before it
// reaches the handler.
type ArgKind int

const (
	ArgString ArgKind = iota
	ArgInt
	ArgBool
	ArgFloat
)

// Args holds the coerced parameters for one handler call. Absent
// parameters have no entry.
type Args map[string]any

func (a Args) String(name string) string {
	v, _ := a[name].(string)
	return v
}

func (a Args) Int(name string) int {
	v, _ := a[name].(int)
	return v
}

// IntDefault returns the coerced int or def when the parameter was absent.
func (a Args) IntDefault(name string, def int) int {
	if v, ok := a[name].(int); ok {
		return v
	}
	return def
}

func (a Args) Bool(name string) bool {
	v, _ := a[name].(bool)
	return v
}

func (a Args) Float(name string) float64 {
	v, _ := a[name].(float64)
	return v
}

// Options configures an exposed handler.
type Options struct {
	// Name identifies the handler in log lines and in the response log
	// blacklist.
	Name string

	// StatusCode overrides the 200 default on success. The codes 501, 405
	// and 403 short-circuit: the handler body never runs and the response
	// is a JSON null.
	StatusCode int

	// ContentType overrides application/json for the response body.
	ContentType string

	// ArgTypes maps parameter names (path first, then query) to the kind
	// they are coerced to. A value that cannot be coerced is a 400.
	ArgTypes map[string]ArgKind
}

// noopStatusCodes are returned as-is with a null body, before any handler
// logic runs. Mirrors the behavior of endpoints that are declared but not
// served, such as DELETE on immutable records.
var noopStatusCodes = map[int]bool{
	fiber.StatusNotImplemented:   true,
	fiber.StatusMethodNotAllowed: true,
	fiber.StatusForbidden:        true,
}

// responseLogBlacklist names handlers whose results are too large to echo
// into the log. The response line is still written, just without the body.
var responseLogBlacklist = map[string]bool{
	"list_executions": true,
	"get_execution":   true,
	"get_children":    true,
	"get_attribute":   true,
}

// Expose wraps a handler function with the request/response plumbing every
// endpoint shares: parameter coercion, request and response logging, and
// translation of errors into faultstring bodies.
func Expose(opts Options, fn func(c *fiber.Ctx, args Args) (any, error)) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("handler_panic", logging.Fields{
					"handler": opts.Name,
					"panic":   r,
				})
				err = writeFault(c, fiber.StatusInternalServerError, "internal server error")
			}
		}()

		logRequest(c, opts)

		if noopStatusCodes[opts.StatusCode] {
			return respond(c, opts, nil)
		}

		args, err := coerceArgs(c, opts.ArgTypes)
		if err != nil {
			return writeFault(c, fiber.StatusBadRequest, err.Error())
		}

		res, err := fn(c, args)
		if err != nil {
			return translateError(c, opts, err)
		}
		return respond(c, opts, res)
	}
}

// ExposeWithBody is Expose for endpoints that take a JSON body. The body is
// decoded and validated against B's schema before the handler runs; an
// empty body validates as an empty object.
func ExposeWithBody[B api.Model](opts Options, fn func(c *fiber.Ctx, args Args, body *B) (any, error)) fiber.Handler {
	return Expose(opts, func(c *fiber.Ctx, args Args) (any, error) {
		raw := map[string]any{}
		if body := c.Body(); len(body) > 0 {
			if err := json.Unmarshal(body, &raw); err != nil {
				return nil, fiber.NewError(fiber.StatusBadRequest, "malformed request body")
			}
		}
		model, err := api.New[B](raw)
		if err != nil {
			return nil, err
		}
		return fn(c, args, model)
	})
}

func coerceArgs(c *fiber.Ctx, kinds map[string]ArgKind) (Args, error) {
	args := make(Args, len(kinds))
	for name, kind := range kinds {
		raw := c.Params(name)
		if raw == "" {
			raw = c.Query(name)
		}
		if raw == "" {
			continue
		}

		switch kind {
		case ArgString:
			args[name] = raw
		case ArgInt:
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fiber.NewError(fiber.StatusBadRequest, "invalid value for parameter "+name)
			}
			args[name] = v
		case ArgBool:
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fiber.NewError(fiber.StatusBadRequest, "invalid value for parameter "+name)
			}
			args[name] = v
		case ArgFloat:
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fiber.NewError(fiber.StatusBadRequest, "invalid value for parameter "+name)
			}
			args[name] = v
		}
	}
	return args, nil
}

// logRequest writes one line per incoming call. Query parameters are logged
// as filters, with credentials stripped.
func logRequest(c *fiber.Ctx, opts Options) {
	filters := c.Queries()
	delete(filters, "x-auth-token")

	log.Info("request", logging.Fields{
		"handler":     opts.Name,
		"request_id":  requestIDFromCtx(c),
		"method":      c.Method(),
		"path":        c.Path(),
		"remote_addr": c.IP(),
		"filters":     filters,
	})
}

func logResponse(c *fiber.Ctx, opts Options, status int, result any) {
	fields := logging.Fields{
		"handler":    opts.Name,
		"request_id": requestIDFromCtx(c),
		"status":     status,
	}
	// Some handlers return payloads big enough to drown the log.
	if !responseLogBlacklist[opts.Name] {
		fields["result"] = result
	}
	log.Info("response", fields)
}

func respond(c *fiber.Ctx, opts Options, result any) error {
	status := opts.StatusCode
	if status == 0 {
		status = fiber.StatusOK
	}
	logResponse(c, opts, status, result)

	if opts.ContentType != "" {
		c.Set(fiber.HeaderContentType, opts.ContentType)
		switch v := result.(type) {
		case []byte:
			return c.Status(status).Send(v)
		case string:
			return c.Status(status).SendString(v)
		}
	}
	return c.Status(status).JSON(result)
}

// translateError maps handler errors onto faultstring responses. Errors the
// handler already classified pass through with their status; schema
// violations are client errors; everything else is a 500.
func translateError(c *fiber.Ctx, opts Options, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return writeFault(c, e.Code, e.Message)
	}

	var verr *api.ValidationError
	if errors.As(err, &verr) {
		return writeFault(c, fiber.StatusBadRequest, verr.Error())
	}

	log.Error("handler_error", logging.Fields{
		"handler":    opts.Name,
		"request_id": requestIDFromCtx(c),
		"error":      err.Error(),
	})
	return writeFault(c, fiber.StatusInternalServerError, "internal server error")
}
