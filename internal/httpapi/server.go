package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/aaronromeo/fitcoach/internal/auth"
	"github.com/aaronromeo/fitcoach/internal/id"
	"github.com/aaronromeo/fitcoach/internal/metrics"
)

const (
	requestIDKey = "requestid"
	identityKey  = "identity"
)

type Deps struct {
	Coach    Coach
	Verifier auth.Verifier
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func NewServer(d Deps) *fiber.App {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		// Completions can take up to LLM_TIMEOUT.
		WriteTimeout: 90 * time.Second,
		ErrorHandler: errorHandler(d.Logger),
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  id.RequestID,
		ContextKey: requestIDKey,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))

	app.Use(authenticate(d.Verifier, d.Logger))
	registerCoach(app, d)
	return app
}

// authenticate resolves the bearer token into an identity. A missing or
// rejected token leaves the identity unset; each operation decides what that
// means.
func authenticate(v auth.Verifier, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok || v == nil {
			return c.Next()
		}
		who, err := v.Verify(c.UserContext(), token)
		if err != nil {
			requestLogger(c, logger).Info("token rejected", "err", err)
			return c.Next()
		}
		c.Locals(identityKey, who)
		return c.Next()
	}
}

func identity(c *fiber.Ctx) *auth.Identity {
	who, _ := c.Locals(identityKey).(*auth.Identity)
	return who
}

func requestLogger(c *fiber.Ctx, logger *slog.Logger) *slog.Logger {
	if rid, ok := c.Locals(requestIDKey).(string); ok {
		return logger.With("request_id", rid)
	}
	return logger
}

type callableError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeError(c *fiber.Ctx, code int, status, message string) error {
	return c.Status(code).JSON(fiber.Map{"error": callableError{Status: status, Message: message}})
}

func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < http.StatusInternalServerError {
			status := "INVALID_ARGUMENT"
			if fe.Code == http.StatusNotFound {
				status = "NOT_FOUND"
			}
			return writeError(c, fe.Code, status, fe.Message)
		}
		requestLogger(c, logger).Error("unhandled error", "path", c.Path(), "err", err)
		return writeError(c, http.StatusInternalServerError, "INTERNAL", "internal")
	}
}
