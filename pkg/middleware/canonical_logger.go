package middleware

import (
	"time"

	"github.com/Alwanly/heroku-ranger/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CanonicalLoggerMiddleware logs once per request. Handlers and usecases add
// fields through logger.AddToContext on c.UserContext().
//
// The request id comes from fiber's requestid middleware, which reuses an
// incoming X-Request-ID, so CLI correlation ids show up in the server log.
func CanonicalLoggerMiddleware(log *logger.CanonicalLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logCtx := logger.NewLogContext()
		c.Locals("log_context", logCtx)

		userCtx := logger.WithLogContext(c.UserContext(), logCtx)
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			logCtx.AddField(zap.String(logger.FieldRequestID, id))
			userCtx = logger.WithCorrelationID(userCtx, id)
		}
		c.SetUserContext(userCtx)

		start := time.Now()

		// runs after recover, so panics are logged with status 500
		defer func() {
			duration := time.Since(start)
			status := c.Response().StatusCode()

			fields := []zap.Field{
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Int64("duration_ms", duration.Milliseconds()),
			}
			fields = append(fields, logCtx.Fields()...)

			switch {
			case status >= 500:
				log.Error("http_request", fields...)
			case status >= 400:
				log.Info("http_request_client_error", fields...)
			default:
				log.Info("http_request", fields...)
			}
		}()

		return c.Next()
	}
}
