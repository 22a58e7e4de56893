package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Alwanly/heroku-ranger/pkg/logger"
	"github.com/Alwanly/heroku-ranger/pkg/wrapper"
)

// APIKeyParam is read from the query string, or from the form body on POST.
const APIKeyParam = "api_key"

func APIKeyAuth(apiKey string, log *logger.CanonicalLogger) fiber.Handler {
	expected := []byte(apiKey)

	return func(c *fiber.Ctx) error {
		got := c.Query(APIKeyParam)
		if got == "" {
			got = c.FormValue(APIKeyParam)
		}

		if got == "" {
			log.Debug("missing api key",
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(wrapper.ResponseFailed(http.StatusUnauthorized, "missing api key", nil))
		}

		if subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
			log.Debug("invalid api key",
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(wrapper.ResponseFailed(http.StatusUnauthorized, "invalid api key", nil))
		}

		return c.Next()
	}
}
