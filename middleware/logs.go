package middleware

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs every request through logrus with method, path, status,
// latency and the authenticated user when one is present.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/health" {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		fields := log.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start).String(),
			"ip":      c.IP(),
		}
		if user, ok := SessionUser(c); ok {
			fields["user_id"] = user.ID
		}
		if err != nil {
			fields["error"] = err.Error()
		}

		entry := log.WithFields(fields)
		switch {
		case c.Response().StatusCode() >= 500:
			entry.Error("request")
		case c.Response().StatusCode() >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
		return err
	}
}
