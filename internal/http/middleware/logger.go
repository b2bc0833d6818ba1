package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorLocalKey is where handlers stash an internal error that was hidden from the client.
const ErrorLocalKey = "internal_error"

// Logger writes one structured entry per request after the handler chain ran.
// Fields: request_id, method, path, status, latency_ms, and user_id when authenticated.
// Internal errors are attached to the entry and raise its level.
func Logger(log *logrus.Entry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := statusOf(c, err)
		entry := log.WithFields(logrus.Fields{
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": float64(time.Since(start).Microseconds()) / 1000,
		})
		if u := CurrentUser(c); u != nil {
			entry = entry.WithField("user_id", u.ID)
		}

		hidden, _ := c.Locals(ErrorLocalKey).(error)
		switch {
		case hidden != nil:
			entry.WithError(hidden).Error("request failed")
		case err != nil && status >= fiber.StatusInternalServerError:
			entry.WithError(err).Error("request failed")
		case status >= fiber.StatusInternalServerError:
			entry.Error("request completed")
		default:
			entry.Info("request completed")
		}

		return err
	}
}

// statusOf predicts the final status when an error is still on its way to the ErrorHandler.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	if fe, ok := err.(*fiber.Error); ok {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
