package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger logs every request and records it in metrics. Non-2xx responses are logged
// at warn level.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		metrics.RecordRequest(RouteKey(c), c.Method(), status, latency)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}
		if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
			logger.Warn("[NON-OK] "+c.Method()+" "+c.OriginalURL(), fields...)
		} else {
			logger.Debug("request", fields...)
		}
		return err
	}
}

// RouteKey is the matched route pattern, e.g. /api/chirps/:chirpId. Metrics are keyed by it so
// the number of series is bounded by the route table, not by the paths clients send.
func RouteKey(c *fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "" {
		return route.Path
	}
	return "unmatched"
}
