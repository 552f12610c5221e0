package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/BancoSangre-api/pkg/metrics"
)

// MetricsMiddleware cuenta peticiones y mide su duración. El label path es la ruta
// registrada ("/api/persons/:id"), no la URL, para no disparar la cardinalidad.
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		m.HTTPRequests.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}
