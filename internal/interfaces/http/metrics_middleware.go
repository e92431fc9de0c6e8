package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/metrics"
)

// MetricsMiddleware registra conteo y duración por método, ruta y status.
// Usa la ruta registrada (/api/serials/:id) para no crear una serie por ID.
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
		m.HTTPRequest(c.Method(), path, strconv.Itoa(status), time.Since(start))
		return err
	}
}
