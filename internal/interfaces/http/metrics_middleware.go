package http

import (
	"github.com/gofiber/fiber/v2"
)

// HTTPRecorder métricas por petición.
type HTTPRecorder interface {
	ObserveHTTP(method, route string, status int)
}

// MetricsMiddleware registra método, ruta registrada y status de cada petición.
// Usa la ruta de Fiber (no la URL) para acotar la cardinalidad.
func MetricsMiddleware(rec HTTPRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		rec.ObserveHTTP(c.Method(), c.Route().Path, status)
		return err
	}
}
