package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	USSD           *USSDHandler
	Health         *HealthHandler
	Metrics        HTTPRecorder // opcional
	MetricsHandler http.Handler // opcional, expuesto en /metrics
}

// Router registra las rutas del servicio.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(MetricsMiddleware(deps.Metrics))
	}

	if deps.Health != nil {
		app.Get("/", deps.Health.Home)
		app.Get("/health", deps.Health.Health)
	}
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	// Gateway USSD
	app.Post("/ussd", deps.USSD.JSON)
	app.Post("/ussd/africastalking", deps.USSD.AfricasTalking)
}
