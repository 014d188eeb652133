package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jowa-zm/jowa-ussd/internal/application/dto"
	"github.com/jowa-zm/jowa-ussd/pkg/logger"
)

// HealthChecker verifica la base de datos y sus tablas.
type HealthChecker interface {
	Check(ctx context.Context) ([]dto.TableStatus, error)
}

// HealthHandler expone el estado del servicio.
type HealthHandler struct {
	checker HealthChecker
	log     *logger.Logger
}

// NewHealthHandler construye el handler.
func NewHealthHandler(checker HealthChecker, log *logger.Logger) *HealthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &HealthHandler{checker: checker, log: log}
}

// Health godoc
// @Summary      Estado del servicio
// @Tags         system
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Failure      503  {object}  dto.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	tables, err := h.checker.Check(c.UserContext())
	if err != nil {
		h.log.Error().Err(err).Msg("health check")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.HealthResponse{
			Status:   "error",
			Database: "unreachable",
			Message:  "base de datos no disponible",
		})
	}
	resp := dto.HealthResponse{Status: "healthy", Database: "connected", Tables: tables}
	for _, t := range tables {
		if !t.Exists {
			resp.Status = "degraded"
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
	}
	return c.JSON(resp)
}

// Home godoc
// @Summary      Comprobación simple
// @Tags         system
// @Produce      plain
// @Success      200  {string}  string
// @Router       / [get]
func (h *HealthHandler) Home(c *fiber.Ctx) error {
	return c.SendString("Jowa USSD App is running!")
}
