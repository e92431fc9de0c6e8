package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/setsco-serial-api/internal/application/dto"
	"github.com/jhoicas/setsco-serial-api/internal/application/safetystock"
)

// SafetyStockHandler escaneo bajo demanda del stock de seguridad.
type SafetyStockHandler struct {
	monitor *safetystock.Monitor
}

// NewSafetyStockHandler construye el handler.
func NewSafetyStockHandler(m *safetystock.Monitor) *SafetyStockHandler {
	return &SafetyStockHandler{monitor: m}
}

// Scan godoc
// @Summary      Escanear stock de seguridad
// @Tags         safety-stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.AlertResponse
// @Router       /api/safety-stock/scan [post]
func (h *SafetyStockHandler) Scan(c *fiber.Ctx) error {
	alerts, err := h.monitor.Scan(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.AlertResponse{
			ID:               a.ID,
			CategoryID:       a.CategoryID,
			CategoryName:     a.CategoryName,
			AvailableCount:   a.AvailableCount,
			SafetyStockLevel: a.SafetyStockLevel.String(),
			Recipients:       a.Recipients,
		})
	}
	return c.JSON(out)
}
