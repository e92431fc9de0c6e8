package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/setsco-serial-api/internal/application/dto"
	"github.com/jhoicas/setsco-serial-api/internal/application/usecase"
)

// DistributionSettingsHandler certificados CoC para documentos de entrega.
type DistributionSettingsHandler struct {
	uc *usecase.DistributionSettingsUseCase
}

// NewDistributionSettingsHandler construye el handler.
func NewDistributionSettingsHandler(uc *usecase.DistributionSettingsUseCase) *DistributionSettingsHandler {
	return &DistributionSettingsHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar certificado CoC
// @Tags         distribution-settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDistributionSettingsRequest  true  "Datos del certificado"
// @Success      201   {object}  dto.DistributionSettingsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/distribution-settings [post]
func (h *DistributionSettingsHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDistributionSettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetActive godoc
// @Summary      Certificado CoC vigente
// @Tags         distribution-settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DistributionSettingsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/distribution-settings/active [get]
func (h *DistributionSettingsHandler) GetActive(c *fiber.Ctx) error {
	out, err := h.uc.GetActive(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c, "no hay certificado vigente")
	}
	return c.JSON(out)
}
