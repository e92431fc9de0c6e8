package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/setsco-serial-api/internal/application/custody"
	"github.com/jhoicas/setsco-serial-api/internal/application/dto"
)

// CustodyHandler transferencias de custodia entre empresas del grupo.
type CustodyHandler struct {
	svc *custody.Service
}

// NewCustodyHandler construye el handler.
func NewCustodyHandler(svc *custody.Service) *CustodyHandler {
	return &CustodyHandler{svc: svc}
}

// Assign godoc
// @Summary      Ceder custodia a otra empresa
// @Tags         custody
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssignCustodyRequest  true  "Seriales y empresa destino"
// @Success      200   {object}  dto.BatchResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/custody/assign [post]
func (h *CustodyHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignCustodyRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	res, err := h.svc.AssignToCompany(c.UserContext(), custody.AssignInput{
		SerialIDs: in.SerialIDs,
		CompanyID: in.CompanyID,
		ActorID:   GetUserID(c),
	})
	return writeBatch(c, res, err)
}

// Receive godoc
// @Summary      Recibir custodia en la empresa del token
// @Tags         custody
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveCustodyRequest  true  "Seriales, producto y ubicación"
// @Success      200   {object}  dto.BatchResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/custody/receive [post]
func (h *CustodyHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveCustodyRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	res, err := h.svc.ReceiveFromCompany(c.UserContext(), custody.ReceiveInput{
		SerialIDs:          in.SerialIDs,
		ReceivingCompanyID: GetCompanyID(c),
		ProductID:          in.ProductID,
		LocationID:         in.LocationID,
		ActorID:            GetUserID(c),
	})
	return writeBatch(c, res, err)
}

// Reverse godoc
// @Summary      Revertir la última transferencia de custodia
// @Tags         custody
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SerialIDsRequest  true  "Seriales"
// @Success      200   {object}  dto.BatchResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/custody/reverse [post]
func (h *CustodyHandler) Reverse(c *fiber.Ctx) error {
	ids, bad := parseSerialIDs(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	res, err := h.svc.Reverse(c.UserContext(), ids, GetUserID(c))
	return writeBatch(c, res, err)
}
