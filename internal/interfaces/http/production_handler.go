package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/setsco-serial-api/internal/application/dto"
	"github.com/jhoicas/setsco-serial-api/internal/application/production"
)

// ProductionHandler eventos de órdenes de producción.
type ProductionHandler struct {
	svc *production.Service
}

// NewProductionHandler construye el handler.
func NewProductionHandler(svc *production.Service) *ProductionHandler {
	return &ProductionHandler{svc: svc}
}

// Confirmed godoc
// @Summary      Orden de producción confirmada
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductionConfirmedRequest  true  "Orden"
// @Success      200   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/production/confirmed [post]
func (h *ProductionHandler) Confirmed(c *fiber.Ctx) error {
	var in dto.ProductionConfirmedRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	order, err := h.svc.OnProductionConfirmed(c.UserContext(), production.Confirmed{
		OrderID:        in.OrderID,
		CompanyID:      GetCompanyID(c),
		ProductID:      in.ProductID,
		ProductQty:     in.ProductQty,
		LocationDestID: in.LocationDestID,
		LotID:          in.LotID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"order_id": order.ID, "state": string(order.State), "product_qty": order.ProductQty})
}

// Assign godoc
// @Summary      Asignar seriales a la orden
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la orden"
// @Param        body  body  dto.SerialIDsRequest  true  "Seriales"
// @Success      200   {object}  dto.BatchResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/production/{id}/assign [post]
func (h *ProductionHandler) Assign(c *fiber.Ctx) error {
	ids, bad := parseSerialIDs(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	res, err := h.svc.AssignToProduction(c.UserContext(), production.Assign{
		OrderID:   c.Params("id"),
		SerialIDs: ids,
		ActorID:   GetUserID(c),
	})
	return writeBatch(c, res, err)
}

// Completed godoc
// @Summary      Orden de producción terminada
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductionCompletedRequest  true  "Cantidad producida y lote"
// @Success      200   {object}  dto.CompletionResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/production/completed [post]
func (h *ProductionHandler) Completed(c *fiber.Ctx) error {
	var in dto.ProductionCompletedRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	res, err := h.svc.OnProductionCompleted(c.UserContext(), production.Completed{
		OrderID:     in.OrderID,
		ProductID:   in.ProductID,
		QtyProduced: in.QtyProduced,
		LotID:       in.LotID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CompletionResponse{OrderID: res.OrderID, LotID: res.LotID, Serials: nonNil(res.Serials)})
}

// Split godoc
// @Summary      Orden dividida en backorders
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductionSplitRequest  true  "Orden original y resultantes"
// @Success      200   {object}  dto.SplitResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/production/split [post]
func (h *ProductionHandler) Split(c *fiber.Ctx) error {
	var in dto.ProductionSplitRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	res, err := h.svc.OnProductionSplit(c.UserContext(), production.Split{
		OriginalOrderID:   in.OriginalOrderID,
		ResultingOrderIDs: in.ResultingOrderIDs,
		CompletedQty:      in.CompletedQty,
	})
	if err != nil {
		return writeError(c, err)
	}
	reassigned := res.Reassigned
	if reassigned == nil {
		reassigned = map[string][]string{}
	}
	return c.JSON(dto.SplitResponse{NoOp: res.NoOp, Reassigned: reassigned, Unassigned: nonNil(res.Unassigned)})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
