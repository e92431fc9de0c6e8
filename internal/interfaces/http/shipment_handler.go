package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/setsco-serial-api/internal/application/dto"
	"github.com/jhoicas/setsco-serial-api/internal/application/ledger"
	"github.com/jhoicas/setsco-serial-api/internal/application/returns"
	"github.com/jhoicas/setsco-serial-api/internal/application/shipment"
	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
)

// ShipmentHandler pickings validados, devoluciones y migración de entregas heredadas.
type ShipmentHandler struct {
	shipments *shipment.Service
	returns   *returns.Service
	ledger    *ledger.Ledger
}

// NewShipmentHandler construye el handler.
func NewShipmentHandler(shipments *shipment.Service, ret *returns.Service, l *ledger.Ledger) *ShipmentHandler {
	return &ShipmentHandler{shipments: shipments, returns: ret, ledger: l}
}

// Validated godoc
// @Summary      Picking validado
// @Description  Las líneas se procesan por separado; una línea fallida no revierte las demás.
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ShipmentValidatedRequest  true  "Picking y líneas"
// @Success      200   {object}  dto.ShipmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/shipments/validated [post]
func (h *ShipmentHandler) Validated(c *fiber.Ctx) error {
	var in dto.ShipmentValidatedRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	pt := entity.PickingType(in.PickingType)
	switch pt {
	case entity.PickingTypeIncoming, entity.PickingTypeOutgoing, entity.PickingTypeInternal:
	default:
		return badRequest(c, "VALIDATION", "picking_type debe ser incoming, outgoing o internal")
	}
	ev := shipment.Validated{
		PickingID:      in.PickingID,
		PickingType:    pt,
		CompanyID:      GetCompanyID(c),
		LocationDestID: in.LocationDestID,
	}
	for _, l := range in.Lines {
		ev.Lines = append(ev.Lines, shipment.Line{
			MoveLineID: l.MoveLineID,
			ProductID:  l.ProductID,
			LotID:      l.LotID,
			Qty:        l.Qty,
			SerialIDs:  l.SerialIDs,
		})
	}
	res, err := h.shipments.OnShipmentValidated(c.UserContext(), ev)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ShipmentResponse{PickingID: res.PickingID, Lines: make([]dto.ShipmentLineResponse, 0, len(res.Lines)), Failed: res.Failed()}
	for _, lr := range res.Lines {
		line := dto.ShipmentLineResponse{MoveLineID: lr.MoveLineID, Serials: nonNil(lr.Serials), Skipped: lr.Skipped}
		if lr.Err != nil {
			_, body := errorBody(lr.Err)
			line.Error = &body
		}
		out.Lines = append(out.Lines, line)
	}
	return c.JSON(out)
}

// Return godoc
// @Summary      Conciliar devolución contra la entrega original
// @Description  Selecciona seriales entregados en el picking original y los agrupa por lote.
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReturnRequest  true  "Devolución"
// @Success      200   {object}  dto.ReturnResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/returns [post]
func (h *ShipmentHandler) Return(c *fiber.Ctx) error {
	var in dto.ReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	res, err := h.returns.ReconcileReturn(c.UserContext(), returns.Requested{
		OriginalPickingID: in.OriginalPickingID,
		ReturnPickingID:   in.ReturnPickingID,
		ProductID:         in.ProductID,
		Qty:               in.Qty,
		CompanyID:         GetCompanyID(c),
	})
	if res == nil {
		return writeError(c, err)
	}
	out := dto.ReturnResponse{
		ReturnPickingID: res.ReturnPickingID,
		Requested:       res.Requested,
		Staged:          res.Staged,
		Lines:           make([]dto.ReturnLineResponse, 0, len(res.Lines)),
	}
	for _, l := range res.Lines {
		out.Lines = append(out.Lines, dto.ReturnLineResponse{MoveLineID: l.MoveLineID, LotID: l.LotID, Quantity: l.Quantity, Serials: nonNil(l.Serials)})
	}
	if err != nil {
		if !errors.Is(err, domain.ErrInsufficientShippedSerials) {
			return writeError(c, err)
		}
		status, body := errorBody(err)
		return c.Status(status).JSON(fiber.Map{"error": body, "result": out})
	}
	return c.JSON(out)
}

// Backfill godoc
// @Summary      Completar historial de una entrega heredada
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        picking_id  path  string  true  "Picking de salida"
// @Success      200  {object}  map[string]int
// @Router       /api/shipments/{picking_id}/backfill [post]
func (h *ShipmentHandler) Backfill(c *fiber.Ctx) error {
	n, err := h.ledger.Backfill(c.UserContext(), c.Params("picking_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"written": n})
}
