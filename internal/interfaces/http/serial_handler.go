package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/setsco-serial-api/internal/application/dto"
	"github.com/jhoicas/setsco-serial-api/internal/application/ledger"
	"github.com/jhoicas/setsco-serial-api/internal/application/serial"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
)

// SerialHandler registro de seriales, transiciones manuales e historial.
type SerialHandler struct {
	registry *serial.Registry
	ledger   *ledger.Ledger
}

// NewSerialHandler construye el handler.
func NewSerialHandler(registry *serial.Registry, l *ledger.Ledger) *SerialHandler {
	return &SerialHandler{registry: registry, ledger: l}
}

// Create godoc
// @Summary      Registrar serial
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSerialRequest  true  "Datos del serial"
// @Success      201   {object}  dto.SerialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/serials [post]
func (h *SerialHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSerialRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.CategoryID == "" || strings.TrimSpace(in.Name) == "" {
		return badRequest(c, "VALIDATION", "category_id y name son requeridos")
	}
	u, err := h.registry.Create(c.UserContext(), serial.CreateInput{
		CompanyID:  GetCompanyID(c),
		CategoryID: in.CategoryID,
		Name:       in.Name,
		SerialType: entity.SerialType(in.SerialType),
		ProductID:  in.ProductID,
		Purchased:  in.Purchased,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSerialResponse(u))
}

// CreateRange godoc
// @Summary      Registrar rango de seriales
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRangeRequest  true  "Inicio y fin del rango"
// @Success      201   {object}  dto.RangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/serials/range [post]
func (h *SerialHandler) CreateRange(c *fiber.Ctx) error {
	var in dto.CreateRangeRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.CategoryID == "" || in.Start == "" || in.End == "" {
		return badRequest(c, "VALIDATION", "category_id, start y end son requeridos")
	}
	res, err := h.registry.CreateRange(c.UserContext(), serial.RangeInput{
		CompanyID:  GetCompanyID(c),
		CategoryID: in.CategoryID,
		Start:      in.Start,
		End:        in.End,
		SerialType: entity.SerialType(in.SerialType),
		ProductID:  in.ProductID,
		Purchased:  in.Purchased,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.RangeResponse{Created: make([]dto.SerialResponse, 0, len(res.Created)), Skipped: res.Skipped}
	if out.Skipped == nil {
		out.Skipped = []string{}
	}
	for _, u := range res.Created {
		out.Created = append(out.Created, toSerialResponse(u))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener serial por ID
// @Tags         serials
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del serial"
// @Success      200  {object}  dto.SerialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/serials/{id} [get]
func (h *SerialHandler) GetByID(c *fiber.Ctx) error {
	u, err := h.registry.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSerialResponse(u))
}

// List godoc
// @Summary      Listar seriales
// @Tags         serials
// @Security     Bearer
// @Produce      json
// @Param        category_id  query  string  false  "Categoría"
// @Param        state        query  string  false  "Estado (separados por coma)"
// @Param        product_id   query  string  false  "Producto"
// @Param        limit        query  int     false  "Límite"  default(100)
// @Success      200  {array}  dto.SerialResponse
// @Router       /api/serials [get]
func (h *SerialHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	f := repository.SerialFilter{
		CompanyID:  GetCompanyID(c),
		CategoryID: c.Query("category_id"),
		ProductID:  c.Query("product_id"),
		ActiveOnly: c.QueryBool("active_only", true),
		Limit:      limit,
	}
	for _, s := range strings.Split(c.Query("state"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			st := entity.SerialState(s)
			if !st.Valid() {
				return badRequest(c, "VALIDATION", "estado desconocido: "+s)
			}
			f.States = append(f.States, st)
		}
	}
	list, err := h.registry.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.SerialResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toSerialResponse(u))
	}
	return c.JSON(out)
}

// Transition godoc
// @Summary      Cambio de estado manual
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del serial"
// @Param        body  body  dto.TransitionRequest  true  "Estado destino y datos requeridos"
// @Success      200   {object}  dto.SerialResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/serials/{id}/transition [post]
func (h *SerialHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	to := entity.SerialState(in.To)
	if !to.Valid() {
		return badRequest(c, "VALIDATION", "estado destino inválido")
	}
	u, err := h.registry.Transition(c.UserContext(), c.Params("id"), to, serial.TransitionInput{
		ProductionOrderID: in.ProductionOrderID,
		LotID:             in.LotID,
		LocationID:        in.LocationID,
		MoveLineID:        in.MoveLineID,
		PickingID:         in.PickingID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSerialResponse(u))
}

// Link godoc
// @Summary      Vincular serial a equipo terminado
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID del serial"
// @Param        body  body  dto.LinkRequest  true  "Equipo"
// @Success      200   {object}  dto.SerialResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/serials/{id}/link [post]
func (h *SerialHandler) Link(c *fiber.Ctx) error {
	var in dto.LinkRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	u, err := h.registry.Link(c.UserContext(), c.Params("id"), in.LinkedUnitID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSerialResponse(u))
}

// Archive desactiva un serial.
// @Router       /api/serials/{id}/archive [post]
func (h *SerialHandler) Archive(c *fiber.Ctx) error {
	if err := h.registry.Archive(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkPurchased godoc
// @Summary      Marcar seriales como comprados
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SerialIDsRequest  true  "Seriales"
// @Success      200   {object}  dto.BatchResponse
// @Router       /api/serials/purchased [post]
func (h *SerialHandler) MarkPurchased(c *fiber.Ctx) error {
	ids, bad := parseSerialIDs(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	res, opErr := h.registry.MarkPurchased(c.UserContext(), ids)
	return writeBatch(c, res, opErr)
}

// Void godoc
// @Summary      Liberar seriales de producción
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SerialIDsRequest  true  "Seriales"
// @Success      200   {object}  dto.BatchResponse
// @Router       /api/serials/void [post]
func (h *SerialHandler) Void(c *fiber.Ctx) error {
	ids, bad := parseSerialIDs(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	res, opErr := h.registry.VoidFromProduction(c.UserContext(), ids)
	return writeBatch(c, res, opErr)
}

// Scrap godoc
// @Summary      Dar de baja seriales
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SerialIDsRequest  true  "Seriales"
// @Success      200   {object}  dto.BatchResponse
// @Router       /api/serials/scrap [post]
func (h *SerialHandler) Scrap(c *fiber.Ctx) error {
	ids, bad := parseSerialIDs(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	res, opErr := h.registry.Scrap(c.UserContext(), ids)
	return writeBatch(c, res, opErr)
}

// History godoc
// @Summary      Historial de movimientos del serial
// @Tags         serials
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del serial"
// @Success      200  {array}  dto.HistoryEntryResponse
// @Router       /api/serials/{id}/history [get]
func (h *SerialHandler) History(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.registry.Get(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	entries, err := h.ledger.GetHistory(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.HistoryEntryResponse{
			ID:          e.ID,
			MoveLineID:  e.MoveLineID,
			PickingID:   e.PickingID,
			PickingType: string(e.PickingType),
			Event:       string(e.Event),
			Timestamp:   e.Timestamp,
		})
	}
	return c.JSON(out)
}

// parseSerialIDs lee {"serial_ids": [...]}; devuelve el cuerpo 400 si no es válido.
func parseSerialIDs(c *fiber.Ctx) ([]string, *dto.ErrorResponse) {
	var in dto.SerialIDsRequest
	if err := c.BodyParser(&in); err != nil {
		return nil, &dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}
	}
	if len(in.SerialIDs) == 0 {
		return nil, &dto.ErrorResponse{Code: "VALIDATION", Message: "serial_ids es requerido"}
	}
	return in.SerialIDs, nil
}

func toSerialResponse(u *entity.SerialUnit) dto.SerialResponse {
	return dto.SerialResponse{
		ID:                u.ID,
		Name:              u.Name,
		SerialType:        string(u.SerialType),
		CategoryID:        u.CategoryID,
		CompanyID:         u.CompanyID,
		State:             string(u.State),
		ProductID:         u.ProductID,
		LotID:             u.LotID,
		LocationID:        u.LocationID,
		ProductionOrderID: u.ProductionOrderID,
		ProducedOrderID:   u.ProducedOrderID,
		Transferred:       u.Transferred,
		InternalCompanyID: u.InternalCompanyID,
		DeliveryPickingID: u.DeliveryPickingID,
		LinkedUnitID:      u.LinkedUnitID,
		Active:            u.Active,
		ManufacturingDate: u.ManufacturingDate,
		DeliveryDate:      u.DeliveryDate,
		ReturnDate:        u.ReturnDate,
		ScrapDate:         u.ScrapDate,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}
