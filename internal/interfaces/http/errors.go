package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/setsco-serial-api/internal/application/dto"
	"github.com/jhoicas/setsco-serial-api/internal/domain"
)

// errorMapping sentinel del dominio -> status HTTP y código.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicateName, fiber.StatusConflict, "DUPLICATE_NAME"},
	{domain.ErrDuplicateEvent, fiber.StatusConflict, "DUPLICATE_EVENT"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrCapacityExceeded, fiber.StatusConflict, "CAPACITY_EXCEEDED"},
	{domain.ErrIneligibleState, fiber.StatusConflict, "INELIGIBLE_STATE"},
	{domain.ErrNotEligible, fiber.StatusConflict, "NOT_ELIGIBLE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrInsufficientSerials, fiber.StatusUnprocessableEntity, "INSUFFICIENT_SERIALS"},
	{domain.ErrNoMatchingSerials, fiber.StatusUnprocessableEntity, "NO_MATCHING_SERIALS"},
	{domain.ErrInsufficientShippedSerials, fiber.StatusUnprocessableEntity, "INSUFFICIENT_SHIPPED_SERIALS"},
}

// errorBody traduce err a status y cuerpo; errores no reconocidos son 500 INTERNAL.
func errorBody(err error) (int, dto.ErrorResponse) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return m.status, dto.ErrorResponse{Code: m.code, Message: err.Error()}
		}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()}
}

func writeError(c *fiber.Ctx, err error) error {
	status, body := errorBody(err)
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: msg})
}

func toBatchResponse(res *domain.BatchResult) dto.BatchResponse {
	out := dto.BatchResponse{Succeeded: []string{}, Names: []string{}, Failed: []dto.SerialFailure{}}
	if res == nil {
		return out
	}
	out.Succeeded = append(out.Succeeded, res.Succeeded...)
	out.Names = append(out.Names, res.Names...)
	for _, f := range res.Failed {
		_, body := errorBody(f.Err)
		out.Failed = append(out.Failed, dto.SerialFailure{SerialID: f.SerialID, Name: f.Name, Code: body.Code, Message: f.Err.Error()})
	}
	return out
}

// writeBatch responde 200 con el detalle por serial; si además hubo un error estructural
// (p.ej. ningún serial elegible) responde con el status de ese error.
func writeBatch(c *fiber.Ctx, res *domain.BatchResult, err error) error {
	if err != nil {
		if res == nil {
			return writeError(c, err)
		}
		status, body := errorBody(err)
		return c.Status(status).JSON(fiber.Map{"error": body, "result": toBatchResponse(res)})
	}
	return c.JSON(toBatchResponse(res))
}
