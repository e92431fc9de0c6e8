package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Ciclo de vida de seriales
	ErrInvalidTransition   = errors.New("transición de estado inválida")
	ErrCapacityExceeded    = errors.New("cantidad supera lo producido por la orden")
	ErrInsufficientSerials = errors.New("seriales insuficientes para la cantidad requerida")
	ErrIneligibleState     = errors.New("estado no elegible para transferencia de custodia")
	ErrNotEligible         = errors.New("serial sin estado previo para revertir")
	ErrDuplicateName       = errors.New("el serial ya existe en la categoría")
	ErrDuplicateEvent      = errors.New("evento de historial duplicado")

	// Conciliación de devoluciones
	ErrNoMatchingSerials          = errors.New("no hay seriales entregados en el documento original")
	ErrInsufficientShippedSerials = errors.New("seriales entregados insuficientes para la devolución")
)

// SerialError identifica el serial que falló dentro de un lote. Unwrap devuelve el error de dominio.
type SerialError struct {
	SerialID string
	Name     string
	Err      error
}

func (e *SerialError) Error() string {
	label := e.Name
	if label == "" {
		label = e.SerialID
	}
	return fmt.Sprintf("serial %s: %v", label, e.Err)
}

func (e *SerialError) Unwrap() error { return e.Err }

// BatchResult resultado por registro de una operación en lote: nada se cuenta sin nombrarse.
type BatchResult struct {
	Succeeded []string       // IDs procesados
	Names     []string       // nombres de los procesados, mismo orden que Succeeded
	Failed    []*SerialError // fallos por serial
}

// Add registra un serial procesado.
func (r *BatchResult) Add(id, name string) {
	r.Succeeded = append(r.Succeeded, id)
	r.Names = append(r.Names, name)
}

// Fail registra un fallo para un serial.
func (r *BatchResult) Fail(id, name string, err error) {
	r.Failed = append(r.Failed, &SerialError{SerialID: id, Name: name, Err: err})
}

// FailedNames devuelve los nombres (o IDs) de los seriales que fallaron.
func (r *BatchResult) FailedNames() []string {
	out := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		if f.Name != "" {
			out = append(out, f.Name)
		} else {
			out = append(out, f.SerialID)
		}
	}
	return out
}

// NamedError envuelve err con la lista de seriales implicados, como el mensaje bloqueante del ERP.
func NamedError(err error, names []string) error {
	if len(names) == 0 {
		return err
	}
	return fmt.Errorf("%w: %s", err, strings.Join(names, ", "))
}
