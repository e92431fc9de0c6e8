package repository

import (
	"context"

	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
)

// SerialFilter criterio de búsqueda de seriales. Campos vacíos no filtran.
// Los resultados siempre vienen ordenados por Seq (orden de creación).
type SerialFilter struct {
	IDs                []string
	CompanyID          string
	CategoryID         string
	ProductID          string
	LotID              string
	States             []entity.SerialState
	ProductionOrderIDs []string
	ProducedOrderID    string
	MoveLineID         string
	DeliveryPickingID  string
	ActiveOnly         bool
	Limit              int
	ForUpdate          bool // SELECT ... FOR UPDATE dentro de una transacción
}

// SerialRepository define el puerto de persistencia para SerialUnit (DIP).
// GetByID/GetForUpdate devuelven (nil, nil) si no existe.
type SerialRepository interface {
	Create(ctx context.Context, unit *entity.SerialUnit) error
	GetByID(ctx context.Context, id string) (*entity.SerialUnit, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.SerialUnit, error)
	GetByName(ctx context.Context, categoryID, name string) (*entity.SerialUnit, error)
	Find(ctx context.Context, f SerialFilter) ([]*entity.SerialUnit, error)
	Count(ctx context.Context, f SerialFilter) (int, error)
	Update(ctx context.Context, unit *entity.SerialUnit) error
	// ExistsActiveLink indica si otro serial activo ya está asociado a linkedUnitID.
	ExistsActiveLink(ctx context.Context, linkedUnitID, excludeID string) (bool, error)
}
