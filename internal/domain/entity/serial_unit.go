package entity

import "time"

// SerialState estado del ciclo de vida de un serial.
type SerialState string

const (
	SerialStateNew           SerialState = "new"
	SerialStatePurchased     SerialState = "purchased"
	SerialStateManufacturing SerialState = "manufacturing"
	SerialStateWarehouse     SerialState = "warehouse"
	SerialStateDelivered     SerialState = "delivered"
	SerialStateScrapped      SerialState = "scrapped"
)

// Valid indica si s es un estado conocido.
func (s SerialState) Valid() bool {
	switch s {
	case SerialStateNew, SerialStatePurchased, SerialStateManufacturing,
		SerialStateWarehouse, SerialStateDelivered, SerialStateScrapped:
		return true
	}
	return false
}

// SerialType origen de certificación del serial.
type SerialType string

const (
	SerialTypeTUV    SerialType = "tuv"
	SerialTypeSETSCO SerialType = "setsco"
)

// CustodySnapshot copia de los campos que una transferencia de custodia modifica.
// State vacío significa que no hay snapshot.
type CustodySnapshot struct {
	State             SerialState
	Transferred       bool
	InternalCompanyID string
	ProductID         string
	LocationID        string
}

// IsZero indica que el snapshot nunca fue registrado.
func (s CustodySnapshot) IsZero() bool { return s.State == "" }

// SerialUnit serial físico certificado (etiqueta SETSCO/TUV) y su trazabilidad.
// Seq es monotónico y define orden de creación y orden de bloqueo.
type SerialUnit struct {
	ID         string
	Seq        int64
	Name       string // único dentro de la categoría
	SerialType SerialType
	CategoryID string
	CompanyID  string
	ProductID  string
	LotID      string
	LocationID string
	MoveLineID string // línea de movimiento vigente (entrega o devolución preparada)
	State      SerialState

	ProductionOrderID string // orden que retiene el serial mientras está en manufactura
	ProducedOrderID   string // orden que lo produjo (se fija al pasar a bodega)

	Transferred       bool   // en custodia de otra empresa del grupo
	InternalCompanyID string // empresa custodia

	DeliveryPickingID  string // datos heredados de entrega para documentos sin historial
	DeliveryMoveLineID string

	LinkedUnitID string // equipo físico asociado (único entre seriales activos)
	Active       bool

	Previous CustodySnapshot // sobrescrito en cada transferencia
	Original CustodySnapshot // congelado en la primera transferencia
	Reversed bool            // el snapshot previo ya fue consumido

	ManufacturingDate *time.Time
	DeliveryDate      *time.Time
	ReturnDate        *time.Time
	ScrapDate         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Snapshot captura los campos de custodia actuales.
func (u *SerialUnit) Snapshot() CustodySnapshot {
	return CustodySnapshot{
		State:             u.State,
		Transferred:       u.Transferred,
		InternalCompanyID: u.InternalCompanyID,
		ProductID:         u.ProductID,
		LocationID:        u.LocationID,
	}
}

// Clone copia superficial con fechas independientes.
func (u *SerialUnit) Clone() *SerialUnit {
	c := *u
	c.ManufacturingDate = cloneTime(u.ManufacturingDate)
	c.DeliveryDate = cloneTime(u.DeliveryDate)
	c.ReturnDate = cloneTime(u.ReturnDate)
	c.ScrapDate = cloneTime(u.ScrapDate)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
