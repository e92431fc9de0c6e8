package lifecycle

import (
	"fmt"
	"time"

	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
)

// CanAssignCustody un serial en new o warehouse puede cederse a una empresa distinta de la actual custodia.
func CanAssignCustody(u *entity.SerialUnit, companyID string) bool {
	if u.Transferred || u.InternalCompanyID == companyID {
		return false
	}
	return u.State == entity.SerialStateNew || u.State == entity.SerialStateWarehouse
}

// CanReceiveCustody un serial cedido (manufacturing + transferido) puede recibirse por otra empresa.
func CanReceiveCustody(u *entity.SerialUnit, companyID string) bool {
	return u.Transferred && u.State == entity.SerialStateManufacturing && u.InternalCompanyID != companyID
}

// CanReverse indica si existe un snapshot previo no consumido.
func CanReverse(u *entity.SerialUnit) bool {
	return !u.Previous.IsZero() && !u.Reversed
}

// recordPrevious sobrescribe el snapshot previo con el estado actual.
func recordPrevious(u *entity.SerialUnit) {
	u.Previous = u.Snapshot()
	u.Reversed = false
}

// consumePrevious guarda prev como snapshot previo sin permitir Reverse: solo una
// operación de custodia deja un snapshot reversible.
func consumePrevious(u *entity.SerialUnit, prev entity.CustodySnapshot) {
	u.Previous = prev
	u.Reversed = true
}

// recordOriginalIfUnset congela el snapshot original solo en la primera transferencia.
func recordOriginalIfUnset(u *entity.SerialUnit) {
	if u.Original.IsZero() {
		u.Original = u.Snapshot()
	}
}

// AssignCustody cede el serial a companyID: queda en manufactura, marcado como transferido.
func AssignCustody(u *entity.SerialUnit, companyID string, at time.Time) error {
	if companyID == "" {
		return fmt.Errorf("%w: empresa destino requerida", domain.ErrInvalidInput)
	}
	if !CanAssignCustody(u, companyID) {
		return fmt.Errorf("%w: %s en estado %s", domain.ErrIneligibleState, u.Name, u.State)
	}
	recordPrevious(u)
	recordOriginalIfUnset(u)
	u.State = entity.SerialStateManufacturing
	u.Transferred = true
	u.InternalCompanyID = companyID
	u.UpdatedAt = at
	return nil
}

// ReceiveCustody registra la recepción por companyID: el serial pasa a bodega en la ubicación indicada.
func ReceiveCustody(u *entity.SerialUnit, companyID, productID, locationID string, at time.Time) error {
	if companyID == "" {
		return fmt.Errorf("%w: empresa receptora requerida", domain.ErrInvalidInput)
	}
	if !CanReceiveCustody(u, companyID) {
		return fmt.Errorf("%w: %s no está en custodia transferida", domain.ErrIneligibleState, u.Name)
	}
	recordPrevious(u)
	recordOriginalIfUnset(u)
	u.State = entity.SerialStateWarehouse
	u.Transferred = false
	u.InternalCompanyID = companyID
	if productID != "" {
		u.ProductID = productID
	}
	if locationID != "" {
		u.LocationID = locationID
	}
	u.UpdatedAt = at
	return nil
}

// Reverse restaura el snapshot previo. Es de un solo nivel: un segundo Reverse
// sin transferencia intermedia falla con ErrNotEligible.
func Reverse(u *entity.SerialUnit, at time.Time) error {
	if !CanReverse(u) {
		return fmt.Errorf("%w: %s", domain.ErrNotEligible, u.Name)
	}
	p := u.Previous
	u.State = p.State
	u.Transferred = p.Transferred
	u.InternalCompanyID = p.InternalCompanyID
	u.ProductID = p.ProductID
	u.LocationID = p.LocationID
	u.Reversed = true
	u.UpdatedAt = at
	return nil
}
