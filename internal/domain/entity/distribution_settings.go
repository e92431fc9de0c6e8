package entity

import "time"

// DistributionSettings datos del certificado de conformidad (CoC) vigentes para documentos de entrega.
type DistributionSettings struct {
	ID                      string
	CompanyID               string
	Sequence                int
	CocHolderName           string
	CocHolderUEN            string
	CocReferenceNumber      string
	LocalRepresentativeName string
	LocalRepresentativeUEN  string
	CertificateNo           string
	IssueDate               *time.Time
	ExpiryDate              *time.Time // nil = sin vencimiento
	Active                  bool
	Notes                   string
	CreatedAt               time.Time
}

// ValidAt indica si la configuración está vigente en la fecha dada.
func (d *DistributionSettings) ValidAt(day time.Time) bool {
	if !d.Active {
		return false
	}
	if d.ExpiryDate == nil {
		return true
	}
	return !d.ExpiryDate.Before(truncateDay(day))
}

func truncateDay(t time.Time) time.Time {
	y, m, dd := t.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, t.Location())
}
