package dto

import "time"

// CreateDistributionSettingsRequest entrada para registrar un certificado CoC.
// Las fechas van en formato YYYY-MM-DD.
type CreateDistributionSettingsRequest struct {
	Sequence                int    `json:"sequence"`
	CocHolderName           string `json:"coc_holder_name" validate:"required"`
	CocHolderUEN            string `json:"coc_holder_uen"`
	CocReferenceNumber      string `json:"coc_reference_number"`
	LocalRepresentativeName string `json:"local_representative_name"`
	LocalRepresentativeUEN  string `json:"local_representative_uen"`
	CertificateNo           string `json:"certificate_no" validate:"required"`
	IssueDate               string `json:"issue_date"`
	ExpiryDate              string `json:"expiry_date"`
	Notes                   string `json:"notes"`
}

// DistributionSettingsResponse salida de la configuración CoC.
type DistributionSettingsResponse struct {
	ID                      string     `json:"id"`
	CompanyID               string     `json:"company_id"`
	Sequence                int        `json:"sequence"`
	CocHolderName           string     `json:"coc_holder_name"`
	CocHolderUEN            string     `json:"coc_holder_uen"`
	CocReferenceNumber      string     `json:"coc_reference_number"`
	LocalRepresentativeName string     `json:"local_representative_name"`
	LocalRepresentativeUEN  string     `json:"local_representative_uen"`
	CertificateNo           string     `json:"certificate_no"`
	IssueDate               *time.Time `json:"issue_date,omitempty"`
	ExpiryDate              *time.Time `json:"expiry_date,omitempty"`
	Active                  bool       `json:"active"`
	Notes                   string     `json:"notes,omitempty"`
}
