package models

import "time"

// Financing sentinels written by the enrichment crawler. Anything else stored
// in FinancingEntity is a joined list of real guarantee issuers.
const (
	FinancingNoGuarantee     = "SIN GARANTIA"
	FinancingNotFound        = "NO ENCONTRADO"
	FinancingConnectionError = "ERROR DE CONEXION"

	FinancingTypeGuarantee = "CARTA FIANZA"
	FinancingTypeRetention = "RETENCION"
)

type Award struct {
	AwardID         string     `gorm:"type:text;primaryKey;column:award_id" json:"award_id"`
	ContractID      string     `gorm:"type:text" json:"contract_id"`
	TenderID        string     `gorm:"type:text;index" json:"tender_id"`
	WinnerName      string     `gorm:"type:varchar(255)" json:"winner_name"`
	WinnerTaxID     string     `gorm:"type:text" json:"winner_tax_id"`
	Amount          float64    `gorm:"type:double precision" json:"amount"`
	AwardDate       *time.Time `gorm:"type:date" json:"award_date,omitempty"`
	ItemStatus      string     `gorm:"type:text" json:"item_status"`
	FinancingEntity *string    `gorm:"type:text" json:"financing_entity,omitempty"`
}

// FinancingType derives the guarantee mechanism from the recorded financing
// entity: a real issuer means a bank guarantee, the no-guarantee sentinel
// means payment retention, and error sentinels stay undetermined.
func (a Award) FinancingType() string {
	if a.FinancingEntity == nil {
		return ""
	}
	switch *a.FinancingEntity {
	case FinancingNoGuarantee:
		return FinancingTypeRetention
	case "", FinancingNotFound, FinancingConnectionError:
		return ""
	}
	if len(*a.FinancingEntity) > 6 && (*a.FinancingEntity)[:6] == "ERROR-" {
		return ""
	}
	return FinancingTypeGuarantee
}
