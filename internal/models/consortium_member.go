package models

type ConsortiumMember struct {
	ContractID       string  `gorm:"type:text;primaryKey" json:"contract_id"`
	MemberTaxID      string  `gorm:"type:text;primaryKey" json:"member_tax_id"`
	MemberName       string  `gorm:"type:text" json:"member_name"`
	ParticipationPct float64 `gorm:"type:double precision" json:"participation_pct"`
}
