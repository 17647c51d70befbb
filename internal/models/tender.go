package models

import "time"

type Tender struct {
	TenderID      string     `gorm:"type:text;primaryKey;column:tender_id" json:"tender_id"`
	ReleaseID     string     `gorm:"type:text;not null;uniqueIndex" json:"release_id"`
	Title         string     `gorm:"type:varchar(300)" json:"title"`
	Description   string     `gorm:"type:varchar(1000)" json:"description"`
	BuyerName     string     `gorm:"type:varchar(255)" json:"buyer_name"`
	Category      string     `gorm:"type:text" json:"category"`
	ProcedureType string     `gorm:"type:text" json:"procedure_type"`
	Amount        float64    `gorm:"type:double precision" json:"amount"`
	Currency      string     `gorm:"type:text" json:"currency"`
	PubDate       *time.Time `gorm:"type:date" json:"pub_date,omitempty"`
	Status        string     `gorm:"type:text" json:"status"`
	LocationFull  string     `gorm:"type:varchar(255)" json:"location_full"`
	Department    string     `gorm:"type:text" json:"department"`
	Province      string     `gorm:"type:text" json:"province"`
	District      string     `gorm:"type:text" json:"district"`
	SourceFile    string     `gorm:"type:text" json:"source_file"`
	LoadedAt      time.Time  `gorm:"not null" json:"loaded_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}
