package models

import "github.com/google/uuid"

// FolioSequenceModel is the per-tenant, per-day folio counter
type FolioSequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Day       string    `gorm:"type:varchar(8);primaryKey"`
	LastValue int64     `gorm:"not null"`
}

func (FolioSequenceModel) TableName() string {
	return "folio_sequences"
}
