package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const nextFolioSQL = `
INSERT INTO folio_sequences (tenant_id, day, last_value) VALUES (?, ?, 1)
ON CONFLICT (tenant_id, day) DO UPDATE SET last_value = folio_sequences.last_value + 1
RETURNING last_value`

// GormFolioSequencer implements trade.FolioSequencer with an upserted
// counter row per tenant and day
type GormFolioSequencer struct {
	db *gorm.DB
}

// NewGormFolioSequencer creates a new GormFolioSequencer
func NewGormFolioSequencer(db *gorm.DB) *GormFolioSequencer {
	return &GormFolioSequencer{db: db}
}

// NextFolioSequence increments and returns the tenant's counter for day. The
// row lock taken by the upsert serialises concurrent sales until commit.
func (s *GormFolioSequencer) NextFolioSequence(ctx context.Context, tenantID uuid.UUID, day string) (int64, error) {
	var next int64
	if err := ConnFromContext(ctx, s.db).Raw(nextFolioSQL, tenantID, day).Scan(&next).Error; err != nil {
		return 0, fmt.Errorf("next folio sequence: %w", err)
	}
	if next <= 0 {
		return 0, fmt.Errorf("next folio sequence: unexpected value %d", next)
	}
	return next, nil
}
