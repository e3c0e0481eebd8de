package trade

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
)

// DefaultFolioPrefix is used when no prefix is configured
const DefaultFolioPrefix = "V"

const folioDayLayout = "20060102"

// MaxFolioSequence is the largest daily sequence that fits the six-digit
// folio field. Past it folios would stop sorting lexically.
const MaxFolioSequence = 999999

// FolioDay returns the sequence bucket for t (UTC calendar day)
func FolioDay(t time.Time) string {
	return t.UTC().Format(folioDayLayout)
}

// FormatFolio renders PREFIX-YYYYMMDD-NNNNNN. Folios sort by day and then by
// the per-tenant daily sequence, and are unique within a tenant.
func FormatFolio(prefix string, t time.Time, seq int64) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = DefaultFolioPrefix
	}
	return fmt.Sprintf("%s-%s-%06d", prefix, FolioDay(t), seq)
}

// CheckFolioSequence rejects a sequence that FormatFolio cannot render in
// six digits
func CheckFolioSequence(seq int64) error {
	if seq < 1 || seq > MaxFolioSequence {
		return fmt.Errorf("%w: daily folio sequence %d is outside 1..%d", shared.ErrInvalidState, seq, MaxFolioSequence)
	}
	return nil
}

// FolioSequencer hands out the next value of a tenant's daily folio counter.
// Implementations must be atomic and take part in the caller's transaction.
type FolioSequencer interface {
	NextFolioSequence(ctx context.Context, tenantID uuid.UUID, day string) (int64, error)
}
