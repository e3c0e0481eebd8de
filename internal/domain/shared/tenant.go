package shared

import "github.com/google/uuid"

// TenantContext is the already-authenticated caller identity supplied by the
// session resolver in front of the ledger. The ledger trusts it as given.
type TenantContext struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     string
}

// Validate rejects a context without a tenant.
func (tc TenantContext) Validate() error {
	if tc.TenantID == uuid.Nil {
		return NewValidationError("tenant_id", "tenant is required")
	}
	return nil
}
