// Package tenant provides tenant scoping for GORM queries.
//
// Every ledger table carries tenant_id. Reads go through TenantScope so a row
// of another tenant is indistinguishable from a missing one.
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is returned when a query is scoped with the nil tenant
var ErrTenantIDRequired = errors.New("tenant_id is required")

// TenantScope applies tenant filtering to GORM queries. The nil tenant adds
// ErrTenantIDRequired to the statement instead of matching nothing silently.
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where("tenant_id = ?", tenantID)
	}
}
