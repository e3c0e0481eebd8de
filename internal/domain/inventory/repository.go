package inventory

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository is the stock ledger's persistence port
type ProductRepository interface {
	// FindByIDForTenant returns shared.NotFoundError for missing rows and rows of other tenants
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	// FindByIDsForTenant returns the subset of ids owned by the tenant
	FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Product, error)
	Save(ctx context.Context, product *Product) error
	// DecrementStock subtracts qty in a single conditional update ("where stock >= qty").
	// It fails with shared.InsufficientStockError or shared.NotFoundError and never
	// leaves stock negative.
	DecrementStock(ctx context.Context, tenantID, productID uuid.UUID, qty int) error
	// FindLowStock lists active products with stock <= min_stock, lowest stock first
	FindLowStock(ctx context.Context, tenantID uuid.UUID, limit int) ([]Product, error)
}
