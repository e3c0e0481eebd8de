package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/infrastructure/persistence/models"
	"github.com/posledger/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormProductRepository implements inventory.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByIDForTenant finds a product by ID within a tenant
func (r *GormProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Product, error) {
	var model models.ProductModel
	if err := ConnFromContext(ctx, r.db).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("product")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDsForTenant finds the tenant's products among ids
func (r *GormProductRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]inventory.Product, error) {
	if len(ids) == 0 {
		return []inventory.Product{}, nil
	}
	var rows []models.ProductModel
	if err := ConnFromContext(ctx, r.db).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// Save inserts or fully updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *inventory.Product) error {
	return ConnFromContext(ctx, r.db).Save(models.ProductModelFromDomain(product)).Error
}

// DecrementStock subtracts qty only while stock >= qty
func (r *GormProductRepository) DecrementStock(ctx context.Context, tenantID, productID uuid.UUID, qty int) error {
	if err := inventory.ValidateQuantity(qty); err != nil {
		return err
	}
	db := ConnFromContext(ctx, r.db)
	result := db.Model(&models.ProductModel{}).
		Where("tenant_id = ? AND id = ? AND stock >= ?", tenantID, productID, qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Nothing matched: tell a missing product apart from a short one.
	var current models.ProductModel
	if err := db.Select("stock").
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		First(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewNotFoundError("product")
		}
		return err
	}
	if current.Stock < qty {
		return &shared.InsufficientStockError{
			ProductID: productID,
			Available: current.Stock,
			Requested: qty,
		}
	}
	return shared.NewConcurrencyConflictError("product", productID)
}

// FindLowStock lists active products at or under their minimum, lowest stock first
func (r *GormProductRepository) FindLowStock(ctx context.Context, tenantID uuid.UUID, limit int) ([]inventory.Product, error) {
	var rows []models.ProductModel
	query := ConnFromContext(ctx, r.db).
		Scopes(tenant.TenantScope(tenantID)).
		Where("is_active = ? AND stock <= min_stock", true).
		Order("stock ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

func productsToDomain(rows []models.ProductModel) []inventory.Product {
	out := make([]inventory.Product, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out
}
