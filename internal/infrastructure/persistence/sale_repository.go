package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/posledger/backend/internal/infrastructure/persistence/models"
	"github.com/posledger/backend/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSaleRepository implements trade.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Create inserts the sale header and its items
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	return ConnFromContext(ctx, r.db).Create(models.SaleModelFromDomain(sale)).Error
}

// FindByIDForTenant loads a sale with its items
func (r *GormSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := ConnFromContext(ctx, r.db).
		Preload("Items").
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("sale")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOutstandingByCustomer lists open CREDIT sales, oldest first
func (r *GormSaleRepository) FindOutstandingByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]trade.Sale, error) {
	var rows []models.SaleModel
	if err := r.outstanding(ctx, tenantID).
		Where("customer_id = ?", customerID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return salesToDomain(rows), nil
}

// FindOutstandingCredit lists every open CREDIT sale of the tenant
func (r *GormSaleRepository) FindOutstandingCredit(ctx context.Context, tenantID uuid.UUID) ([]trade.Sale, error) {
	var rows []models.SaleModel
	if err := r.outstanding(ctx, tenantID).
		Order("due_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return salesToDomain(rows), nil
}

func (r *GormSaleRepository) outstanding(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return ConnFromContext(ctx, r.db).
		Scopes(tenant.TenantScope(tenantID)).
		Where("payment_method = ? AND payment_status IN ?", trade.PaymentMethodCredit, trade.OutstandingStatuses())
}

// settleStatusExpr picks PAID once the balance reaches zero. The literals are
// inlined so postgres never has to type an untyped CASE parameter.
var settleStatusExpr = fmt.Sprintf("CASE WHEN remaining_balance - ? = 0 THEN '%s' ELSE '%s' END",
	trade.PaymentStatusPaid, trade.PaymentStatusPartial)

// ApplyPayment moves amount from remaining_balance to amount_paid in one
// guarded update
func (r *GormSaleRepository) ApplyPayment(ctx context.Context, tenantID, saleID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("amount", "must be positive")
	}
	result := ConnFromContext(ctx, r.db).Model(&models.SaleModel{}).
		Where("tenant_id = ? AND id = ? AND remaining_balance >= ?", tenantID, saleID, amount).
		Updates(map[string]any{
			"amount_paid":       gorm.Expr("amount_paid + ?", amount),
			"remaining_balance": gorm.Expr("remaining_balance - ?", amount),
			"payment_status":    gorm.Expr(settleStatusExpr, amount),
			"version":           gorm.Expr("version + 1"),
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyConflictError("sale", saleID)
	}
	return nil
}

func salesToDomain(rows []models.SaleModel) []trade.Sale {
	out := make([]trade.Sale, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out
}
