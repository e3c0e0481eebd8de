package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/partner"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/posledger/backend/internal/infrastructure/persistence/models"
	"github.com/posledger/backend/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByIDForTenant finds a customer by ID within a tenant
func (r *GormCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := ConnFromContext(ctx, r.db).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("customer")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or fully updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return ConnFromContext(ctx, r.db).Save(models.CustomerModelFromDomain(customer)).Error
}

// IncreaseDebt adds amount while current_debt + amount stays within credit_limit
func (r *GormCustomerRepository) IncreaseDebt(ctx context.Context, tenantID, customerID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("amount", "must be positive")
	}
	db := ConnFromContext(ctx, r.db)
	result := db.Model(&models.CustomerModel{}).
		Where("tenant_id = ? AND id = ? AND current_debt + ? <= credit_limit", tenantID, customerID, amount).
		Updates(map[string]any{
			"current_debt": gorm.Expr("current_debt + ?", amount),
			"version":      gorm.Expr("version + 1"),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var current models.CustomerModel
	if err := db.Select("credit_limit", "current_debt").
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		First(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewNotFoundError("customer")
		}
		return err
	}
	if current.CurrentDebt.Add(amount).LessThanOrEqual(current.CreditLimit) {
		return shared.NewConcurrencyConflictError("customer", customerID)
	}
	return &shared.CreditLimitExceededError{
		CustomerID:  customerID,
		Limit:       current.CreditLimit,
		CurrentDebt: current.CurrentDebt,
		Attempted:   amount,
	}
}

// DecreaseDebt subtracts amount, flooring current_debt at zero
func (r *GormCustomerRepository) DecreaseDebt(ctx context.Context, tenantID, customerID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("amount", "must be positive")
	}
	result := ConnFromContext(ctx, r.db).Model(&models.CustomerModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		Updates(map[string]any{
			"current_debt": gorm.Expr("CASE WHEN current_debt < ? THEN 0 ELSE current_debt - ? END", amount, amount),
			"version":      gorm.Expr("version + 1"),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("customer")
	}
	return nil
}

// FindWithDebt lists the tenant's customers with current_debt > 0
func (r *GormCustomerRepository) FindWithDebt(ctx context.Context, tenantID uuid.UUID) ([]partner.Customer, error) {
	var rows []models.CustomerModel
	if err := ConnFromContext(ctx, r.db).
		Scopes(tenant.TenantScope(tenantID)).
		Where("current_debt > ?", 0).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]partner.Customer, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

type debtRow struct {
	CustomerID  uuid.UUID
	CurrentDebt decimal.Decimal
	Computed    decimal.NullDecimal
}

// FindDebtDrift compares each customer's recorded debt with the sum of the
// remaining balances of its outstanding CREDIT sales
func (r *GormCustomerRepository) FindDebtDrift(ctx context.Context, tenantID uuid.UUID) ([]partner.DebtDrift, error) {
	query := fmt.Sprintf(`
		SELECT c.id AS customer_id, c.current_debt AS current_debt, s.outstanding AS computed
		FROM customers c
		LEFT JOIN (
			SELECT customer_id, SUM(remaining_balance) AS outstanding
			FROM sales
			WHERE tenant_id = ? AND payment_method = '%s' AND payment_status IN ('%s', '%s')
			GROUP BY customer_id
		) s ON s.customer_id = c.id
		WHERE c.tenant_id = ?
		ORDER BY c.id`,
		trade.PaymentMethodCredit, trade.PaymentStatusPending, trade.PaymentStatusPartial)

	var rows []debtRow
	if err := ConnFromContext(ctx, r.db).Raw(query, tenantID, tenantID).Scan(&rows).Error; err != nil {
		return nil, err
	}

	drifts := make([]partner.DebtDrift, 0)
	for _, row := range rows {
		computed := decimal.Zero
		if row.Computed.Valid {
			computed = row.Computed.Decimal
		}
		if row.CurrentDebt.Equal(computed) {
			continue
		}
		drifts = append(drifts, partner.DebtDrift{
			CustomerID: row.CustomerID,
			Recorded:   row.CurrentDebt,
			Computed:   computed,
		})
	}
	return drifts, nil
}

// CorrectDebt overwrites current_debt only if it still holds expected
func (r *GormCustomerRepository) CorrectDebt(ctx context.Context, tenantID, customerID uuid.UUID, expected, corrected decimal.Decimal) (bool, error) {
	result := ConnFromContext(ctx, r.db).Model(&models.CustomerModel{}).
		Where("tenant_id = ? AND id = ? AND current_debt = ?", tenantID, customerID, expected).
		Updates(map[string]any{
			"current_debt": corrected,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListTenantIDs returns the distinct tenants owning customers
func (r *GormCustomerRepository) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := ConnFromContext(ctx, r.db).Model(&models.CustomerModel{}).
		Distinct().
		Order("tenant_id").
		Pluck("tenant_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
