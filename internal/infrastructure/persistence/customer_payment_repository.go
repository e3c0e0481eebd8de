package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/finance"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/posledger/backend/internal/infrastructure/persistence/models"
	"github.com/posledger/backend/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCustomerPaymentRepository implements finance.CustomerPaymentRepository using GORM
type GormCustomerPaymentRepository struct {
	db *gorm.DB
}

// NewGormCustomerPaymentRepository creates a new GormCustomerPaymentRepository
func NewGormCustomerPaymentRepository(db *gorm.DB) *GormCustomerPaymentRepository {
	return &GormCustomerPaymentRepository{db: db}
}

// Create appends payment rows in a single insert
func (r *GormCustomerPaymentRepository) Create(ctx context.Context, payments ...*finance.CustomerPayment) error {
	if len(payments) == 0 {
		return nil
	}
	rows := make([]*models.CustomerPaymentModel, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, models.CustomerPaymentModelFromDomain(p))
	}
	return ConnFromContext(ctx, r.db).Create(&rows).Error
}

// FindRecentByCustomer returns up to limit payments, newest first
func (r *GormCustomerPaymentRepository) FindRecentByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, limit int) ([]finance.CustomerPayment, error) {
	var rows []models.CustomerPaymentModel
	query := ConnFromContext(ctx, r.db).
		Scopes(tenant.TenantScope(tenantID)).
		Where("customer_id = ?", customerID).
		Order("payment_date DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(rows), nil
}

type allocationRow struct {
	SaleID           uuid.UUID
	Total            decimal.Decimal
	AmountPaid       decimal.Decimal
	RemainingBalance decimal.Decimal
	Allocated        decimal.NullDecimal
}

// FindAllocationMismatches sums the payments of every CREDIT sale of the
// tenant and keeps the sales whose amount_paid or balance disagree
func (r *GormCustomerPaymentRepository) FindAllocationMismatches(ctx context.Context, tenantID uuid.UUID) ([]finance.SaleAllocation, error) {
	query := fmt.Sprintf(`
		SELECT s.id AS sale_id, s.total AS total, s.amount_paid AS amount_paid,
			s.remaining_balance AS remaining_balance, p.allocated AS allocated
		FROM sales s
		LEFT JOIN (
			SELECT sale_id, SUM(amount) AS allocated
			FROM customer_payments
			WHERE tenant_id = ? AND sale_id IS NOT NULL
			GROUP BY sale_id
		) p ON p.sale_id = s.id
		WHERE s.tenant_id = ? AND s.payment_method = '%s'
		ORDER BY s.id`, trade.PaymentMethodCredit)

	var rows []allocationRow
	if err := ConnFromContext(ctx, r.db).Raw(query, tenantID, tenantID).Scan(&rows).Error; err != nil {
		return nil, err
	}

	mismatches := make([]finance.SaleAllocation, 0)
	for _, row := range rows {
		allocation := finance.SaleAllocation{
			SaleID:           row.SaleID,
			Total:            row.Total,
			AmountPaid:       row.AmountPaid,
			RemainingBalance: row.RemainingBalance,
			Allocated:        decimal.Zero,
		}
		if row.Allocated.Valid {
			allocation.Allocated = row.Allocated.Decimal
		}
		if !allocation.Consistent() {
			mismatches = append(mismatches, allocation)
		}
	}
	return mismatches, nil
}

func paymentsToDomain(rows []models.CustomerPaymentModel) []finance.CustomerPayment {
	out := make([]finance.CustomerPayment, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out
}
