package inventory

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a sellable item whose on-hand stock is tracked by the stock ledger
type Product struct {
	shared.TenantAggregateRoot
	Code      string
	Name      string
	Stock     int
	MinStock  int
	UnitPrice decimal.Decimal
	IsActive  bool
}

// NewProduct creates an active product with an opening stock
func NewProduct(tenantID uuid.UUID, code, name string, unitPrice decimal.Decimal, stock, minStock int) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("code", "product code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("name", "product name cannot be empty")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("unit_price", "unit price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewValidationError("stock", "stock cannot be negative")
	}
	if minStock < 0 {
		return nil, shared.NewValidationError("min_stock", "minimum stock cannot be negative")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Stock:               stock,
		MinStock:            minStock,
		UnitPrice:           unitPrice,
		IsActive:            true,
	}, nil
}

// IsLowStock reports whether stock has fallen to the reorder threshold
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// CanFulfil reports whether qty units can be taken from stock
func (p *Product) CanFulfil(qty int) bool {
	return qty > 0 && p.Stock >= qty
}

// DecrementStock applies a decrement to the in-memory copy. Persisted stock is
// only ever changed through ProductRepository.DecrementStock.
func (p *Product) DecrementStock(qty int) error {
	if err := ValidateQuantity(qty); err != nil {
		return err
	}
	if !p.CanFulfil(qty) {
		return &shared.InsufficientStockError{ProductID: p.ID, Available: p.Stock, Requested: qty}
	}
	p.Stock -= qty
	p.IncrementVersion()
	p.Touch()
	return nil
}

// Deactivate hides the product from new sales
func (p *Product) Deactivate() {
	p.IsActive = false
	p.IncrementVersion()
	p.Touch()
}

// MaxQuantity is the largest quantity a stock movement or sale line may carry;
// quantity columns are 32-bit integers
const MaxQuantity = math.MaxInt32

// ValidateQuantity rejects non-positive quantities and quantities above MaxQuantity
func ValidateQuantity(qty int) error {
	if qty <= 0 {
		return shared.NewValidationError("quantity", "quantity must be greater than zero")
	}
	if qty > MaxQuantity {
		return shared.NewValidationError("quantity", "quantity cannot exceed 2147483647")
	}
	return nil
}
