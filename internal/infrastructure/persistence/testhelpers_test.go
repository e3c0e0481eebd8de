package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/posledger/backend/internal/domain/partner"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/posledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every ledger table.
// A single connection keeps every statement on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// newMockGormDB backs a postgres dialector with sqlmock to assert SQL shapes
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func seedProduct(t *testing.T, db *gorm.DB, tenantID uuid.UUID, code string, stock, minStock int) *inventory.Product {
	t.Helper()
	p, err := inventory.NewProduct(tenantID, code, "Product "+code, dec("10"), stock, minStock)
	require.NoError(t, err)
	require.NoError(t, db.Create(models.ProductModelFromDomain(p)).Error)
	return p
}

func seedCustomer(t *testing.T, db *gorm.DB, tenantID uuid.UUID, limit, debt string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(tenantID, "Customer", dec(limit))
	require.NoError(t, err)
	c.CurrentDebt = dec(debt)
	require.NoError(t, db.Create(models.CustomerModelFromDomain(c)).Error)
	return c
}

// seedCreditSale inserts an outstanding CREDIT sale created at the given time
func seedCreditSale(t *testing.T, db *gorm.DB, tenantID, customerID uuid.UUID, remaining string, createdAt time.Time) *trade.Sale {
	t.Helper()
	product := seedProduct(t, db, tenantID, "S-"+uuid.NewString()[:8], 100, 0)
	total := dec(remaining)
	sale, err := trade.NewSale(trade.NewSaleParams{
		TenantID:      tenantID,
		UserID:        uuid.New(),
		CustomerID:    &customerID,
		Folio:         "T-" + uuid.NewString()[:8],
		PaymentMethod: trade.PaymentMethodCredit,
		Lines:         []trade.SaleLine{{ProductID: product.ID, Quantity: 1, UnitPrice: total}},
		TaxRate:       decimal.Zero,
		CreditDays:    30,
		Now:           createdAt,
	})
	require.NoError(t, err)
	require.NoError(t, db.Create(models.SaleModelFromDomain(sale)).Error)
	return sale
}
