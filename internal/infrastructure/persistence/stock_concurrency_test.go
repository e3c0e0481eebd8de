package persistence

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupFileTestDB uses a file database so concurrent transactions run on
// separate connections and serialise on SQLite's write lock.
func setupFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", filepath.Join(t.TempDir(), "ledger.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestDecrementStock_ConcurrentSalesNeverOversell(t *testing.T) {
	db := setupFileTestDB(t)
	tm := NewGormTransactionManager(db)
	repo := NewGormProductRepository(db)
	tenantID := uuid.New()
	p := seedProduct(t, db, tenantID, "race", 5, 0)

	const buyers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
		other     []error
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
				return repo.DecrementStock(ctx, tenantID, p.ID, 1)
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, shared.ErrInsufficientStock):
				rejected++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, buyers-5, rejected)

	found, err := repo.FindByIDForTenant(context.Background(), tenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.Stock)
}
