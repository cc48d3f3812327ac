package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	companyentity "broker_backend/internal/feature/company/domain/entity"
	"broker_backend/internal/feature/rates/domain"
	"broker_backend/internal/feature/rates/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&entity.ExchangeRate{}, &companyentity.Company{})
	require.NoError(t, err, "failed to migrate tables")

	return db
}

func TestNewRateMySQL(t *testing.T) {
	db := setupTestDB(t)

	repo := NewRateMySQL(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestRateMySQL_InsertBatch(t *testing.T) {
	t.Run("inserts an initial snapshot", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRateMySQL(db)

		err := repo.InsertBatch(context.Background(), []entity.ExchangeRate{
			{Currency: "USD", Rate: decimal.NewFromFloat(1.1), Base: "EUR", Date: "2024-05-01"},
			{Currency: "JPY", Rate: decimal.NewFromFloat(160.5), Base: "EUR", Date: "2024-05-01"},
		})
		require.NoError(t, err, "failed to insert snapshot")

		rates, err := repo.ListAll(context.Background())
		require.NoError(t, err)
		require.Len(t, rates, 2)
		assert.Equal(t, "JPY", rates[0].Currency, "rates should be ordered by currency")
		assert.Equal(t, "USD", rates[1].Currency)
	})

	t.Run("upserts on duplicate currency instead of duplicating rows", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRateMySQL(db)
		ctx := context.Background()

		require.NoError(t, repo.InsertBatch(ctx, []entity.ExchangeRate{
			{Currency: "USD", Rate: decimal.NewFromFloat(1.1), Base: "EUR", Date: "2024-05-01"},
		}))
		require.NoError(t, repo.InsertBatch(ctx, []entity.ExchangeRate{
			{Currency: "USD", Rate: decimal.NewFromFloat(1.2), Base: "EUR", Date: "2024-05-02"},
		}))

		var count int64
		require.NoError(t, db.Model(&entity.ExchangeRate{}).Count(&count).Error)
		assert.Equal(t, int64(1), count, "duplicate currency rows exist")

		rate, err := repo.FindByCurrency(ctx, "USD")
		require.NoError(t, err)
		assert.True(t, rate.Rate.Equal(decimal.NewFromFloat(1.2)), "rate was not updated")
		assert.Equal(t, "2024-05-02", rate.Date, "date was not updated")
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRateMySQL(db)

		err := repo.InsertBatch(context.Background(), nil)

		assert.NoError(t, err, "empty batch should not error")
	})
}

func TestRateMySQL_FindByCurrency(t *testing.T) {
	t.Run("finds a stored rate", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRateMySQL(db)
		require.NoError(t, repo.InsertBatch(context.Background(), []entity.ExchangeRate{
			{Currency: "GBP", Rate: decimal.NewFromFloat(0.85), Base: "EUR", Date: "2024-05-01"},
		}))

		rate, err := repo.FindByCurrency(context.Background(), "GBP")

		require.NoError(t, err, "failed to find rate")
		assert.Equal(t, "GBP", rate.Currency)
		assert.True(t, rate.Rate.Equal(decimal.NewFromFloat(0.85)))
	})

	t.Run("unknown currency fails with ErrUnknownCurrency", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRateMySQL(db)

		rate, err := repo.FindByCurrency(context.Background(), "XXX")

		assert.Nil(t, rate, "rate should be nil")
		assert.ErrorIs(t, err, domain.ErrUnknownCurrency, "should return ErrUnknownCurrency")
	})
}

func TestRateMySQL_UpdateWithRepricing(t *testing.T) {
	t.Run("reprices every company quoted in the currency", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRateMySQL(db)
		ctx := context.Background()

		require.NoError(t, repo.InsertBatch(ctx, []entity.ExchangeRate{
			{Currency: "USD", Rate: decimal.NewFromFloat(1.0), Base: "EUR", Date: "2024-05-01"},
		}))
		acme := companyentity.Company{Name: "Acme Corp", Symbol: "ACME", Currency: "USD", Price: 100.00, AvailableShares: 10}
		globex := companyentity.Company{Name: "Globex", Symbol: "GLBX", Currency: "USD", Price: 33.33, AvailableShares: 10}
		hooli := companyentity.Company{Name: "Hooli", Symbol: "HOOL", Currency: "JPY", Price: 5000.00, AvailableShares: 10}
		require.NoError(t, db.Create(&acme).Error)
		require.NoError(t, db.Create(&globex).Error)
		require.NoError(t, db.Create(&hooli).Error)

		stored, err := repo.FindByCurrency(ctx, "USD")
		require.NoError(t, err)
		stored.Rate = decimal.NewFromFloat(1.1)
		stored.Date = "2024-05-02"

		// Ensure updated_at can advance past the creation timestamp.
		time.Sleep(10 * time.Millisecond)

		err = repo.UpdateWithRepricing(ctx, *stored, decimal.NewFromFloat(1.1))
		require.NoError(t, err, "repricing failed")

		var got companyentity.Company
		require.NoError(t, db.First(&got, acme.ID).Error)
		assert.InDelta(t, 110.00, got.Price, 1e-9, "price should follow the rate ratio")
		assert.True(t, got.UpdatedAt.After(acme.UpdatedAt), "updated_at must advance on repricing")

		require.NoError(t, db.First(&got, globex.ID).Error)
		assert.InDelta(t, 36.66, got.Price, 1e-9, "price should be rounded to two decimals")

		// Companies quoted in other currencies stay untouched.
		require.NoError(t, db.First(&got, hooli.ID).Error)
		assert.InDelta(t, 5000.00, got.Price, 1e-9, "other currencies must not be repriced")

		rate, err := repo.FindByCurrency(ctx, "USD")
		require.NoError(t, err)
		assert.True(t, rate.Rate.Equal(decimal.NewFromFloat(1.1)), "rate was not updated")
		assert.Equal(t, "2024-05-02", rate.Date)
	})

	t.Run("updating a missing rate row fails", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRateMySQL(db)

		err := repo.UpdateWithRepricing(context.Background(), entity.ExchangeRate{
			ID: 999, Currency: "USD", Rate: decimal.NewFromFloat(1.1),
		}, decimal.NewFromFloat(1.1))

		assert.ErrorIs(t, err, domain.ErrUnknownCurrency)
	})

	t.Run("does not touch share inventory", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRateMySQL(db)
		ctx := context.Background()

		require.NoError(t, repo.InsertBatch(ctx, []entity.ExchangeRate{
			{Currency: "USD", Rate: decimal.NewFromFloat(2.0), Base: "EUR", Date: "2024-05-01"},
		}))
		c := companyentity.Company{Name: "Acme Corp", Symbol: "ACME", Currency: "USD", Price: 10.00, AvailableShares: 77}
		require.NoError(t, db.Create(&c).Error)

		stored, err := repo.FindByCurrency(ctx, "USD")
		require.NoError(t, err)
		stored.Rate = decimal.NewFromFloat(3.0)
		require.NoError(t, repo.UpdateWithRepricing(ctx, *stored, decimal.NewFromFloat(1.5)))

		var got companyentity.Company
		require.NoError(t, db.First(&got, c.ID).Error)
		assert.Equal(t, int64(77), got.AvailableShares, "repricing must not touch inventory")
		assert.InDelta(t, 15.00, got.Price, 1e-9)
	})
}
