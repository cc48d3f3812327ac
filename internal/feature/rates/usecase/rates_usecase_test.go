package usecase_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"broker_backend/internal/feature/rates/domain"
	"broker_backend/internal/feature/rates/domain/entity"
	"broker_backend/internal/feature/rates/usecase"
)

// mockRateRepository はRateRepositoryインターフェースのモック実装です。
type mockRateRepository struct {
	ListAllFunc             func(ctx context.Context) ([]entity.ExchangeRate, error)
	FindByCurrencyFunc      func(ctx context.Context, currency string) (*entity.ExchangeRate, error)
	InsertBatchFunc         func(ctx context.Context, rates []entity.ExchangeRate) error
	UpdateWithRepricingFunc func(ctx context.Context, rate entity.ExchangeRate, ratio decimal.Decimal) error
}

func (m *mockRateRepository) ListAll(ctx context.Context) ([]entity.ExchangeRate, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockRateRepository) FindByCurrency(ctx context.Context, currency string) (*entity.ExchangeRate, error) {
	if m.FindByCurrencyFunc != nil {
		return m.FindByCurrencyFunc(ctx, currency)
	}
	return nil, domain.ErrUnknownCurrency
}

func (m *mockRateRepository) InsertBatch(ctx context.Context, rates []entity.ExchangeRate) error {
	if m.InsertBatchFunc != nil {
		return m.InsertBatchFunc(ctx, rates)
	}
	return nil
}

func (m *mockRateRepository) UpdateWithRepricing(ctx context.Context, rate entity.ExchangeRate, ratio decimal.Decimal) error {
	if m.UpdateWithRepricingFunc != nil {
		return m.UpdateWithRepricingFunc(ctx, rate, ratio)
	}
	return nil
}

// mockRateFeed はRateFeedインターフェースのモック実装です。
type mockRateFeed struct {
	FetchLatestFunc func(ctx context.Context) (*entity.RateSnapshot, error)
}

func (m *mockRateFeed) FetchLatest(ctx context.Context) (*entity.RateSnapshot, error) {
	if m.FetchLatestFunc != nil {
		return m.FetchLatestFunc(ctx)
	}
	return nil, domain.ErrFeedUnavailable
}

func snapshot(base, date string, rates map[string]float64) *entity.RateSnapshot {
	out := make(map[string]decimal.Decimal, len(rates))
	for currency, rate := range rates {
		out[currency] = decimal.NewFromFloat(rate)
	}
	return &entity.RateSnapshot{Base: base, Date: date, Rates: out}
}

func TestRatesUsecase_SyncRates(t *testing.T) {
	t.Parallel()

	t.Run("feed failure mutates nothing", func(t *testing.T) {
		t.Parallel()

		inserted, updated := 0, 0
		repo := &mockRateRepository{
			InsertBatchFunc: func(ctx context.Context, rates []entity.ExchangeRate) error {
				inserted++
				return nil
			},
			UpdateWithRepricingFunc: func(ctx context.Context, rate entity.ExchangeRate, ratio decimal.Decimal) error {
				updated++
				return nil
			},
		}
		feed := &mockRateFeed{
			FetchLatestFunc: func(ctx context.Context) (*entity.RateSnapshot, error) {
				return nil, domain.ErrFeedUnavailable
			},
		}
		uc := usecase.NewRatesUsecase(repo, feed, nil)

		err := uc.SyncRates(context.Background())

		assert.ErrorIs(t, err, domain.ErrFeedUnavailable, "feed failure must surface")
		assert.Zero(t, inserted, "no insert may happen on feed failure")
		assert.Zero(t, updated, "no update may happen on feed failure")
	})

	t.Run("empty store: the full feed becomes the initial snapshot", func(t *testing.T) {
		t.Parallel()

		var inserted []entity.ExchangeRate
		repricings := 0
		repo := &mockRateRepository{
			ListAllFunc: func(ctx context.Context) ([]entity.ExchangeRate, error) {
				return nil, nil
			},
			InsertBatchFunc: func(ctx context.Context, rates []entity.ExchangeRate) error {
				inserted = rates
				return nil
			},
			UpdateWithRepricingFunc: func(ctx context.Context, rate entity.ExchangeRate, ratio decimal.Decimal) error {
				repricings++
				return nil
			},
		}
		feed := &mockRateFeed{
			FetchLatestFunc: func(ctx context.Context) (*entity.RateSnapshot, error) {
				return snapshot("EUR", "2024-05-01", map[string]float64{"USD": 1.1, "JPY": 160.5}), nil
			},
		}
		uc := usecase.NewRatesUsecase(repo, feed, nil)

		err := uc.SyncRates(context.Background())

		require.NoError(t, err)
		require.Len(t, inserted, 2, "full feed should be inserted")
		sort.Slice(inserted, func(i, j int) bool { return inserted[i].Currency < inserted[j].Currency })
		assert.Equal(t, "JPY", inserted[0].Currency)
		assert.Equal(t, "EUR", inserted[0].Base)
		assert.Equal(t, "2024-05-01", inserted[0].Date)
		assert.Equal(t, "USD", inserted[1].Currency)
		assert.Zero(t, repricings, "the initial snapshot triggers no repricing")
	})

	t.Run("changed currency is updated with the new/old ratio", func(t *testing.T) {
		t.Parallel()

		var gotRate entity.ExchangeRate
		var gotRatio decimal.Decimal
		calls := 0
		repo := &mockRateRepository{
			ListAllFunc: func(ctx context.Context) ([]entity.ExchangeRate, error) {
				return []entity.ExchangeRate{
					{ID: 1, Currency: "USD", Rate: decimal.NewFromFloat(1.0), Base: "EUR", Date: "2024-05-01"},
					{ID: 2, Currency: "JPY", Rate: decimal.NewFromFloat(160.5), Base: "EUR", Date: "2024-05-01"},
				}, nil
			},
			UpdateWithRepricingFunc: func(ctx context.Context, rate entity.ExchangeRate, ratio decimal.Decimal) error {
				calls++
				gotRate = rate
				gotRatio = ratio
				return nil
			},
		}
		feed := &mockRateFeed{
			FetchLatestFunc: func(ctx context.Context) (*entity.RateSnapshot, error) {
				// USD changed, JPY unchanged
				return snapshot("EUR", "2024-05-02", map[string]float64{"USD": 1.1, "JPY": 160.5}), nil
			},
		}
		uc := usecase.NewRatesUsecase(repo, feed, nil)

		err := uc.SyncRates(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, calls, "only the changed currency gets updated")
		assert.Equal(t, "USD", gotRate.Currency)
		assert.True(t, gotRate.Rate.Equal(decimal.NewFromFloat(1.1)))
		assert.Equal(t, "2024-05-02", gotRate.Date)
		assert.True(t, gotRatio.Equal(decimal.NewFromFloat(1.1)), "ratio should be new/old")
	})

	t.Run("idempotent: an unchanged feed performs no writes", func(t *testing.T) {
		t.Parallel()

		writes := 0
		repo := &mockRateRepository{
			ListAllFunc: func(ctx context.Context) ([]entity.ExchangeRate, error) {
				return []entity.ExchangeRate{
					{ID: 1, Currency: "USD", Rate: decimal.NewFromFloat(1.1), Base: "EUR", Date: "2024-05-02"},
				}, nil
			},
			InsertBatchFunc: func(ctx context.Context, rates []entity.ExchangeRate) error {
				writes++
				return nil
			},
			UpdateWithRepricingFunc: func(ctx context.Context, rate entity.ExchangeRate, ratio decimal.Decimal) error {
				writes++
				return nil
			},
		}
		feed := &mockRateFeed{
			FetchLatestFunc: func(ctx context.Context) (*entity.RateSnapshot, error) {
				return snapshot("EUR", "2024-05-02", map[string]float64{"USD": 1.1}), nil
			},
		}
		uc := usecase.NewRatesUsecase(repo, feed, nil)

		err := uc.SyncRates(context.Background())

		require.NoError(t, err)
		assert.Zero(t, writes, "an unchanged feed must be a no-op")
	})

	t.Run("currencies absent from the feed are left untouched", func(t *testing.T) {
		t.Parallel()

		calls := 0
		repo := &mockRateRepository{
			ListAllFunc: func(ctx context.Context) ([]entity.ExchangeRate, error) {
				return []entity.ExchangeRate{
					{ID: 1, Currency: "GBP", Rate: decimal.NewFromFloat(0.85), Base: "EUR", Date: "2024-05-01"},
				}, nil
			},
			UpdateWithRepricingFunc: func(ctx context.Context, rate entity.ExchangeRate, ratio decimal.Decimal) error {
				calls++
				return nil
			},
		}
		feed := &mockRateFeed{
			FetchLatestFunc: func(ctx context.Context) (*entity.RateSnapshot, error) {
				return snapshot("EUR", "2024-05-02", map[string]float64{"USD": 1.1}), nil
			},
		}
		uc := usecase.NewRatesUsecase(repo, feed, nil)

		err := uc.SyncRates(context.Background())

		require.NoError(t, err)
		assert.Zero(t, calls, "currencies not in the feed may not be updated")
	})

	t.Run("one failing currency does not block the others", func(t *testing.T) {
		t.Parallel()

		var updated []string
		repo := &mockRateRepository{
			ListAllFunc: func(ctx context.Context) ([]entity.ExchangeRate, error) {
				return []entity.ExchangeRate{
					{ID: 1, Currency: "JPY", Rate: decimal.NewFromFloat(160.5), Base: "EUR", Date: "2024-05-01"},
					{ID: 2, Currency: "USD", Rate: decimal.NewFromFloat(1.0), Base: "EUR", Date: "2024-05-01"},
				}, nil
			},
			UpdateWithRepricingFunc: func(ctx context.Context, rate entity.ExchangeRate, ratio decimal.Decimal) error {
				if rate.Currency == "JPY" {
					return errors.New("deadlock")
				}
				updated = append(updated, rate.Currency)
				return nil
			},
		}
		feed := &mockRateFeed{
			FetchLatestFunc: func(ctx context.Context) (*entity.RateSnapshot, error) {
				return snapshot("EUR", "2024-05-02", map[string]float64{"USD": 1.1, "JPY": 161.0}), nil
			},
		}
		uc := usecase.NewRatesUsecase(repo, feed, nil)

		err := uc.SyncRates(context.Background())

		require.NoError(t, err, "per-currency failures are logged, not surfaced")
		assert.Equal(t, []string{"USD"}, updated, "the healthy currency must still be updated")
	})
}

func TestRatesUsecase_Convert(t *testing.T) {
	t.Parallel()

	rates := map[string]entity.ExchangeRate{
		"AAA": {Currency: "AAA", Rate: decimal.NewFromFloat(2.0)},
		"BBB": {Currency: "BBB", Rate: decimal.NewFromFloat(1.0)},
		"JPY": {Currency: "JPY", Rate: decimal.NewFromFloat(160.5)},
	}
	repo := &mockRateRepository{
		FindByCurrencyFunc: func(ctx context.Context, currency string) (*entity.ExchangeRate, error) {
			if r, ok := rates[currency]; ok {
				return &r, nil
			}
			return nil, domain.ErrUnknownCurrency
		},
	}
	uc := usecase.NewRatesUsecase(repo, &mockRateFeed{}, nil)

	tests := []struct {
		name     string
		amount   float64
		from     string
		to       string
		expected float64
		wantErr  error
	}{
		{
			name:   "halves the amount when the source rate is twice the target",
			amount: 100.00, from: "AAA", to: "BBB", expected: 50.00,
		},
		{
			name:   "doubles the amount in the opposite direction",
			amount: 100.00, from: "BBB", to: "AAA", expected: 200.00,
		},
		{
			name:   "rounds the result to two decimals",
			amount: 100.00, from: "JPY", to: "BBB", expected: 0.62,
		},
		{
			name:   "identity conversion returns the amount",
			amount: 42.42, from: "BBB", to: "BBB", expected: 42.42,
		},
		{
			name:   "zero amount converts to zero",
			amount: 0, from: "AAA", to: "BBB", expected: 0,
		},
		{
			name:   "unknown target currency",
			amount: 100.00, from: "AAA", to: "XXX", wantErr: domain.ErrUnknownCurrency,
		},
		{
			name:   "unknown source currency",
			amount: 100.00, from: "XXX", to: "BBB", wantErr: domain.ErrUnknownCurrency,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := uc.Convert(context.Background(), tt.amount, tt.from, tt.to)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

// mockCacheInvalidator はCompanyCacheInvalidatorインターフェースのモック実装です。
type mockCacheInvalidator struct {
	calls int
	err   error
}

func (m *mockCacheInvalidator) InvalidateAll(ctx context.Context) error {
	m.calls++
	return m.err
}

// TestRatesUsecase_SyncRatesCacheInvalidation は再計算後の会社キャッシュ無効化を検証します。
// キャッシュは別プロセス（サーバー）が読む共有Redisにあるため、価格を書き換えた
// 同期側が無効化しないと古い価格が提供され続けます。
func TestRatesUsecase_SyncRatesCacheInvalidation(t *testing.T) {
	t.Parallel()

	storedUSD := func(ctx context.Context) ([]entity.ExchangeRate, error) {
		return []entity.ExchangeRate{
			{ID: 1, Currency: "USD", Rate: decimal.NewFromFloat(1.0), Base: "EUR", Date: "2024-05-01"},
		}, nil
	}

	t.Run("repricing invalidates the shared company cache", func(t *testing.T) {
		t.Parallel()

		repo := &mockRateRepository{
			ListAllFunc: storedUSD,
			UpdateWithRepricingFunc: func(ctx context.Context, rate entity.ExchangeRate, ratio decimal.Decimal) error {
				return nil
			},
		}
		feed := &mockRateFeed{
			FetchLatestFunc: func(ctx context.Context) (*entity.RateSnapshot, error) {
				return snapshot("EUR", "2024-05-02", map[string]float64{"USD": 1.1}), nil
			},
		}
		inv := &mockCacheInvalidator{}
		uc := usecase.NewRatesUsecase(repo, feed, inv)

		require.NoError(t, uc.SyncRates(context.Background()))

		assert.Equal(t, 1, inv.calls, "cache must be invalidated after repricing")
	})

	t.Run("unchanged feed does not touch the cache", func(t *testing.T) {
		t.Parallel()

		repo := &mockRateRepository{ListAllFunc: storedUSD}
		feed := &mockRateFeed{
			FetchLatestFunc: func(ctx context.Context) (*entity.RateSnapshot, error) {
				return snapshot("EUR", "2024-05-02", map[string]float64{"USD": 1.0}), nil
			},
		}
		inv := &mockCacheInvalidator{}
		uc := usecase.NewRatesUsecase(repo, feed, inv)

		require.NoError(t, uc.SyncRates(context.Background()))

		assert.Zero(t, inv.calls, "an idempotent sync must not invalidate the cache")
	})

	t.Run("invalidation failure does not fail the sync", func(t *testing.T) {
		t.Parallel()

		repo := &mockRateRepository{
			ListAllFunc: storedUSD,
			UpdateWithRepricingFunc: func(ctx context.Context, rate entity.ExchangeRate, ratio decimal.Decimal) error {
				return nil
			},
		}
		feed := &mockRateFeed{
			FetchLatestFunc: func(ctx context.Context) (*entity.RateSnapshot, error) {
				return snapshot("EUR", "2024-05-02", map[string]float64{"USD": 1.1}), nil
			},
		}
		inv := &mockCacheInvalidator{err: errors.New("redis down")}
		uc := usecase.NewRatesUsecase(repo, feed, inv)

		err := uc.SyncRates(context.Background())

		assert.NoError(t, err, "the rate update already committed; cache failure is best effort")
		assert.Equal(t, 1, inv.calls)
	})
}
