// Package usecase はratesフィーチャーのビジネスロジックを実装します。
// 為替レートの更新、レート変更に伴う株価の再計算、通貨換算を担います。
package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"broker_backend/internal/feature/rates/domain"
	"broker_backend/internal/feature/rates/domain/entity"
)

// moneyScale は金額の小数点以下桁数です。
const moneyScale = 2

// RateRepository は為替レートの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type RateRepository interface {
	// ListAll は保存されている全レートを返します。
	ListAll(ctx context.Context) ([]entity.ExchangeRate, error)

	// FindByCurrency は通貨コードでレートを取得します。
	// レートが存在しない場合、domain.ErrUnknownCurrencyを返します。
	FindByCurrency(ctx context.Context, currency string) (*entity.ExchangeRate, error)

	// InsertBatch はレート一式をまとめて保存します。通貨コードをキーとした
	// upsertであり、同じ通貨の行が重複することはありません。
	InsertBatch(ctx context.Context, rates []entity.ExchangeRate) error

	// UpdateWithRepricing はレート行の更新と、その通貨で値付けされた全会社の
	// 価格再計算を1つのトランザクションで行います。新価格は
	// round(旧価格 * ratio, 2) です。
	UpdateWithRepricing(ctx context.Context, rate entity.ExchangeRate, ratio decimal.Decimal) error
}

// RateFeed は外部レートフィードを抽象化します。
type RateFeed interface {
	// FetchLatest は最新のレート一式を取得します。
	// フィードに到達できない場合、domain.ErrFeedUnavailableを返します。
	FetchLatest(ctx context.Context) (*entity.RateSnapshot, error)
}

// CompanyCacheInvalidator は再計算で変化した会社価格のキャッシュを無効化します。
// キャッシュが構成されていない場合はnilを渡してよいです。
type CompanyCacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// RatesUsecase はレートストア・通貨換算・再計算エンジンのユースケースを実装します。
type RatesUsecase struct {
	rates RateRepository
	feed  RateFeed
	cache CompanyCacheInvalidator
}

// NewRatesUsecase はRatesUsecaseの新しいインスタンスを生成します。
// cacheはキャッシュ未構成の場合nilでよいです。
func NewRatesUsecase(rates RateRepository, feed RateFeed, cache CompanyCacheInvalidator) *RatesUsecase {
	return &RatesUsecase{rates: rates, feed: feed, cache: cache}
}

// SyncRates はフィードから最新レートを取得し、ストアへ反映します。
//
//   - フィード取得に失敗した場合は何も変更せずエラーを返す
//   - ストアが空の場合はフィード全体を初期スナップショットとして一括挿入する（再計算なし）
//   - それ以外は変化した通貨だけを更新し、通貨ごとにレート更新と再計算を
//     同一トランザクションで行う。1通貨の失敗は記録して次の通貨へ進む
//
// 同じフィードを2回適用しても2回目は何も書き込まない（冪等）。
func (u *RatesUsecase) SyncRates(ctx context.Context) error {
	snapshot, err := u.feed.FetchLatest(ctx)
	if err != nil {
		return fmt.Errorf("fetch latest rates: %w", err)
	}

	stored, err := u.rates.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list stored rates: %w", err)
	}

	// 初回: フィード全体をスナップショットとして取り込む
	if len(stored) == 0 {
		batch := make([]entity.ExchangeRate, 0, len(snapshot.Rates))
		for currency, rate := range snapshot.Rates {
			batch = append(batch, entity.ExchangeRate{
				Currency: currency,
				Rate:     rate,
				Base:     snapshot.Base,
				Date:     snapshot.Date,
			})
		}
		if err := u.rates.InsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("insert initial snapshot: %w", err)
		}
		slog.Info("initial rate snapshot stored", "currencies", len(batch), "base", snapshot.Base)
		return nil
	}

	changed := 0
	for _, r := range stored {
		feedRate, ok := snapshot.Rates[r.Currency]
		// フィードに存在しない、または変化のない通貨には触れない
		if !ok || feedRate.Equal(r.Rate) {
			continue
		}
		if r.Rate.IsZero() {
			slog.Error("stored rate is zero, skipping repricing", "currency", r.Currency)
			continue
		}

		ratio := feedRate.Div(r.Rate)
		r.Rate = feedRate
		r.Base = snapshot.Base
		r.Date = snapshot.Date

		// 1通貨の失敗で他の通貨の更新を止めない
		if err := u.rates.UpdateWithRepricing(ctx, r, ratio); err != nil {
			slog.Error("failed to update rate", "currency", r.Currency, "error", err)
			continue
		}
		changed++
	}

	if changed > 0 {
		slog.Info("exchange rates updated", "changed", changed)
		u.invalidate(ctx)
	}
	return nil
}

// Convert はamountをfrom通貨からto通貨へ換算し、小数第2位へ丸めた値を返します。
// どちらかの通貨のレートが保存されていない場合、domain.ErrUnknownCurrencyを返します。
// 状態を持たず、並行呼び出しに対して安全です。
func (u *RatesUsecase) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	toRate, err := u.rates.FindByCurrency(ctx, to)
	if err != nil {
		return 0, err
	}
	fromRate, err := u.rates.FindByCurrency(ctx, from)
	if err != nil {
		return 0, err
	}
	if fromRate.Rate.IsZero() {
		return 0, fmt.Errorf("%w: %s has a zero rate", domain.ErrUnknownCurrency, from)
	}

	converted := decimal.NewFromFloat(amount).
		Mul(toRate.Rate).
		Div(fromRate.Rate).
		Round(moneyScale)
	return converted.InexactFloat64(), nil
}

// invalidate は会社キャッシュをベストエフォートで無効化します。
func (u *RatesUsecase) invalidate(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.InvalidateAll(ctx); err != nil {
		slog.Warn("failed to invalidate company cache after repricing", "error", err)
	}
}
