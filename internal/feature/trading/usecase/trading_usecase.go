// Package usecase はtradingフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"log/slog"

	"broker_backend/internal/feature/trading/domain/entity"
)

const (
	// maxTradeAttempts は競合時の取引リトライ回数の上限です。
	maxTradeAttempts = 3
)

// TradeRepository は取引の永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
//
// BuyとSellはそれぞれ1つのトランザクションとして実行されなければなりません。
// 会社の在庫とポジションの更新が部分的に観測されることは許されません。
type TradeRepository interface {
	// Buy は会社の在庫をquantityだけ減らし、ユーザーのポジションに同量を加算します。
	// 会社が存在しない場合はErrCompanyNotFound、在庫が不足する場合は
	// ErrInsufficientShares、競合に敗れた場合はErrTradeConflictを返します。
	Buy(ctx context.Context, userID, companyID uint, quantity int64) error

	// Sell はユーザーのポジションをquantityだけ減らし、会社の在庫に同量を戻します。
	// 会社が存在しない場合はErrCompanyNotFound、保有が不足する場合
	// （ポジションが存在しない場合を含む）はErrInsufficientHoldings、
	// 競合に敗れた場合はErrTradeConflictを返します。
	Sell(ctx context.Context, userID, companyID uint, quantity int64) error

	// ListByUser はユーザーの全ポジション（数量ゼロの行を含む）を返します。
	ListByUser(ctx context.Context, userID uint) ([]entity.Position, error)
}

// CompanyCacheInvalidator は取引で変化した会社情報のキャッシュを無効化します。
// キャッシュが構成されていない場合はnilを渡してよく、その場合は何もしません。
type CompanyCacheInvalidator interface {
	InvalidateCompany(ctx context.Context, companyID uint) error
}

// TradingUsecase は売買（レジャーエンジン）のユースケースを実装します。
type TradingUsecase struct {
	trades TradeRepository
	cache  CompanyCacheInvalidator
}

// NewTradingUsecase はTradingUsecaseの新しいインスタンスを生成します。
// cacheはキャッシュ未構成の場合nilでよいです。
func NewTradingUsecase(trades TradeRepository, cache CompanyCacheInvalidator) *TradingUsecase {
	return &TradingUsecase{trades: trades, cache: cache}
}

// Buy はユーザーが会社の株式をquantity株購入し、購入後の全保有状況を返します。
// 在庫チェックと減算はリポジトリ内で直列化され、同時実行されるBuyが
// 合計で在庫を超えて成功することはありません。
func (u *TradingUsecase) Buy(ctx context.Context, userID, companyID uint, quantity int64) ([]entity.Position, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if err := u.execute(ctx, func() error {
		return u.trades.Buy(ctx, userID, companyID, quantity)
	}); err != nil {
		return nil, err
	}

	u.invalidate(ctx, companyID)
	return u.trades.ListByUser(ctx, userID)
}

// Sell はユーザーが保有株式をquantity株売却し、売却後の全保有状況を返します。
// ちょうど保有数と同量の売却は成功し、数量ゼロのポジション行が残ります。
func (u *TradingUsecase) Sell(ctx context.Context, userID, companyID uint, quantity int64) ([]entity.Position, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if err := u.execute(ctx, func() error {
		return u.trades.Sell(ctx, userID, companyID, quantity)
	}); err != nil {
		return nil, err
	}

	u.invalidate(ctx, companyID)
	return u.trades.ListByUser(ctx, userID)
}

// Holdings はユーザーの現在の全保有状況を返します。
func (u *TradingUsecase) Holdings(ctx context.Context, userID uint) ([]entity.Position, error) {
	return u.trades.ListByUser(ctx, userID)
}

// execute は取引を実行し、競合エラーの場合のみ上限回数までリトライします。
// 上限に達した場合は最後のErrTradeConflictをそのまま返します。
func (u *TradingUsecase) execute(ctx context.Context, trade func() error) error {
	var err error
	for attempt := 1; attempt <= maxTradeAttempts; attempt++ {
		err = trade()
		if !errors.Is(err, ErrTradeConflict) {
			return err
		}
		slog.Warn("trade conflicted, retrying", "attempt", attempt)
	}
	return err
}

// invalidate は会社キャッシュをベストエフォートで無効化します。
func (u *TradingUsecase) invalidate(ctx context.Context, companyID uint) {
	if u.cache == nil {
		return
	}
	if err := u.cache.InvalidateCompany(ctx, companyID); err != nil {
		slog.Warn("failed to invalidate company cache", "company_id", companyID, "error", err)
	}
}
