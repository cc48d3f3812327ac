// Package adapters はratesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	companyentity "broker_backend/internal/feature/company/domain/entity"
	"broker_backend/internal/feature/rates/domain"
	"broker_backend/internal/feature/rates/domain/entity"
	"broker_backend/internal/feature/rates/usecase"
)

// rateMySQL はRateRepositoryインターフェースのMySQL実装です。
// GORMを使用してデータベース操作を行います。
type rateMySQL struct {
	db *gorm.DB
}

// rateMySQLがRateRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.RateRepository = (*rateMySQL)(nil)

// NewRateMySQL は指定されたgorm.DB接続でrateMySQLの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewRateMySQL(db *gorm.DB) *rateMySQL {
	return &rateMySQL{db: db}
}

// ListAll は保存されている全レートを通貨コード順で返します。
func (r *rateMySQL) ListAll(ctx context.Context) ([]entity.ExchangeRate, error) {
	var rates []entity.ExchangeRate
	if err := r.db.WithContext(ctx).Order("currency ASC").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// FindByCurrency は通貨コードでレートを取得します。
// レートが存在しない場合、domain.ErrUnknownCurrencyを返します。
func (r *rateMySQL) FindByCurrency(ctx context.Context, currency string) (*entity.ExchangeRate, error) {
	var rate entity.ExchangeRate
	if err := r.db.WithContext(ctx).Where("currency = ?", currency).First(&rate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCurrency, currency)
		}
		return nil, err
	}
	return &rate, nil
}

// InsertBatch はレート一式をまとめて保存します。
// 通貨コードをキーとしたupsertで、既存の通貨はrate/base/dateを上書きします。
func (r *rateMySQL) InsertBatch(ctx context.Context, rates []entity.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "currency"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "base", "date"}),
	}).Create(&rates).Error
}

// UpdateWithRepricing はレート行の更新と、その通貨で値付けされた全会社の
// 価格再計算を1つのトランザクションで行います。
//
// 読み手が「新しいレートと古い価格」や「新しい価格と古いレート」を
// 観測することはありません。各会社の新価格は round(旧価格 * ratio, 2) で、
// 価格更新はupdated_atも進めます。
func (r *rateMySQL) UpdateWithRepricing(ctx context.Context, rate entity.ExchangeRate, ratio decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.ExchangeRate{}).
			Where("id = ?", rate.ID).
			Updates(map[string]interface{}{
				"rate": rate.Rate,
				"base": rate.Base,
				"date": rate.Date,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", domain.ErrUnknownCurrency, rate.Currency)
		}

		var companies []companyentity.Company
		if err := tx.Where("currency = ?", rate.Currency).Find(&companies).Error; err != nil {
			return err
		}

		for _, c := range companies {
			newPrice := decimal.NewFromFloat(c.Price).Mul(ratio).Round(2)
			if err := tx.Model(&companyentity.Company{}).
				Where("id = ?", c.ID).
				Update("price", newPrice.InexactFloat64()).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
