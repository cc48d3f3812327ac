// Package adapters はtradingフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	userentity "broker_backend/internal/feature/auth/domain/entity"
	companyentity "broker_backend/internal/feature/company/domain/entity"
	"broker_backend/internal/feature/trading/domain/entity"
	"broker_backend/internal/feature/trading/usecase"
)

// tradeMySQL はTradeRepositoryインターフェースのMySQL実装です。
// GORMを使用してデータベース操作を行います。
type tradeMySQL struct {
	db *gorm.DB
}

// tradeMySQLがTradeRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.TradeRepository = (*tradeMySQL)(nil)

// NewTradeMySQL は指定されたgorm.DB接続でtradeMySQLの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewTradeMySQL(db *gorm.DB) *tradeMySQL {
	return &tradeMySQL{db: db}
}

// Buy は1つのトランザクション内で会社在庫の減算とポジションのupsertを行います。
//
// 在庫の減算は available_shares >= quantity をWHERE句に含む条件付きUPDATEで行うため、
// 2つの同時実行されるBuyが同じ在庫を二重に消費することはありません。
// 事前チェックを通過したのに条件付きUPDATEが0行だった場合は、並行する書き込みに
// 敗れたことを意味するのでErrTradeConflictを返し、上位層のリトライに委ねます。
func (r *tradeMySQL) Buy(ctx context.Context, userID, companyID uint, quantity int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// トークンが有効でもアカウントは既に削除されている可能性がある。
		// ポジションを挿入するのはBuyだけなので、同じトランザクション内で
		// ユーザーの存在を確認し、孤児ポジションの作成を防ぐ。
		if err := tx.Select("id").First(&userentity.User{}, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return usecase.ErrUserNotFound
			}
			return err
		}

		var company companyentity.Company
		if err := tx.First(&company, companyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return usecase.ErrCompanyNotFound
			}
			return err
		}

		// 在庫ゼロと不足を1つの条件で扱う。在庫がちょうどquantityの場合は成功する。
		if company.AvailableShares == 0 || company.AvailableShares < quantity {
			return usecase.ErrInsufficientShares
		}

		res := tx.Model(&companyentity.Company{}).
			Where("id = ? AND available_shares >= ?", companyID, quantity).
			Update("available_shares", gorm.Expr("available_shares - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrTradeConflict
		}

		// ポジションのupsert。(user_id, company_id)のユニーク制約により
		// 同じペアの行が重複して作られることはない。
		position := entity.Position{UserID: userID, CompanyID: companyID, Quantity: quantity}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "company_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("quantity + ?", quantity),
			}),
		}).Create(&position).Error
	})
}

// Sell は1つのトランザクション内でポジションの減算と会社在庫への返却を行います。
//
// ポジションが存在しない場合は保有不足として扱います（クラッシュさせない）。
// 減算は quantity >= ? をWHERE句に含む条件付きUPDATEで行い、
// 並行する売却が同じ保有を二重に消費することを防ぎます。
func (r *tradeMySQL) Sell(ctx context.Context, userID, companyID uint, quantity int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var company companyentity.Company
		if err := tx.First(&company, companyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return usecase.ErrCompanyNotFound
			}
			return err
		}

		var position entity.Position
		if err := tx.Where("user_id = ? AND company_id = ?", userID, companyID).
			First(&position).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return usecase.ErrInsufficientHoldings
			}
			return err
		}

		// 保有ゼロと不足を1つの条件で扱う。保有とちょうど同数の売却は成功する。
		if position.Quantity == 0 || position.Quantity < quantity {
			return usecase.ErrInsufficientHoldings
		}

		res := tx.Model(&entity.Position{}).
			Where("id = ? AND quantity >= ?", position.ID, quantity).
			Update("quantity", gorm.Expr("quantity - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrTradeConflict
		}

		return tx.Model(&companyentity.Company{}).
			Where("id = ?", companyID).
			Update("available_shares", gorm.Expr("available_shares + ?", quantity)).Error
	})
}

// ListByUser はユーザーの全ポジションを会社ID順で返します。
// クローズ済み（数量ゼロ）の行も含みます。
func (r *tradeMySQL) ListByUser(ctx context.Context, userID uint) ([]entity.Position, error) {
	var positions []entity.Position
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("company_id ASC").
		Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}
