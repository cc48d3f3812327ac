// Package adapters はcompanyフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"broker_backend/internal/feature/company/domain/entity"
	"broker_backend/internal/feature/company/usecase"
	tradingentity "broker_backend/internal/feature/trading/domain/entity"
)

// companyMySQL はCompanyRepositoryインターフェースのMySQL実装です。
// GORMを使用してデータベース操作を行います。
type companyMySQL struct {
	db *gorm.DB
}

// companyMySQLがCompanyRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.CompanyRepository = (*companyMySQL)(nil)

// NewCompanyMySQL は指定されたgorm.DB接続でcompanyMySQLの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewCompanyMySQL(db *gorm.DB) *companyMySQL {
	return &companyMySQL{db: db}
}

// Create は会社をデータベースに追加します。
// 名前またはシンボルが既に存在する場合、usecase.ErrCompanyAlreadyExistsを返します。
func (r *companyMySQL) Create(ctx context.Context, c *entity.Company) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		// MySQLエラー1062: ユニークキーの重複エントリ
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return usecase.ErrCompanyAlreadyExists
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrCompanyAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID はIDで会社を取得します。
// 会社が存在しない場合、usecase.ErrCompanyNotFoundを返します。
func (r *companyMySQL) FindByID(ctx context.Context, id uint) (*entity.Company, error) {
	var c entity.Company
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCompanyNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List はフィルタに一致する会社を返します。
// 完全一致フィルタは範囲フィルタと同時に指定された場合に優先され、
// 範囲は下限（GT）が上限（LT）より優先されます。
func (r *companyMySQL) List(ctx context.Context, f usecase.ListFilter) ([]entity.Company, error) {
	q := r.db.WithContext(ctx).Model(&entity.Company{})

	if f.Name != "" {
		q = q.Where("name LIKE ?", "%"+f.Name+"%")
	}
	if f.Currency != "" {
		q = q.Where("currency LIKE ?", "%"+f.Currency+"%")
	}

	switch {
	case f.Price != nil && (f.PriceGT != nil || f.PriceLT != nil):
		q = q.Where("price = ?", *f.Price)
	case f.PriceGT != nil:
		q = q.Where("price > ?", *f.PriceGT)
	case f.PriceLT != nil:
		q = q.Where("price < ?", *f.PriceLT)
	case f.Price != nil:
		q = q.Where("price = ?", *f.Price)
	}

	switch {
	case f.Available != nil && (f.AvailableGT != nil || f.AvailableLT != nil):
		q = q.Where("available_shares = ?", *f.Available)
	case f.AvailableGT != nil:
		q = q.Where("available_shares > ?", *f.AvailableGT)
	case f.AvailableLT != nil:
		q = q.Where("available_shares < ?", *f.AvailableLT)
	case f.Available != nil:
		q = q.Where("available_shares = ?", *f.Available)
	}

	if f.SortPrice == "desc" {
		q = q.Order("price DESC")
	} else if f.SortPrice == "asc" {
		q = q.Order("price ASC")
	}
	if f.SortUpdated == "asc" {
		q = q.Order("updated_at ASC")
	} else if f.SortUpdated == "desc" {
		q = q.Order("updated_at DESC")
	}

	var companies []entity.Company
	if err := q.Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// Update は会社の可変フィールドを保存します。updated_atはGORMが進めます。
func (r *companyMySQL) Update(ctx context.Context, c *entity.Company) error {
	res := r.db.WithContext(ctx).Model(&entity.Company{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":             c.Name,
			"symbol":           c.Symbol,
			"price":            c.Price,
			"available_shares": c.AvailableShares,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrCompanyNotFound
	}
	return nil
}

// Patch はnilでないフィールドだけを適用し、更新後の会社を返します。
func (r *companyMySQL) Patch(ctx context.Context, id uint, patch usecase.CompanyPatch) (*entity.Company, error) {
	fields := map[string]interface{}{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Symbol != nil {
		fields["symbol"] = *patch.Symbol
	}
	if patch.Currency != nil {
		fields["currency"] = *patch.Currency
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.AvailableShares != nil {
		fields["available_shares"] = *patch.AvailableShares
	}

	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&entity.Company{}).
			Where("id = ?", id).
			Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, usecase.ErrCompanyNotFound
		}
	}
	return r.FindByID(ctx, id)
}

// Delete は会社と、その会社を参照する全ポジションを1つのトランザクションで削除します。
// 孤児ポジションが残ることはありません。
func (r *companyMySQL) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", id).Delete(&tradingentity.Position{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Company{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrCompanyNotFound
		}
		return nil
	})
}
