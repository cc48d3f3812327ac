// Package entity はratesフィーチャーのドメインエンティティを定義します。
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate は1通貨の最新為替レートを保持します。
// レートは固定の基準通貨（Base）に対する値で、通貨コードごとに1行のみ存在します。
type ExchangeRate struct {
	ID uint `gorm:"primaryKey"`

	// Currency はISO通貨コードです。通貨ごとに一意です。
	Currency string `gorm:"uniqueIndex;size:3;not null"`

	// Rate は基準通貨に対する最新レートです。
	Rate decimal.Decimal `gorm:"type:decimal(18,8);not null"`

	// Base は基準通貨のISOコードです。
	Base string `gorm:"size:3;not null"`

	// Date はフィードが報告したレートの日付（YYYY-MM-DD）です。
	Date string `gorm:"size:10;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RateSnapshot は外部フィードから取得した1回分のレート一式を表します。
type RateSnapshot struct {
	Base  string
	Date  string
	Rates map[string]decimal.Decimal
}
