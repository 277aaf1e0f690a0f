package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerRate holds the billing rates for one customer. At most one row per
// customer name; upserts replace the existing row's values.
type CustomerRate struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	CustomerName         string          `gorm:"size:100;uniqueIndex;not null" json:"customer_name"`
	RatePerPalletWeek    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"rate_per_pallet_week"`
	HandlingFeeFlat      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"handling_fee_flat"`
	HandlingFeePerPallet decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"handling_fee_per_pallet"`
	Currency             string          `gorm:"size:10;not null;default:USD" json:"currency"`
	CreatedAt            time.Time       `json:"-"`
	UpdatedAt            time.Time       `json:"-"`
}
