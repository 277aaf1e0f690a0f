package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
)

// Invoice is a persisted billing snapshot. The rate values in effect at
// generation time are captured on the row, so later rate changes never alter
// an existing invoice. Only status/sent_at/paid_at change after insert.
type Invoice struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CustomerName string    `gorm:"size:100;index;not null" json:"customer_name"`
	StartDate    time.Time `gorm:"not null" json:"start_date"`
	EndDate      time.Time `gorm:"not null" json:"end_date"`

	PalletDays     int     `gorm:"not null" json:"pallet_days"`
	PalletWeeks    float64 `gorm:"not null" json:"pallet_weeks"`
	HandledPallets int     `gorm:"not null" json:"handled_pallets"`

	// Captured rates, not live references to the rate table.
	RatePerPalletWeek    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"rate_per_pallet_week"`
	HandlingFeeFlat      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"handling_fee_flat"`
	HandlingFeePerPallet decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"handling_fee_per_pallet"`
	Currency             string          `gorm:"size:10;not null" json:"currency"`

	BaseTotal     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"base_total"`
	HandlingTotal decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"handling_total"`
	Total         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`

	Status InvoiceStatus `gorm:"size:20;index;not null;default:draft" json:"status"`
	SentAt *time.Time    `json:"sent_at"`
	PaidAt *time.Time    `json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
