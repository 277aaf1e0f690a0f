package models

import "time"

type ActivityAction string

const (
	ActionCheckIn       ActivityAction = "check_in"
	ActionPartialRemove ActivityAction = "partial_remove"
	ActionUnitsRemove   ActivityAction = "units_remove"
	ActionCheckOut      ActivityAction = "check_out"
)

// ActivityLog is one immutable audit record per pallet mutation. Rows are
// never updated or deleted; billing replays them to reconstruct occupancy.
//
// Quantity semantics depend on the action: pallet counts for check_in,
// partial_remove and check_out; unit counts for units_remove.
type ActivityLog struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	PalletID     string         `gorm:"size:64;index;not null" json:"pallet_id"`
	CustomerName string         `gorm:"size:100;index;not null" json:"customer_name"`
	ProductID    string         `gorm:"size:100;not null" json:"product_id"`
	Location     string         `gorm:"size:20;not null" json:"location"`
	Action       ActivityAction `gorm:"size:20;index;not null" json:"action"`

	QuantityChanged int `gorm:"not null" json:"quantity_changed"`
	QuantityBefore  int `gorm:"not null" json:"quantity_before"`
	QuantityAfter   int `gorm:"not null" json:"quantity_after"`

	Notes     string    `gorm:"size:255" json:"notes"`
	ScannedBy string    `gorm:"size:100" json:"scanned_by"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
}
