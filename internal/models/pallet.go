package models

import "time"

type PalletStatus string

const (
	PalletStatusActive  PalletStatus = "active"
	PalletStatusRemoved PalletStatus = "removed"
)

// Pallet is one tracked unit of inventory: possibly several physical pallets
// of the same product, at one location, owned by one customer.
type Pallet struct {
	ID           string `gorm:"primaryKey;size:64" json:"id"`
	CustomerName string `gorm:"size:100;index;not null" json:"customer_name"`
	ProductID    string `gorm:"size:100;index;not null" json:"product_id"`

	// PalletQuantity is the number of physical pallets in this record.
	PalletQuantity int `gorm:"not null;default:1" json:"pallet_quantity"`

	// ProductQuantity is the units-per-pallet figure captured at check-in.
	// Descriptive only; never recomputed from current state.
	ProductQuantity int `gorm:"not null;default:0" json:"product_quantity"`

	// CurrentUnits is the actual units remaining across all pallets in this
	// record. Only unit-removal operations decrement it.
	CurrentUnits int `gorm:"not null;default:0" json:"current_units"`

	Location string       `gorm:"size:20;index;not null" json:"location"`
	Status   PalletStatus `gorm:"size:20;index;not null;default:active" json:"status"`

	Parts []PalletPart `gorm:"foreignKey:PalletID;references:ID" json:"parts,omitempty"`

	DateAdded   time.Time  `gorm:"index;not null" json:"date_added"`
	DateRemoved *time.Time `json:"date_removed"`
	ScannedBy   string     `gorm:"size:100" json:"scanned_by"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// PalletPart is an opaque sub-item of a pallet record (e.g. a box of spare
// parts riding on the pallet). Removal logic never touches these rows.
type PalletPart struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	PalletID   string `gorm:"size:64;index;not null" json:"-"`
	Position   int    `gorm:"not null;default:0" json:"-"`
	PartNumber string `gorm:"size:100;not null" json:"part_number"`
	Quantity   int    `gorm:"not null" json:"quantity"`
}
