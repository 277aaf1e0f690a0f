package models

// Location is one storage slot in the warehouse grid (e.g. "B3-L2": aisle B,
// rack 3, level 2). A slot is occupied iff an active pallet record references it.
type Location struct {
	ID         string `gorm:"primaryKey;size:20" json:"id"`
	Aisle      string `gorm:"size:5;not null" json:"aisle"`
	Rack       int    `gorm:"not null" json:"rack"`
	Level      int    `gorm:"not null" json:"level"`
	IsOccupied bool   `gorm:"not null;default:false" json:"is_occupied"`
}
