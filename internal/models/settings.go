package models

import "time"

// Settings is a single-row table for runtime-editable configuration,
// currently just the spreadsheet sync target.
type Settings struct {
	ID               uint      `gorm:"primaryKey" json:"-"`
	SheetsWebhookURL string    `gorm:"size:500" json:"sheets_webhook_url"`
	SheetsEnabled    bool      `gorm:"not null;default:false" json:"sheets_enabled"`
	UpdatedAt        time.Time `json:"-"`
}
