// Package activity is the append-only audit trail. Entries are written inside
// the ledger's mutation transaction and never updated or deleted afterwards;
// billing replays them as its only source of historical truth.
package activity

import (
	"time"

	"warehouse-backend/internal/apperrors"
	"warehouse-backend/internal/models"

	"gorm.io/gorm"
)

// Entry is the append payload. The ledger has already validated the fields;
// Append only fills in the timestamp when missing.
type Entry struct {
	PalletID     string
	CustomerName string
	ProductID    string
	Location     string
	Action       models.ActivityAction

	QuantityChanged int
	QuantityBefore  int
	QuantityAfter   int

	Notes     string
	ScannedBy string
	Timestamp time.Time
}

// Append writes one log row. Callers pass their open transaction so the log
// entry commits or rolls back together with the pallet mutation.
func Append(tx *gorm.DB, e Entry) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	row := models.ActivityLog{
		PalletID:        e.PalletID,
		CustomerName:    e.CustomerName,
		ProductID:       e.ProductID,
		Location:        e.Location,
		Action:          e.Action,
		QuantityChanged: e.QuantityChanged,
		QuantityBefore:  e.QuantityBefore,
		QuantityAfter:   e.QuantityAfter,
		Notes:           e.Notes,
		ScannedBy:       e.ScannedBy,
		Timestamp:       ts,
	}

	if err := tx.Create(&row).Error; err != nil {
		return apperrors.Storage("activity log append failed", err)
	}
	return nil
}

// Query returns entries newest first, optionally filtered by customer and
// capped at limit (0 means no cap).
func Query(db *gorm.DB, customer string, limit int) ([]models.ActivityLog, error) {
	q := db.Model(&models.ActivityLog{})
	if customer != "" {
		q = q.Where("customer_name = ?", customer)
	}
	q = q.Order("timestamp DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var entries []models.ActivityLog
	if err := q.Find(&entries).Error; err != nil {
		return nil, apperrors.Storage("activity log query failed", err)
	}
	return entries, nil
}

// QueryAsOf returns a customer's entries with timestamp <= cutoff, oldest
// first. The id tiebreak keeps replay deterministic when timestamps collide.
func QueryAsOf(db *gorm.DB, customer string, cutoff time.Time) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := db.
		Where("customer_name = ? AND timestamp <= ?", customer, cutoff).
		Order("timestamp ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, apperrors.Storage("activity log query failed", err)
	}
	return entries, nil
}
