// Package ledger owns authoritative pallet state and location occupancy.
// Every mutation is a single transaction that locks the pallet row, updates
// occupancy and appends exactly one activity-log entry; a change notification
// is emitted only after the transaction commits.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"warehouse-backend/internal/activity"
	"warehouse-backend/internal/apperrors"
	"warehouse-backend/internal/models"
	"warehouse-backend/internal/notify"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db       *gorm.DB
	notifier notify.Notifier
	log      zerolog.Logger
}

func NewService(db *gorm.DB, notifier notify.Notifier, log zerolog.Logger) *Service {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &Service{
		db:       db,
		notifier: notifier,
		log:      log.With().Str("component", "ledger").Logger(),
	}
}

type PartInput struct {
	PartNumber string `json:"part_number" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
}

type CheckInParams struct {
	ID             string
	CustomerName   string
	ProductID      string
	PalletQuantity int
	UnitsPerPallet int
	// CurrentUnits overrides the computed pallet_qty x units_per_pallet
	// starting value; used when resyncing a partially depleted pallet.
	CurrentUnits *int
	Location     string
	Parts        []PartInput
	Notes        string
	ScannedBy    string
}

// CheckIn creates a new active pallet record and marks its location occupied.
func (s *Service) CheckIn(p CheckInParams) (*models.Pallet, error) {
	if p.CustomerName == "" || p.ProductID == "" || p.Location == "" {
		return nil, apperrors.Validation("customer_name, product_id and location are required")
	}
	if p.PalletQuantity < 0 {
		return nil, apperrors.Validation("pallet_quantity cannot be negative")
	}
	if p.PalletQuantity == 0 {
		p.PalletQuantity = 1
	}
	if p.UnitsPerPallet < 0 {
		return nil, apperrors.Validation("units_per_pallet cannot be negative")
	}
	if p.CurrentUnits != nil && *p.CurrentUnits < 0 {
		return nil, apperrors.Validation("current_units cannot be negative")
	}

	currentUnits := p.PalletQuantity * p.UnitsPerPallet
	if p.CurrentUnits != nil {
		currentUnits = *p.CurrentUnits
	}

	pallet := models.Pallet{
		ID:              p.ID,
		CustomerName:    p.CustomerName,
		ProductID:       p.ProductID,
		PalletQuantity:  p.PalletQuantity,
		ProductQuantity: p.UnitsPerPallet,
		CurrentUnits:    currentUnits,
		Location:        p.Location,
		Status:          models.PalletStatusActive,
		DateAdded:       time.Now(),
		ScannedBy:       p.ScannedBy,
	}
	if pallet.ID == "" {
		pallet.ID = generatePalletID()
	}
	for i, part := range p.Parts {
		pallet.Parts = append(pallet.Parts, models.PalletPart{
			Position:   i,
			PartNumber: part.PartNumber,
			Quantity:   part.Quantity,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var loc models.Location
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&loc, "id = ?", p.Location).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Validation("unknown location %q", p.Location)
		}
		if err != nil {
			return apperrors.Storage("location lookup failed", err)
		}
		if loc.IsOccupied {
			return apperrors.Validation("location %q is already occupied", p.Location)
		}

		var existing int64
		if err := tx.Model(&models.Pallet{}).Where("id = ?", pallet.ID).Count(&existing).Error; err != nil {
			return apperrors.Storage("pallet id check failed", err)
		}
		if existing > 0 {
			return apperrors.Validation("pallet id %q already exists", pallet.ID)
		}

		if err := tx.Create(&pallet).Error; err != nil {
			return apperrors.Storage("pallet insert failed", err)
		}
		if err := tx.Model(&loc).Update("is_occupied", true).Error; err != nil {
			return apperrors.Storage("location update failed", err)
		}

		return activity.Append(tx, activity.Entry{
			PalletID:        pallet.ID,
			CustomerName:    pallet.CustomerName,
			ProductID:       pallet.ProductID,
			Location:        pallet.Location,
			Action:          models.ActionCheckIn,
			QuantityChanged: pallet.PalletQuantity,
			QuantityBefore:  0,
			QuantityAfter:   pallet.PalletQuantity,
			Notes:           p.Notes,
			ScannedBy:       p.ScannedBy,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("pallet", pallet.ID).Str("customer", pallet.CustomerName).
		Str("location", pallet.Location).Int("pallets", pallet.PalletQuantity).
		Msg("pallet checked in")
	s.notifier.Notify(notify.ActionAddPallet, pallet)
	return &pallet, nil
}

type RemovePalletsResult struct {
	PalletID      string `json:"pallet_id"`
	Remaining     int    `json:"remaining"`
	PalletRemoved bool   `json:"pallet_removed"`
}

// RemovePalletQuantity removes whole pallets from a record. Reaching zero
// retires the record and frees its location. current_units is untouched;
// whole-pallet removal is orthogonal to unit depletion.
func (s *Service) RemovePalletQuantity(idOrProductID string, qty int, actor string) (*RemovePalletsResult, error) {
	if qty <= 0 {
		return nil, apperrors.Validation("quantity to remove must be positive")
	}

	var result RemovePalletsResult
	var pallet models.Pallet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.lockTarget(tx, idOrProductID)
		if err != nil {
			return err
		}
		if qty > p.PalletQuantity {
			return apperrors.Validation("cannot remove %d pallets, only %d on record", qty, p.PalletQuantity)
		}

		before := p.PalletQuantity
		after := before - qty

		if after == 0 {
			if err := s.retire(tx, p); err != nil {
				return err
			}
		} else {
			if err := tx.Model(p).Update("pallet_quantity", after).Error; err != nil {
				return apperrors.Storage("pallet update failed", err)
			}
			p.PalletQuantity = after
		}

		result = RemovePalletsResult{PalletID: p.ID, Remaining: after, PalletRemoved: after == 0}
		pallet = *p

		return activity.Append(tx, activity.Entry{
			PalletID:        p.ID,
			CustomerName:    p.CustomerName,
			ProductID:       p.ProductID,
			Location:        p.Location,
			Action:          models.ActionPartialRemove,
			QuantityChanged: qty,
			QuantityBefore:  before,
			QuantityAfter:   after,
			ScannedBy:       actor,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("pallet", result.PalletID).Int("removed", qty).
		Int("remaining", result.Remaining).Msg("pallets removed")
	if result.PalletRemoved {
		s.notifier.Notify(notify.ActionDeletePallet, pallet)
	} else {
		s.notifier.Notify(notify.ActionRemovePallets, pallet)
	}
	return &result, nil
}

type RemoveUnitsResult struct {
	PalletID         string `json:"pallet_id"`
	UnitsRemaining   int    `json:"units_remaining"`
	PalletsRemaining int    `json:"pallets_remaining"`
	PalletRemoved    bool   `json:"pallet_removed"`
}

// RemoveUnits depletes units from a unit-tracked record. The pallet count is
// not shrunk as units deplete; only full depletion retires the record.
func (s *Service) RemoveUnits(idOrProductID string, units int, actor string) (*RemoveUnitsResult, error) {
	if units <= 0 {
		return nil, apperrors.Validation("units to remove must be positive")
	}

	var result RemoveUnitsResult
	var pallet models.Pallet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.lockTarget(tx, idOrProductID)
		if err != nil {
			return err
		}
		if p.ProductQuantity == 0 {
			return apperrors.Validation("pallet %s is not unit-tracked", p.ID)
		}
		if units > p.CurrentUnits {
			return apperrors.Validation("cannot remove %d units, only %d remaining", units, p.CurrentUnits)
		}

		before := p.CurrentUnits
		after := before - units

		if after == 0 {
			// Full depletion retires the whole record, counts included.
			updates := map[string]any{
				"current_units":    0,
				"pallet_quantity":  0,
				"product_quantity": 0,
			}
			if err := tx.Model(p).Updates(updates).Error; err != nil {
				return apperrors.Storage("pallet update failed", err)
			}
			p.CurrentUnits, p.PalletQuantity, p.ProductQuantity = 0, 0, 0
			if err := s.retire(tx, p); err != nil {
				return err
			}
		} else {
			if err := tx.Model(p).Update("current_units", after).Error; err != nil {
				return apperrors.Storage("pallet update failed", err)
			}
			p.CurrentUnits = after
		}

		result = RemoveUnitsResult{
			PalletID:         p.ID,
			UnitsRemaining:   after,
			PalletsRemaining: p.PalletQuantity,
			PalletRemoved:    after == 0,
		}
		pallet = *p

		return activity.Append(tx, activity.Entry{
			PalletID:        p.ID,
			CustomerName:    p.CustomerName,
			ProductID:       p.ProductID,
			Location:        p.Location,
			Action:          models.ActionUnitsRemove,
			QuantityChanged: units,
			QuantityBefore:  before,
			QuantityAfter:   after,
			ScannedBy:       actor,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("pallet", result.PalletID).Int("removed", units).
		Int("units_remaining", result.UnitsRemaining).Msg("units removed")
	if result.PalletRemoved {
		s.notifier.Notify(notify.ActionDeletePallet, pallet)
	} else {
		s.notifier.Notify(notify.ActionRemoveUnits, pallet)
	}
	return &result, nil
}

// CheckOut retires a record unconditionally and frees its location.
func (s *Service) CheckOut(idOrProductID, actor string) error {
	var pallet models.Pallet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.lockTarget(tx, idOrProductID)
		if err != nil {
			return err
		}
		if err := s.retire(tx, p); err != nil {
			return err
		}
		pallet = *p

		// Checkout logs the full pallet count, not a delta.
		return activity.Append(tx, activity.Entry{
			PalletID:        p.ID,
			CustomerName:    p.CustomerName,
			ProductID:       p.ProductID,
			Location:        p.Location,
			Action:          models.ActionCheckOut,
			QuantityChanged: p.PalletQuantity,
			QuantityBefore:  p.PalletQuantity,
			QuantityAfter:   p.PalletQuantity,
			ScannedBy:       actor,
		})
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("pallet", pallet.ID).Str("location", pallet.Location).Msg("pallet checked out")
	s.notifier.Notify(notify.ActionDeletePallet, pallet)
	return nil
}

// lockTarget resolves the removal target and locks its row for the duration
// of the transaction. The id is tried first; product_id lookup is a
// convenience that fails when it is ambiguous instead of picking one.
// Removed records never match, so retired ids come back as not found.
func (s *Service) lockTarget(tx *gorm.DB, idOrProductID string) (*models.Pallet, error) {
	if idOrProductID == "" {
		return nil, apperrors.Validation("pallet id or product id is required")
	}

	var p models.Pallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND status = ?", idOrProductID, models.PalletStatusActive).
		First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Storage("pallet lookup failed", err)
	}

	var matches []models.Pallet
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND status = ?", idOrProductID, models.PalletStatusActive).
		Find(&matches).Error
	if err != nil {
		return nil, apperrors.Storage("pallet lookup failed", err)
	}
	switch len(matches) {
	case 0:
		return nil, apperrors.NotFound("no active pallet matches %q", idOrProductID)
	case 1:
		return &matches[0], nil
	default:
		return nil, apperrors.Validation("product id %q matches %d active pallets, use the pallet id", idOrProductID, len(matches))
	}
}

// retire flips a record to removed and frees its location. One-way; lookups
// filter on active status so the record can never be mutated again.
func (s *Service) retire(tx *gorm.DB, p *models.Pallet) error {
	now := time.Now()
	err := tx.Model(p).Updates(map[string]any{
		"status":       models.PalletStatusRemoved,
		"date_removed": now,
	}).Error
	if err != nil {
		return apperrors.Storage("pallet update failed", err)
	}
	p.Status = models.PalletStatusRemoved
	p.DateRemoved = &now

	err = tx.Model(&models.Location{}).
		Where("id = ?", p.Location).
		Update("is_occupied", false).Error
	if err != nil {
		return apperrors.Storage("location update failed", err)
	}
	return nil
}

func generatePalletID() string {
	return fmt.Sprintf("PLT-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
