package billing

import (
	"errors"

	"warehouse-backend/internal/apperrors"
	"warehouse-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RateParams struct {
	RatePerPalletWeek    decimal.Decimal
	HandlingFeeFlat      decimal.Decimal
	HandlingFeePerPallet decimal.Decimal
	Currency             string
}

// UpsertRate stores a customer's rate row, replacing any existing one. At
// most one row exists per customer name.
func (s *Service) UpsertRate(customer string, p RateParams) (*models.CustomerRate, error) {
	if customer == "" {
		return nil, apperrors.Validation("customer is required")
	}
	if p.RatePerPalletWeek.IsNegative() || p.HandlingFeeFlat.IsNegative() || p.HandlingFeePerPallet.IsNegative() {
		return nil, apperrors.Validation("rates cannot be negative")
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}

	rate := models.CustomerRate{
		CustomerName:         customer,
		RatePerPalletWeek:    p.RatePerPalletWeek,
		HandlingFeeFlat:      p.HandlingFeeFlat,
		HandlingFeePerPallet: p.HandlingFeePerPallet,
		Currency:             p.Currency,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"rate_per_pallet_week", "handling_fee_flat", "handling_fee_per_pallet", "currency", "updated_at",
		}),
	}).Create(&rate).Error
	if err != nil {
		return nil, apperrors.Storage("rate upsert failed", err)
	}

	s.log.Info().Str("customer", customer).Msg("rate upserted")
	return &rate, nil
}

func (s *Service) GetRate(customer string) (*models.CustomerRate, error) {
	var rate models.CustomerRate
	err := s.db.Where("customer_name = ?", customer).First(&rate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("no rate stored for customer %q", customer)
	}
	if err != nil {
		return nil, apperrors.Storage("rate lookup failed", err)
	}
	return &rate, nil
}
