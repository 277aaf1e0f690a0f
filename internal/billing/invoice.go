package billing

import (
	"errors"
	"time"

	"warehouse-backend/internal/apperrors"
	"warehouse-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RateOverride replaces stored rate fields per-field when set.
type RateOverride struct {
	RatePerPalletWeek    *decimal.Decimal `json:"rate_per_pallet_week"`
	HandlingFeeFlat      *decimal.Decimal `json:"handling_fee_flat"`
	HandlingFeePerPallet *decimal.Decimal `json:"handling_fee_per_pallet"`
	Currency             *string          `json:"currency"`
}

type InvoicePreview struct {
	CustomerName string    `json:"customer_name"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`

	PalletDays     int     `json:"pallet_days"`
	PalletWeeks    float64 `json:"pallet_weeks"`
	HandledPallets int     `json:"handled_pallets"`

	RatePerPalletWeek    decimal.Decimal `json:"rate_per_pallet_week"`
	HandlingFeeFlat      decimal.Decimal `json:"handling_fee_flat"`
	HandlingFeePerPallet decimal.Decimal `json:"handling_fee_per_pallet"`
	Currency             string          `json:"currency"`

	BaseTotal     decimal.Decimal `json:"base_total"`
	HandlingTotal decimal.Decimal `json:"handling_total"`
	Total         decimal.Decimal `json:"total"`
}

// resolveRates merges the stored rate row with per-field overrides. A missing
// stored row is fine as long as the override supplies the weekly rate.
func (s *Service) resolveRates(customer string, override *RateOverride) (RateParams, error) {
	resolved := RateParams{Currency: "USD"}
	haveWeekly := false

	stored, err := s.GetRate(customer)
	switch {
	case err == nil:
		resolved = RateParams{
			RatePerPalletWeek:    stored.RatePerPalletWeek,
			HandlingFeeFlat:      stored.HandlingFeeFlat,
			HandlingFeePerPallet: stored.HandlingFeePerPallet,
			Currency:             stored.Currency,
		}
		haveWeekly = true
	case apperrors.IsNotFound(err):
		// fall through to overrides
	default:
		return RateParams{}, err
	}

	if override != nil {
		if override.RatePerPalletWeek != nil {
			resolved.RatePerPalletWeek = *override.RatePerPalletWeek
			haveWeekly = true
		}
		if override.HandlingFeeFlat != nil {
			resolved.HandlingFeeFlat = *override.HandlingFeeFlat
		}
		if override.HandlingFeePerPallet != nil {
			resolved.HandlingFeePerPallet = *override.HandlingFeePerPallet
		}
		if override.Currency != nil && *override.Currency != "" {
			resolved.Currency = *override.Currency
		}
	}

	if !haveWeekly {
		return RateParams{}, apperrors.Validation("no rate stored for customer %q and no override supplied", customer)
	}
	if resolved.RatePerPalletWeek.IsNegative() || resolved.HandlingFeeFlat.IsNegative() || resolved.HandlingFeePerPallet.IsNegative() {
		return RateParams{}, apperrors.Validation("resolved rates cannot be negative")
	}
	return resolved, nil
}

// PreviewInvoice computes totals for the range without persisting anything.
// Each subtotal is rounded to 2 decimals (half-up) before summing; invoice
// totals must reproduce exactly between preview and generation.
func (s *Service) PreviewInvoice(customer string, start, end time.Time, override *RateOverride) (*InvoicePreview, error) {
	rates, err := s.resolveRates(customer, override)
	if err != nil {
		return nil, err
	}

	metrics, err := s.ComputeOccupancyMetrics(customer, start, end)
	if err != nil {
		return nil, err
	}

	baseTotal, handlingTotal := computeTotals(rates, *metrics)

	return &InvoicePreview{
		CustomerName:         customer,
		StartDate:            dateOnly(start),
		EndDate:              dateOnly(end),
		PalletDays:           metrics.PalletDays,
		PalletWeeks:          metrics.PalletWeeks,
		HandledPallets:       metrics.HandledPallets,
		RatePerPalletWeek:    rates.RatePerPalletWeek,
		HandlingFeeFlat:      rates.HandlingFeeFlat,
		HandlingFeePerPallet: rates.HandlingFeePerPallet,
		Currency:             rates.Currency,
		BaseTotal:            baseTotal,
		HandlingTotal:        handlingTotal,
		Total:                baseTotal.Add(handlingTotal),
	}, nil
}

// computeTotals turns occupancy metrics into money. Both subtotals round to
// 2 decimals half-up independently; the grand total is their exact sum.
// pallet_weeks is pallet_days/7 prorated by day, never rounded up to whole
// weeks.
func computeTotals(rates RateParams, metrics OccupancyMetrics) (baseTotal, handlingTotal decimal.Decimal) {
	weeks := decimal.NewFromInt(int64(metrics.PalletDays)).Div(decimal.NewFromInt(7))
	baseTotal = rates.RatePerPalletWeek.Mul(weeks).Round(2)
	handlingTotal = rates.HandlingFeeFlat.
		Add(rates.HandlingFeePerPallet.Mul(decimal.NewFromInt(int64(metrics.HandledPallets)))).
		Round(2)
	return baseTotal, handlingTotal
}

type GenerateInvoiceParams struct {
	Customer  string
	StartDate time.Time
	EndDate   time.Time
	// WeekStart, when set, expands to the inclusive 7-day window
	// [WeekStart, WeekStart+6] and takes precedence over StartDate/EndDate.
	WeekStart *time.Time
	Override  *RateOverride
}

// GenerateInvoice previews and persists a draft invoice snapshot. The
// resolved rates are captured on the row; later rate edits never change it.
func (s *Service) GenerateInvoice(p GenerateInvoiceParams) (*models.Invoice, error) {
	start, end := p.StartDate, p.EndDate
	if p.WeekStart != nil {
		start = dateOnly(*p.WeekStart)
		end = start.AddDate(0, 0, 6)
	}
	if start.IsZero() || end.IsZero() {
		return nil, apperrors.Validation("start_date and end_date (or week_start) are required")
	}

	preview, err := s.PreviewInvoice(p.Customer, start, end, p.Override)
	if err != nil {
		return nil, err
	}

	invoice := models.Invoice{
		CustomerName:         preview.CustomerName,
		StartDate:            preview.StartDate,
		EndDate:              preview.EndDate,
		PalletDays:           preview.PalletDays,
		PalletWeeks:          preview.PalletWeeks,
		HandledPallets:       preview.HandledPallets,
		RatePerPalletWeek:    preview.RatePerPalletWeek,
		HandlingFeeFlat:      preview.HandlingFeeFlat,
		HandlingFeePerPallet: preview.HandlingFeePerPallet,
		Currency:             preview.Currency,
		BaseTotal:            preview.BaseTotal,
		HandlingTotal:        preview.HandlingTotal,
		Total:                preview.Total,
		Status:               models.InvoiceStatusDraft,
	}

	if err := s.db.Create(&invoice).Error; err != nil {
		return nil, apperrors.Storage("invoice insert failed", err)
	}

	s.log.Info().Uint("invoice", invoice.ID).Str("customer", invoice.CustomerName).
		Str("total", invoice.Total.String()).Msg("invoice generated")
	return &invoice, nil
}

// SetInvoiceStatus moves an invoice between draft/sent/paid. Sent and paid
// transitions stamp their timestamps; moving back to draft clears neither.
func (s *Service) SetInvoiceStatus(id uint, status models.InvoiceStatus) (*models.Invoice, error) {
	switch status {
	case models.InvoiceStatusDraft, models.InvoiceStatusSent, models.InvoiceStatusPaid:
	default:
		return nil, apperrors.Validation("invalid invoice status %q", status)
	}

	var invoice models.Invoice
	err := s.db.First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("invoice %d not found", id)
	}
	if err != nil {
		return nil, apperrors.Storage("invoice lookup failed", err)
	}

	updates := map[string]any{"status": status}
	now := time.Now()
	switch status {
	case models.InvoiceStatusSent:
		updates["sent_at"] = now
		invoice.SentAt = &now
	case models.InvoiceStatusPaid:
		updates["paid_at"] = now
		invoice.PaidAt = &now
	}
	invoice.Status = status

	if err := s.db.Model(&invoice).Updates(updates).Error; err != nil {
		return nil, apperrors.Storage("invoice update failed", err)
	}
	return &invoice, nil
}

func (s *Service) GetInvoice(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("invoice %d not found", id)
	}
	if err != nil {
		return nil, apperrors.Storage("invoice lookup failed", err)
	}
	return &invoice, nil
}

func (s *Service) ListInvoices(customer string) ([]models.Invoice, error) {
	q := s.db.Model(&models.Invoice{})
	if customer != "" {
		q = q.Where("customer_name = ?", customer)
	}

	var invoices []models.Invoice
	if err := q.Order("created_at DESC").Find(&invoices).Error; err != nil {
		return nil, apperrors.Storage("invoice query failed", err)
	}
	return invoices, nil
}
