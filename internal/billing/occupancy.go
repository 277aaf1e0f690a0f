package billing

import (
	"time"

	"warehouse-backend/internal/activity"
	"warehouse-backend/internal/apperrors"
	"warehouse-backend/internal/models"
)

type OccupancyMetrics struct {
	PalletDays     int     `json:"pallet_days"`
	DaysInRange    int     `json:"days_in_range"`
	HandledPallets int     `json:"handled_pallets"`
	PalletWeeks    float64 `json:"pallet_weeks"`
}

// ComputeOccupancyMetrics replays the customer's activity log day by day over
// the inclusive [start, end] calendar range and accumulates pallet-days.
func (s *Service) ComputeOccupancyMetrics(customer string, start, end time.Time) (*OccupancyMetrics, error) {
	if customer == "" {
		return nil, apperrors.Validation("customer is required")
	}
	start = dateOnly(start)
	end = dateOnly(end)
	if start.After(end) {
		return nil, apperrors.Validation("start date must not be after end date")
	}

	entries, err := activity.QueryAsOf(s.db, customer, endOfDay(end))
	if err != nil {
		return nil, err
	}

	m := replayOccupancy(entries, start, end)
	return &m, nil
}

// replayOccupancy is the pure replay core. Entries must be ordered oldest
// first; each is applied exactly once, in order, and the occupancy map carries
// across days.
//
// check_in and partial_remove set the record's pallet count to the logged
// quantity_after (dropping the key at zero); check_out drops the key.
// units_remove never changes the map: billing counts pallets, not units.
func replayOccupancy(entries []models.ActivityLog, start, end time.Time) OccupancyMetrics {
	start = dateOnly(start)
	end = dateOnly(end)

	occupied := make(map[string]int)
	next := 0

	// Events before the billing window establish the opening state.
	for next < len(entries) && entries[next].Timestamp.Before(start) {
		applyEntry(occupied, entries[next])
		next++
	}

	var m OccupancyMetrics
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		cutoff := endOfDay(day)
		for next < len(entries) && !entries[next].Timestamp.After(cutoff) {
			applyEntry(occupied, entries[next])
			next++
		}

		for _, qty := range occupied {
			m.PalletDays += qty
		}
		m.DaysInRange++
	}

	windowStart := start
	windowEnd := endOfDay(end)
	for _, e := range entries {
		if e.Action == models.ActionCheckIn && !e.Timestamp.Before(windowStart) && !e.Timestamp.After(windowEnd) {
			m.HandledPallets += e.QuantityChanged
		}
	}

	m.PalletWeeks = float64(m.PalletDays) / 7
	return m
}

func applyEntry(occupied map[string]int, e models.ActivityLog) {
	switch e.Action {
	case models.ActionCheckIn:
		occupied[e.PalletID] = e.QuantityAfter
	case models.ActionPartialRemove:
		if e.QuantityAfter > 0 {
			occupied[e.PalletID] = e.QuantityAfter
		} else {
			delete(occupied, e.PalletID)
		}
	case models.ActionCheckOut:
		delete(occupied, e.PalletID)
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
