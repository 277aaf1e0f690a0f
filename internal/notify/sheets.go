package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"warehouse-backend/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// SheetSync pushes ledger events to the spreadsheet webhook configured in the
// settings table. It is eventually consistent: each push is retried a few
// times with backoff, then dropped with a warning. The ledger never waits on
// it and never sees its errors.
type SheetSync struct {
	db      *gorm.DB
	client  *http.Client
	log     zerolog.Logger
	retries int
	backoff time.Duration
}

func NewSheetSync(db *gorm.DB, log zerolog.Logger) *SheetSync {
	return &SheetSync{
		db:      db,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With().Str("component", "sheets").Logger(),
		retries: 3,
		backoff: time.Second,
	}
}

func (s *SheetSync) settings() (models.Settings, error) {
	var st models.Settings
	err := s.db.First(&st).Error
	return st, err
}

// Run consumes ledger events until ctx is cancelled.
func (s *SheetSync) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			st, err := s.settings()
			if err != nil || !st.SheetsEnabled || st.SheetsWebhookURL == "" {
				continue
			}
			if err := s.post(ctx, st.SheetsWebhookURL, ev.Action, ev.Payload); err != nil {
				s.log.Warn().Err(err).Str("action", ev.Action).Msg("sheet push dropped")
			}
		}
	}
}

// Test pings the webhook. Used by the settings screen's "test connection".
func (s *SheetSync) Test(ctx context.Context) error {
	st, err := s.settings()
	if err != nil {
		return err
	}
	if st.SheetsWebhookURL == "" {
		return fmt.Errorf("no webhook URL configured")
	}
	return s.post(ctx, st.SheetsWebhookURL, ActionTest, map[string]any{})
}

// SyncAll pushes a full snapshot of active pallets, grouped per customer, so
// the sheet can rebuild itself after missed events.
func (s *SheetSync) SyncAll(ctx context.Context) error {
	st, err := s.settings()
	if err != nil {
		return err
	}
	if st.SheetsWebhookURL == "" {
		return fmt.Errorf("no webhook URL configured")
	}

	var pallets []models.Pallet
	if err := s.db.Preload("Parts").
		Where("status = ?", models.PalletStatusActive).
		Order("customer_name, date_added").
		Find(&pallets).Error; err != nil {
		return err
	}

	byCustomer := make(map[string][]models.Pallet)
	for _, p := range pallets {
		byCustomer[p.CustomerName] = append(byCustomer[p.CustomerName], p)
	}

	return s.post(ctx, st.SheetsWebhookURL, ActionSyncAll, map[string]any{
		"customers": byCustomer,
	})
}

func (s *SheetSync) post(ctx context.Context, url, action string, payload any) error {
	body, err := json.Marshal(map[string]any{
		"action": action,
		"data":   payload,
	})
	if err != nil {
		return err
	}

	var lastErr error
	wait := s.backoff
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()
		if resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return lastErr
}
