// Package billing reconstructs historical occupancy from the activity log and
// turns it into weekly invoices. It never reads live pallet state: the log is
// the only source of historical truth, which keeps invoice math reproducible.
package billing

import (
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewService(db *gorm.DB, log zerolog.Logger) *Service {
	return &Service{
		db:  db,
		log: log.With().Str("component", "billing").Logger(),
	}
}
