// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package services

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// BadgerGCService periodically runs value-log garbage collection on the
// shared store. Badger does not GC on its own; without this, disk usage
// grows with every toggled-off interaction.
type BadgerGCService struct {
	db       *badger.DB
	interval time.Duration
	logger   zerolog.Logger
}

// NewBadgerGCService wraps the store for supervised GC.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerGCService(db *badger.DB, interval time.Duration, logger zerolog.Logger) *BadgerGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &BadgerGCService{
		db:       db,
		interval: interval,
		logger:   logger.With().Str("component", "badger-gc").Logger(),
	}
}

// Serve implements suture.Service.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.collect()
		}
	}
}

// collect runs GC rounds until Badger reports nothing left to rewrite.
func (s *BadgerGCService) collect() {
	rounds := 0
	for {
		err := s.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) {
			break
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("value log GC failed")
			return
		}
		rounds++
	}
	if rounds > 0 {
		s.logger.Debug().Int("rounds", rounds).Msg("value log GC completed")
	}
}

// String names the service in supervisor logs.
func (s *BadgerGCService) String() string {
	return "badger-gc"
}
