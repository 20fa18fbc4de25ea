// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

// Package experiment provides deterministic A/B variant assignment and a
// two-proportion significance test over recorded conversions.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"
)

// Variant is one experiment arm.
type Variant string

// Experiment arms.
const (
	VariantControl Variant = "control"
	VariantTest    Variant = "test"

	// VariantNone is returned by Winner when no arm can be declared.
	VariantNone Variant = "none"
)

// minSampleSize is the per-variant user count below which Winner reports an
// insufficient sample. This is a normal result, not an error.
const minSampleSize = 30

// significanceLevel is the confidence above which a winner is flagged as
// statistically significant.
const significanceLevel = 0.95

// Sentinel errors.
var (
	// ErrEmptyUserID indicates a missing user id.
	ErrEmptyUserID = errors.New("user id is required")

	// ErrStorage indicates the backing store failed to persist or load.
	ErrStorage = errors.New("experiment storage failure")
)

// Counts are the running totals for one variant.
type Counts struct {
	Users          int     `json:"users"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Result is the outcome of a Winner evaluation.
type Result struct {
	Winner     Variant `json:"winner"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
}

// Backend persists per-variant counters.
type Backend interface {
	// Save persists the counters for both variants.
	Save(ctx context.Context, counts map[Variant]Counts) error

	// Load returns the persisted counters. An empty map means no history.
	Load(ctx context.Context) (map[Variant]Counts, error)
}

// Assign deterministically maps a user id to an experiment arm using a
// 32-bit polynomial string hash (h = h*31 + byte, wrapping). The assignment
// is pure: the same id always lands in the same arm.
func Assign(userID string) Variant {
	var h int32
	for i := 0; i < len(userID); i++ {
		h = h*31 + int32(userID[i])
	}
	if h < 0 {
		h = -h
	}
	if h%2 == 0 {
		return VariantControl
	}
	return VariantTest
}

// Evaluator tracks conversions per variant and declares a winner once both
// arms have enough users.
type Evaluator struct {
	backend Backend
	logger  zerolog.Logger

	mu     sync.RWMutex
	counts map[Variant]Counts
}

// NewEvaluator creates an evaluator and replays persisted counters.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEvaluator(ctx context.Context, backend Backend, logger zerolog.Logger) (*Evaluator, error) {
	counts, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load counters: %v", ErrStorage, err)
	}
	if counts == nil {
		counts = make(map[Variant]Counts)
	}

	return &Evaluator{
		backend: backend,
		logger:  logger.With().Str("component", "experiment").Logger(),
		counts:  counts,
	}, nil
}

// RecordConversion recomputes the user's variant, increments its user
// counter and, when converted, its conversion counter.
func (e *Evaluator) RecordConversion(ctx context.Context, userID string, converted bool) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	variant := Assign(userID)

	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.counts[variant]
	c.Users++
	if converted {
		c.Conversions++
	}
	c.ConversionRate = float64(c.Conversions) / float64(c.Users)
	e.counts[variant] = c

	if err := e.backend.Save(ctx, e.counts); err != nil {
		return fmt.Errorf("%w: save counters: %v", ErrStorage, err)
	}
	return nil
}

// Counts returns the current totals for one variant.
func (e *Evaluator) Counts(variant Variant) Counts {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.counts[variant]
}

// Winner evaluates the experiment with a pooled two-proportion z-test.
// Below minSampleSize users in either arm the result is an insufficient
// sample, not an error. Significance is flagged above significanceLevel.
func (e *Evaluator) Winner() Result {
	e.mu.RLock()
	control := e.counts[VariantControl]
	test := e.counts[VariantTest]
	e.mu.RUnlock()

	if control.Users < minSampleSize || test.Users < minSampleSize {
		return Result{
			Winner:     VariantNone,
			Confidence: 0,
			Message:    "insufficient sample",
		}
	}

	pooled := float64(control.Conversions+test.Conversions) / float64(control.Users+test.Users)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(control.Users) + 1/float64(test.Users)))

	var confidence float64
	if se > 0 {
		z := math.Abs(test.ConversionRate-control.ConversionRate) / se
		confidence = 1 - 2*(1-normalCDF(z))
	}

	winner := VariantControl
	if test.ConversionRate > control.ConversionRate {
		winner = VariantTest
	}

	message := fmt.Sprintf("%s leads with %.2f%% confidence (not significant)", winner, confidence*100)
	if confidence > significanceLevel {
		message = fmt.Sprintf("%s wins with %.2f%% confidence", winner, confidence*100)
	}

	return Result{
		Winner:     winner,
		Confidence: confidence,
		Message:    message,
	}
}

// normalCDF is the standard normal cumulative distribution function.
func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}
