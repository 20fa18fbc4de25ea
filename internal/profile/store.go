// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/metrics"
	"github.com/pulsekit/pulse/internal/social"
)

// Sentinel errors for profile operations.
var (
	// ErrEmptyUserID indicates a missing user id.
	ErrEmptyUserID = errors.New("user id is required")

	// ErrStorage indicates the backing store failed to persist or load.
	// The in-memory profile change is still applied when a mutation returns
	// a wrapped ErrStorage.
	ErrStorage = errors.New("profile storage failure")
)

// Backend persists profiles. Every mutating Store call saves the full
// profile, so storage stays consistent with memory before the call returns.
type Backend interface {
	// Save persists one profile.
	Save(ctx context.Context, p Profile) error

	// Load returns all persisted profiles.
	Load(ctx context.Context) ([]Profile, error)
}

// Store is the user profile store. Per-user locks serialize mutations so a
// history append and the UpdatedAt bump are atomic per user, while different
// users mutate fully in parallel.
type Store struct {
	backend Backend
	logger  zerolog.Logger

	mu       sync.Mutex
	profiles map[string]*Profile
	locks    map[string]*sync.Mutex

	now func() time.Time
}

// NewStore creates a profile store and replays persisted profiles.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStore(ctx context.Context, backend Backend, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		backend:  backend,
		logger:   logger.With().Str("component", "profile").Logger(),
		profiles: make(map[string]*Profile),
		locks:    make(map[string]*sync.Mutex),
		now:      time.Now,
	}

	existing, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load profiles: %v", ErrStorage, err)
	}
	for i := range existing {
		p := existing[i]
		s.profiles[p.ID] = &p
	}

	s.logger.Info().Int("profiles", len(existing)).Msg("profile store loaded")
	return s, nil
}

// GetOrCreate returns the profile for a user, creating it with default
// weights on first reference. Lazy creation is the only creation path; there
// is deliberately no Get that can fail with "not found".
func (s *Store) GetOrCreate(ctx context.Context, userID string) (Profile, error) {
	if userID == "" {
		return Profile{}, ErrEmptyUserID
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	p, created := s.getOrCreateLocked(userID)
	if !created {
		return p.clone(), nil
	}

	if err := s.backend.Save(ctx, *p); err != nil {
		return p.clone(), fmt.Errorf("%w: save profile: %v", ErrStorage, err)
	}
	return p.clone(), nil
}

// Apply folds a ledger interaction into the user's behavior: the interaction
// is appended to the trace, and a like or share bumps the rating of the
// matching view-history entry.
func (s *Store) Apply(ctx context.Context, userID string, in social.Interaction) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	p, _ := s.getOrCreateLocked(userID)

	p.Behavior.Interactions = append(p.Behavior.Interactions, InteractionRecord{
		InteractionID: in.ID,
		ContentID:     in.ContentID,
		ContentType:   in.ContentType,
		Kind:          in.Kind,
		OccurredAt:    in.Timestamp,
	})

	if in.Kind == social.KindLike || in.Kind == social.KindShare {
		for i := range p.Behavior.ViewHistory {
			if p.Behavior.ViewHistory[i].ContentID == in.ContentID {
				if p.Behavior.ViewHistory[i].Rating < maxViewRating {
					p.Behavior.ViewHistory[i].Rating++
				}
				break
			}
		}
	}

	p.UpdatedAt = s.now()
	metrics.ProfileUpdates.WithLabelValues(string(in.Kind)).Inc()

	if err := s.backend.Save(ctx, *p); err != nil {
		return fmt.Errorf("%w: save profile: %v", ErrStorage, err)
	}
	return nil
}

// RecordView notes that the user viewed a content item. The first view of a
// content id appends a history entry; repeat views update duration and
// completion in place rather than duplicating the entry.
func (s *Store) RecordView(ctx context.Context, userID, contentID string, contentType catalog.ContentType, durationSeconds int, completed bool) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	p, _ := s.getOrCreateLocked(userID)

	updated := false
	for i := range p.Behavior.ViewHistory {
		if p.Behavior.ViewHistory[i].ContentID == contentID {
			if durationSeconds > p.Behavior.ViewHistory[i].DurationSeconds {
				p.Behavior.ViewHistory[i].DurationSeconds = durationSeconds
			}
			p.Behavior.ViewHistory[i].Completed = p.Behavior.ViewHistory[i].Completed || completed
			updated = true
			break
		}
	}
	if !updated {
		p.Behavior.ViewHistory = append(p.Behavior.ViewHistory, ViewRecord{
			ContentID:       contentID,
			ContentType:     contentType,
			ViewedAt:        s.now(),
			DurationSeconds: durationSeconds,
			Completed:       completed,
		})
	}

	p.UpdatedAt = s.now()
	metrics.ProfileUpdates.WithLabelValues(string(social.KindView)).Inc()

	if err := s.backend.Save(ctx, *p); err != nil {
		return fmt.Errorf("%w: save profile: %v", ErrStorage, err)
	}
	return nil
}

// RecordSearch appends a search to the user's search history.
func (s *Store) RecordSearch(ctx context.Context, userID, query string, resultCount int) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	p, _ := s.getOrCreateLocked(userID)
	p.Behavior.SearchHistory = append(p.Behavior.SearchHistory, SearchRecord{
		Query:       query,
		ResultCount: resultCount,
		SearchedAt:  s.now(),
	})
	p.UpdatedAt = s.now()
	metrics.ProfileUpdates.WithLabelValues("search").Inc()

	if err := s.backend.Save(ctx, *p); err != nil {
		return fmt.Errorf("%w: save profile: %v", ErrStorage, err)
	}
	return nil
}

// getOrCreateLocked returns the live profile for a user, creating it when
// absent. The caller must hold the user lock. The second return reports
// whether a new profile was created.
func (s *Store) getOrCreateLocked(userID string) (*Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.profiles[userID]; ok {
		return p, false
	}

	now := s.now()
	p := &Profile{
		ID:          userID,
		Preferences: defaultPreferences(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.profiles[userID] = p
	metrics.ProfilesCreated.Inc()

	s.logger.Debug().Str("user_id", userID).Msg("profile created lazily")
	return p, true
}

// userLock returns the mutex serializing mutations for one user.
func (s *Store) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}
