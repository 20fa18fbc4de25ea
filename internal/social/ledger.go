// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package social

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/metrics"
)

// EventSink receives newly recorded interactions. It is implemented by the
// events package; the ledger never toggles events for removals.
type EventSink interface {
	InteractionRecorded(ctx context.Context, in Interaction)
}

// Service is the interaction ledger plus the per-content engagement
// aggregator. A single writer lock makes every mutate-then-recompute pair
// atomic: a concurrent Toggle and Stats on the same content id can never
// observe stale or double-counted stats.
type Service struct {
	store  InteractionStore
	sink   EventSink
	logger zerolog.Logger

	mu        sync.RWMutex
	entries   map[string]Interaction // id -> entry
	byContent map[string][]string    // content id -> entry ids, insertion order
	toggles   map[string]string      // user|content|kind -> entry id
	views     map[string]string      // user|content -> entry id
	stats     map[string]Stats       // content id -> cached stats
	seen      []string               // content ids in first-seen order

	now func() time.Time
}

// NewService creates a ledger service backed by the given store. Existing
// entries are replayed from the store so stats survive restarts.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(ctx context.Context, store InteractionStore, logger zerolog.Logger) (*Service, error) {
	s := &Service{
		store:     store,
		logger:    logger.With().Str("component", "social").Logger(),
		entries:   make(map[string]Interaction),
		byContent: make(map[string][]string),
		toggles:   make(map[string]string),
		views:     make(map[string]string),
		stats:     make(map[string]Stats),
		now:       time.Now,
	}

	existing, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load ledger: %v", ErrStorage, err)
	}

	for _, in := range existing {
		s.index(in)
	}
	for _, contentID := range s.seen {
		s.stats[contentID] = s.recomputeLocked(contentID)
	}

	s.logger.Info().
		Int("entries", len(existing)).
		Int("content_items", len(s.seen)).
		Msg("interaction ledger loaded")

	return s, nil
}

// SetEventSink attaches a sink notified of every newly recorded interaction.
// Must be called before the service handles traffic.
func (s *Service) SetEventSink(sink EventSink) {
	s.sink = sink
}

// Toggle flips a like or bookmark for (userID, contentID). It returns the new
// state: true when an entry was created, false when an existing entry was
// removed. Stats reflect the ledger after the toggle.
func (s *Service) Toggle(ctx context.Context, userID, contentID string, contentType catalog.ContentType, kind Kind) (bool, Stats, error) {
	if err := validateIDs(userID, contentID); err != nil {
		return false, Stats{}, err
	}
	if !kind.Valid() {
		return false, Stats{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if !kind.Toggleable() {
		return false, Stats{}, fmt.Errorf("%w: %q", ErrNotToggleable, kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := toggleKey(userID, contentID, kind)
	if id, active := s.toggles[key]; active {
		s.unindex(id)
		s.stats[contentID] = s.recomputeLocked(contentID)

		if err := s.store.Delete(ctx, id); err != nil {
			return false, s.stats[contentID], fmt.Errorf("%w: delete %s: %v", ErrStorage, kind, err)
		}
		return false, s.stats[contentID], nil
	}

	in := Interaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		ContentID:   contentID,
		ContentType: contentType,
		Kind:        kind,
		Timestamp:   s.now(),
	}
	s.index(in)
	s.stats[contentID] = s.recomputeLocked(contentID)
	s.notify(ctx, in)

	if err := s.store.Put(ctx, in); err != nil {
		return true, s.stats[contentID], fmt.Errorf("%w: put %s: %v", ErrStorage, kind, err)
	}
	return true, s.stats[contentID], nil
}

// View records a view for (userID, contentID). Repeat views leave the ledger
// untouched, so view counts are idempotent per user, but the sink is still
// notified so watch-duration updates reach the profile.
func (s *Service) View(ctx context.Context, userID, contentID string, contentType catalog.ContentType, durationSeconds int, completed bool) (Stats, error) {
	if err := validateIDs(userID, contentID); err != nil {
		return Stats{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, already := s.views[viewKey(userID, contentID)]; already {
		repeat := s.entries[id]
		if durationSeconds > repeat.Metadata.DurationSeconds {
			repeat.Metadata.DurationSeconds = durationSeconds
		}
		repeat.Metadata.Completed = repeat.Metadata.Completed || completed

		// Persist the merged entry so a replay carries the same duration
		// and completion the sink has seen.
		s.entries[id] = repeat
		s.notify(ctx, repeat)

		if err := s.store.Put(ctx, repeat); err != nil {
			return s.statsLocked(contentID), fmt.Errorf("%w: put view: %v", ErrStorage, err)
		}
		return s.statsLocked(contentID), nil
	}

	in := Interaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		ContentID:   contentID,
		ContentType: contentType,
		Kind:        KindView,
		Timestamp:   s.now(),
		Metadata: Metadata{
			DurationSeconds: durationSeconds,
			Completed:       completed,
		},
	}
	s.index(in)
	s.stats[contentID] = s.recomputeLocked(contentID)
	s.notify(ctx, in)

	if err := s.store.Put(ctx, in); err != nil {
		return s.stats[contentID], fmt.Errorf("%w: put view: %v", ErrStorage, err)
	}
	return s.stats[contentID], nil
}

// Share records a share and returns the intent the caller should execute.
// Shares may repeat; every call appends a new ledger entry. The engine
// performs no network or UI action itself.
func (s *Service) Share(ctx context.Context, userID, contentID string, contentType catalog.ContentType, platform, shareURL, shareText string) (ShareIntent, Stats, error) {
	if err := validateIDs(userID, contentID); err != nil {
		return ShareIntent{}, Stats{}, err
	}

	intent := BuildShareIntent(platform, shareURL, shareText)

	s.mu.Lock()
	defer s.mu.Unlock()

	in := Interaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		ContentID:   contentID,
		ContentType: contentType,
		Kind:        KindShare,
		Timestamp:   s.now(),
		Metadata: Metadata{
			Platform:  platform,
			ShareURL:  shareURL,
			ShareText: shareText,
		},
	}
	s.index(in)
	s.stats[contentID] = s.recomputeLocked(contentID)
	s.notify(ctx, in)

	if err := s.store.Put(ctx, in); err != nil {
		return intent, s.stats[contentID], fmt.Errorf("%w: put share: %v", ErrStorage, err)
	}
	return intent, s.stats[contentID], nil
}

// Stats returns the cached engagement stats for a content id. Unknown ids
// yield zero stats, not an error.
func (s *Service) Stats(ctx context.Context, contentID string) (Stats, error) {
	if contentID == "" {
		return Stats{}, ErrEmptyContentID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsLocked(contentID), nil
}

// Trending returns all known content ids ordered by engagement descending.
// Ties keep first-seen insertion order; the sort is stable so the tie-break
// is deterministic.
func (s *Service) Trending(ctx context.Context, limit int) []TrendingEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]TrendingEntry, 0, len(s.seen))
	for _, contentID := range s.seen {
		entries = append(entries, TrendingEntry{
			ContentID: contentID,
			Stats:     s.statsLocked(contentID),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Stats.Engagement > entries[j].Stats.Engagement
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// ListFor returns all live ledger entries for a content id in insertion
// order.
func (s *Service) ListFor(ctx context.Context, contentID string) []Interaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byContent[contentID]
	out := make([]Interaction, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.entries[id])
	}
	return out
}

// index adds an entry to the in-memory indexes. Must hold the write lock.
func (s *Service) index(in Interaction) {
	if _, known := s.byContent[in.ContentID]; !known {
		s.seen = append(s.seen, in.ContentID)
	}

	s.entries[in.ID] = in
	s.byContent[in.ContentID] = append(s.byContent[in.ContentID], in.ID)
	metrics.LedgerEntries.Set(float64(len(s.entries)))

	switch {
	case in.Kind.Toggleable():
		s.toggles[toggleKey(in.UserID, in.ContentID, in.Kind)] = in.ID
	case in.Kind == KindView:
		s.views[viewKey(in.UserID, in.ContentID)] = in.ID
	}
}

// unindex removes an entry from the in-memory indexes. Must hold the write
// lock.
func (s *Service) unindex(id string) {
	in, ok := s.entries[id]
	if !ok {
		return
	}
	delete(s.entries, id)
	metrics.LedgerEntries.Set(float64(len(s.entries)))

	ids := s.byContent[in.ContentID]
	for i, existing := range ids {
		if existing == id {
			s.byContent[in.ContentID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}

	if in.Kind.Toggleable() {
		delete(s.toggles, toggleKey(in.UserID, in.ContentID, in.Kind))
	}
}

// recomputeLocked rescans the live entries for a content id and derives its
// stats. Must hold the write lock.
func (s *Service) recomputeLocked(contentID string) Stats {
	metrics.EngagementRecomputes.Inc()
	st := Stats{ContentID: contentID}
	for _, id := range s.byContent[contentID] {
		switch s.entries[id].Kind {
		case KindLike:
			st.Likes++
		case KindBookmark:
			st.Bookmarks++
		case KindShare:
			st.Shares++
		case KindView:
			st.Views++
		}
	}

	if st.Views > 0 {
		raw := float64(st.Likes+st.Bookmarks+st.Shares) / float64(st.Views) * 100
		st.Engagement = math.Round(raw*100) / 100
	}
	return st
}

// statsLocked returns the cached stats for a content id. Must hold at least
// the read lock.
func (s *Service) statsLocked(contentID string) Stats {
	if st, ok := s.stats[contentID]; ok {
		return st
	}
	return Stats{ContentID: contentID}
}

// notify forwards a newly recorded interaction to the event sink.
func (s *Service) notify(ctx context.Context, in Interaction) {
	if s.sink != nil {
		s.sink.InteractionRecorded(ctx, in)
	}
}

func validateIDs(userID, contentID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	if contentID == "" {
		return ErrEmptyContentID
	}
	return nil
}

func toggleKey(userID, contentID string, kind Kind) string {
	return userID + "\x00" + contentID + "\x00" + string(kind)
}

func viewKey(userID, contentID string) string {
	return userID + "\x00" + contentID
}
