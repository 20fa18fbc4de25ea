// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/metrics"
	"github.com/pulsekit/pulse/internal/social"
)

// mockProfiles records Apply and RecordView calls.
type mockProfiles struct {
	mu       sync.Mutex
	applied  []social.Interaction
	views    []string
	applyErr error
}

func (m *mockProfiles) Apply(ctx context.Context, userID string, in social.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}
	m.applied = append(m.applied, in)
	return nil
}

func (m *mockProfiles) RecordView(ctx context.Context, userID, contentID string, contentType catalog.ContentType, durationSeconds int, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views = append(m.views, userID+"/"+contentID)
	return nil
}

// mockCache records invalidated users.
type mockCache struct {
	mu    sync.Mutex
	users []string
}

func (m *mockCache) InvalidateUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, userID)
}

// capturingPublisher collects published messages per topic.
type capturingPublisher struct {
	mu     sync.Mutex
	msgs   map[string][]*message.Message
	pubErr error
}

func newCapturingPublisher() *capturingPublisher {
	return &capturingPublisher{msgs: make(map[string][]*message.Message)}
}

func (c *capturingPublisher) Publish(topic string, messages ...*message.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pubErr != nil {
		return c.pubErr
	}
	c.msgs[topic] = append(c.msgs[topic], messages...)
	return nil
}

func (c *capturingPublisher) Close() error { return nil }

func (c *capturingPublisher) count(topic string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs[topic])
}

func marshalEvent(t *testing.T, event InteractionEvent) []byte {
	t.Helper()
	data, err := NewSerializer().Marshal(&event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return data
}

func testRouter(t *testing.T, profiles ProfileApplier, cache CacheInvalidator) *Router {
	t.Helper()
	bus := NewBus(DefaultBusConfig(), watermill.NopLogger{})
	t.Cleanup(func() { _ = bus.Close() })

	r, err := NewRouter(DefaultRouterConfig(), bus.Subscriber(), nil, profiles, cache, watermill.NopLogger{})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestHandleInteractionView(t *testing.T) {
	profiles := &mockProfiles{}
	cache := &mockCache{}
	r := testRouter(t, profiles, cache)

	payload := marshalEvent(t, InteractionEvent{
		ID:              "i1",
		UserID:          "u1",
		ContentID:       "c1",
		ContentType:     catalog.TypeVideo,
		Kind:            social.KindView,
		Timestamp:       time.Now(),
		DurationSeconds: 30,
	})

	if err := r.handleInteraction(message.NewMessage("m1", payload)); err != nil {
		t.Fatalf("handleInteraction: %v", err)
	}

	if len(profiles.views) != 1 || profiles.views[0] != "u1/c1" {
		t.Errorf("views = %v", profiles.views)
	}
	if len(profiles.applied) != 0 {
		t.Errorf("view event routed to Apply: %v", profiles.applied)
	}
	if len(cache.users) != 1 || cache.users[0] != "u1" {
		t.Errorf("invalidated = %v, want [u1]", cache.users)
	}
}

func TestHandleInteractionLike(t *testing.T) {
	profiles := &mockProfiles{}
	cache := &mockCache{}
	r := testRouter(t, profiles, cache)

	payload := marshalEvent(t, InteractionEvent{
		ID:        "i2",
		UserID:    "u1",
		ContentID: "c1",
		Kind:      social.KindLike,
		Timestamp: time.Now(),
	})

	if err := r.handleInteraction(message.NewMessage("m2", payload)); err != nil {
		t.Fatalf("handleInteraction: %v", err)
	}

	if len(profiles.applied) != 1 || profiles.applied[0].Kind != social.KindLike {
		t.Errorf("applied = %v", profiles.applied)
	}
	if len(cache.users) != 1 {
		t.Errorf("cache not invalidated")
	}
}

func TestHandleInteractionRejectsBadPayloads(t *testing.T) {
	profiles := &mockProfiles{}
	r := testRouter(t, profiles, &mockCache{})

	tests := []struct {
		name    string
		payload []byte
	}{
		{"garbage", []byte("{nope")},
		{"invalid event", []byte(`{"user_id":"","content_id":"c1","kind":"like"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.handleInteraction(message.NewMessage("m", tt.payload)); err == nil {
				t.Error("expected error")
			}
		})
	}
	if len(profiles.applied) != 0 || len(profiles.views) != 0 {
		t.Error("bad payloads reached the profile store")
	}
}

func TestHandleInteractionPropagatesApplyError(t *testing.T) {
	profiles := &mockProfiles{applyErr: errors.New("backend down")}
	cache := &mockCache{}
	r := testRouter(t, profiles, cache)

	payload := marshalEvent(t, InteractionEvent{
		ID:        "i3",
		UserID:    "u1",
		ContentID: "c1",
		Kind:      social.KindShare,
		Timestamp: time.Now(),
	})

	if err := r.handleInteraction(message.NewMessage("m3", payload)); err == nil {
		t.Fatal("expected apply error to propagate for retry")
	}
	// The cache must not be invalidated when the apply failed.
	if len(cache.users) != 0 {
		t.Errorf("cache invalidated despite failure: %v", cache.users)
	}
}

func TestRouterEndToEnd(t *testing.T) {
	profiles := &mockProfiles{}
	cache := &mockCache{}

	bus := NewBus(DefaultBusConfig(), watermill.NopLogger{})
	defer func() { _ = bus.Close() }()

	r, err := NewRouter(DefaultRouterConfig(), bus.Subscriber(), bus.Publisher(), profiles, cache, watermill.NopLogger{})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	<-r.Running()

	publisher := NewPublisher(bus.Publisher(), zerolog.Nop())
	publisher.InteractionRecorded(ctx, social.Interaction{
		ID:          "i1",
		UserID:      "u1",
		ContentID:   "c1",
		ContentType: catalog.TypeArticle,
		Kind:        social.KindLike,
		Timestamp:   time.Now(),
	})

	deadline := time.After(5 * time.Second)
	for {
		profiles.mu.Lock()
		applied := len(profiles.applied)
		profiles.mu.Unlock()
		if applied == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("event never reached the profile applier")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("router run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("router did not stop")
	}
}

func TestPublisherDropsAfterClose(t *testing.T) {
	capture := newCapturingPublisher()
	p := NewPublisher(capture, zerolog.Nop())

	in := social.Interaction{
		ID: "i1", UserID: "u1", ContentID: "c1",
		Kind: social.KindLike, Timestamp: time.Now(),
	}

	p.InteractionRecorded(context.Background(), in)
	if got := capture.count(TopicInteractions); got != 1 {
		t.Fatalf("published = %d, want 1", got)
	}

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	p.InteractionRecorded(context.Background(), in)
	if got := capture.count(TopicInteractions); got != 1 {
		t.Errorf("published after close = %d, want still 1", got)
	}
}

func TestPublisherSwallowsPublishErrors(t *testing.T) {
	capture := newCapturingPublisher()
	capture.pubErr = errors.New("bus down")
	p := NewPublisher(capture, zerolog.Nop())

	// Must not panic or block; the failure is logged and dropped.
	p.InteractionRecorded(context.Background(), social.Interaction{
		ID: "i1", UserID: "u1", ContentID: "c1",
		Kind: social.KindLike, Timestamp: time.Now(),
	})
}

func TestHandleInteractionCountsProcessed(t *testing.T) {
	profiles := &mockProfiles{}
	r := testRouter(t, profiles, &mockCache{})

	processed := testutil.ToFloat64(metrics.EventsProcessed)

	payload := marshalEvent(t, InteractionEvent{
		ID:          "i1",
		UserID:      "u1",
		ContentID:   "c1",
		ContentType: catalog.TypeArticle,
		Kind:        social.KindLike,
		Timestamp:   time.Now(),
	})
	if err := r.handleInteraction(message.NewMessage("m1", payload)); err != nil {
		t.Fatalf("handleInteraction: %v", err)
	}

	if got := testutil.ToFloat64(metrics.EventsProcessed) - processed; got != 1 {
		t.Errorf("processed delta = %v, want 1", got)
	}

	// A rejected payload must not count as processed.
	before := testutil.ToFloat64(metrics.EventsProcessed)
	if err := r.handleInteraction(message.NewMessage("m2", []byte("{broken"))); err == nil {
		t.Fatal("broken payload accepted")
	}
	if got := testutil.ToFloat64(metrics.EventsProcessed) - before; got != 0 {
		t.Errorf("processed delta after reject = %v, want 0", got)
	}
}

func TestPublisherCountsPublished(t *testing.T) {
	sink := newCapturingPublisher()
	p := NewPublisher(sink, zerolog.Nop())

	published := testutil.ToFloat64(metrics.EventsPublished)

	p.InteractionRecorded(context.Background(), social.Interaction{
		ID:          "i1",
		UserID:      "u1",
		ContentID:   "c1",
		ContentType: catalog.TypeArticle,
		Kind:        social.KindLike,
		Timestamp:   time.Now(),
	})

	if got := testutil.ToFloat64(metrics.EventsPublished) - published; got != 1 {
		t.Errorf("published delta = %v, want 1", got)
	}

	// A failing bus publish is dropped and must not count.
	sink.pubErr = errors.New("bus down")
	before := testutil.ToFloat64(metrics.EventsPublished)
	p.InteractionRecorded(context.Background(), social.Interaction{
		ID:          "i2",
		UserID:      "u1",
		ContentID:   "c1",
		ContentType: catalog.TypeArticle,
		Kind:        social.KindLike,
		Timestamp:   time.Now(),
	})
	if got := testutil.ToFloat64(metrics.EventsPublished) - before; got != 0 {
		t.Errorf("published delta after failure = %v, want 0", got)
	}
}
