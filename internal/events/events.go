// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

// Package events carries recorded interactions from the ledger to the
// slower consumers: profile updates and recommendation cache invalidation.
// The in-process bus is a Watermill gochannel Pub/Sub; an optional NATS
// JetStream forwarder mirrors the stream to external consumers.
package events

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/social"
)

// Topics on the interaction bus.
const (
	// TopicInteractions carries every newly recorded interaction.
	TopicInteractions = "interactions.recorded"

	// TopicPoison receives messages that failed all retries.
	TopicPoison = "dlq.interactions"
)

// InteractionEvent is the wire form of a recorded interaction.
type InteractionEvent struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	ContentID       string              `json:"content_id"`
	ContentType     catalog.ContentType `json:"content_type"`
	Kind            social.Kind         `json:"kind"`
	Timestamp       time.Time           `json:"timestamp"`
	DurationSeconds int                 `json:"duration_seconds,omitempty"`
	Completed       bool                `json:"completed,omitempty"`
}

// Validate checks the fields required to apply the event downstream.
func (e *InteractionEvent) Validate() error {
	if e.UserID == "" {
		return fmt.Errorf("event missing user id")
	}
	if e.ContentID == "" {
		return fmt.Errorf("event missing content id")
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("event has unknown kind %q", e.Kind)
	}
	return nil
}

// FromInteraction converts a ledger entry into its wire form.
func FromInteraction(in social.Interaction) InteractionEvent {
	return InteractionEvent{
		ID:              in.ID,
		UserID:          in.UserID,
		ContentID:       in.ContentID,
		ContentType:     in.ContentType,
		Kind:            in.Kind,
		Timestamp:       in.Timestamp,
		DurationSeconds: in.Metadata.DurationSeconds,
		Completed:       in.Metadata.Completed,
	}
}

// Serializer handles event encoding/decoding for bus messages.
type Serializer struct{}

// NewSerializer creates a new serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Marshal converts an event to JSON bytes, validating it first.
func (s *Serializer) Marshal(event *InteractionEvent) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal converts JSON bytes to an event.
func (s *Serializer) Unmarshal(data []byte) (*InteractionEvent, error) {
	var event InteractionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &event, nil
}
