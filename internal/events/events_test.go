// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package events

import (
	"testing"
	"time"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/social"
)

func TestSerializerRoundTrip(t *testing.T) {
	s := NewSerializer()

	event := &InteractionEvent{
		ID:              "i1",
		UserID:          "u1",
		ContentID:       "c1",
		ContentType:     catalog.TypeVideo,
		Kind:            social.KindView,
		Timestamp:       time.Now().UTC().Truncate(time.Second),
		DurationSeconds: 90,
		Completed:       true,
	}

	data, err := s.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	decoded, err := s.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.ID != event.ID || decoded.UserID != event.UserID ||
		decoded.Kind != event.Kind || decoded.DurationSeconds != 90 || !decoded.Completed {
		t.Errorf("decoded = %+v, want %+v", decoded, event)
	}
	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("timestamp = %v, want %v", decoded.Timestamp, event.Timestamp)
	}
}

func TestSerializerRejectsInvalidEvents(t *testing.T) {
	s := NewSerializer()

	tests := []struct {
		name  string
		event InteractionEvent
	}{
		{"missing user", InteractionEvent{ContentID: "c1", Kind: social.KindLike}},
		{"missing content", InteractionEvent{UserID: "u1", Kind: social.KindLike}},
		{"unknown kind", InteractionEvent{UserID: "u1", ContentID: "c1", Kind: "clap"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Marshal(&tt.event); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSerializerUnmarshalGarbage(t *testing.T) {
	s := NewSerializer()
	if _, err := s.Unmarshal([]byte("{not json")); err == nil {
		t.Error("expected unmarshal error")
	}
}

func TestFromInteraction(t *testing.T) {
	in := social.Interaction{
		ID:          "i1",
		UserID:      "u1",
		ContentID:   "c1",
		ContentType: catalog.TypeVideo,
		Kind:        social.KindView,
		Timestamp:   time.Now(),
		Metadata: social.Metadata{
			DurationSeconds: 45,
			Completed:       true,
		},
	}

	event := FromInteraction(in)
	if event.ID != "i1" || event.UserID != "u1" || event.ContentID != "c1" {
		t.Errorf("event = %+v", event)
	}
	if event.DurationSeconds != 45 || !event.Completed {
		t.Errorf("view metadata not carried: %+v", event)
	}
}
