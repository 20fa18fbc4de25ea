// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// BusConfig holds settings for the in-process interaction bus.
type BusConfig struct {
	// OutputBuffer is the per-subscriber channel depth. Publishing blocks
	// once a subscriber falls this far behind.
	OutputBuffer int64 `koanf:"output_buffer"`

	// Persistent replays the topic backlog to late subscribers.
	Persistent bool `koanf:"persistent"`
}

// DefaultBusConfig returns production defaults for the bus.
func DefaultBusConfig() BusConfig {
	return BusConfig{
		OutputBuffer: 1024,
		Persistent:   false,
	}
}

// Bus is the in-process Pub/Sub the ledger publishes to and the profile
// updater subscribes from.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// NewBus creates an in-process bus.
func NewBus(cfg BusConfig, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.OutputBuffer,
		Persistent:          cfg.Persistent,
	}, logger)

	return &Bus{pubsub: pubsub, logger: logger}
}

// Publisher returns the publish side of the bus.
func (b *Bus) Publisher() message.Publisher {
	return b.pubsub
}

// Subscriber returns the subscribe side of the bus.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Close shuts the bus down. In-flight messages are dropped.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
