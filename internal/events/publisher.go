// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package events

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/pulsekit/pulse/internal/metrics"
	"github.com/pulsekit/pulse/internal/social"
)

// Publisher turns recorded interactions into bus messages. It implements
// the ledger's event sink; publish failures are logged and dropped so a
// slow bus never blocks or fails an interaction write.
type Publisher struct {
	publisher  message.Publisher
	serializer *Serializer
	breaker    *gobreaker.CircuitBreaker[any]
	logger     zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a publisher on the given bus publisher.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPublisher(pub message.Publisher, logger zerolog.Logger) *Publisher {
	return &Publisher{
		publisher:  pub,
		serializer: NewSerializer(),
		logger:     logger.With().Str("component", "events.publisher").Logger(),
	}
}

// SetCircuitBreaker protects publish calls with a circuit breaker. Useful
// when the publisher fronts an external broker rather than the in-process
// bus.
func (p *Publisher) SetCircuitBreaker(cb *gobreaker.CircuitBreaker[any]) {
	p.breaker = cb
}

// InteractionRecorded publishes the interaction on the bus. Implements
// social.EventSink.
func (p *Publisher) InteractionRecorded(ctx context.Context, in social.Interaction) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return
	}
	p.mu.RUnlock()

	event := FromInteraction(in)
	data, err := p.serializer.Marshal(&event)
	if err != nil {
		p.logger.Error().Err(err).
			Str("interaction_id", in.ID).
			Msg("failed to serialize interaction event")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)

	if p.breaker != nil {
		_, err = p.breaker.Execute(func() (any, error) {
			return nil, p.publisher.Publish(TopicInteractions, msg)
		})
	} else {
		err = p.publisher.Publish(TopicInteractions, msg)
	}
	if err != nil {
		p.logger.Error().Err(err).
			Str("interaction_id", in.ID).
			Str("kind", string(in.Kind)).
			Msg("failed to publish interaction event")
		return
	}
	metrics.EventsPublished.Inc()
}

// Close stops the publisher; further events are dropped silently.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
