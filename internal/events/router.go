// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/metrics"
	"github.com/pulsekit/pulse/internal/social"
)

// ProfileApplier receives interaction events for a user's profile.
// Implemented by the profile store.
type ProfileApplier interface {
	Apply(ctx context.Context, userID string, in social.Interaction) error
	RecordView(ctx context.Context, userID, contentID string, contentType catalog.ContentType, durationSeconds int, completed bool) error
}

// CacheInvalidator drops cached recommendations for a user whose profile
// changed. Implemented by the recommendation engine.
type CacheInvalidator interface {
	InvalidateUser(userID string)
}

// RouterConfig holds settings for the consumer router.
type RouterConfig struct {
	CloseTimeout time.Duration `koanf:"close_timeout"`

	RetryMaxRetries      int           `koanf:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`
	RetryMultiplier      float64       `koanf:"retry_multiplier"`

	PoisonTopic string `koanf:"poison_topic"`
}

// DefaultRouterConfig returns production defaults for the router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      5,
		RetryInitialInterval: time.Second,
		RetryMaxInterval:     time.Minute,
		RetryMultiplier:      2.0,
		PoisonTopic:          TopicPoison,
	}
}

// Router consumes interaction events and applies them to user profiles,
// then invalidates the user's cached recommendations. Failed messages are
// retried with backoff and routed to the poison topic when exhausted, so a
// malformed event can never wedge the stream.
type Router struct {
	router     *message.Router
	serializer *Serializer
	profiles   ProfileApplier
	cache      CacheInvalidator
}

// NewRouter builds the consumer router and registers the profile updater
// handler on the given subscriber.
func NewRouter(
	cfg RouterConfig,
	subscriber message.Subscriber,
	poisonPublisher message.Publisher,
	profiles ProfileApplier,
	cache CacheInvalidator,
	logger watermill.LoggerAdapter,
) (*Router, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r := &Router{
		router:     wmRouter,
		serializer: NewSerializer(),
		profiles:   profiles,
		cache:      cache,
	}

	wmRouter.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	if poisonPublisher != nil && cfg.PoisonTopic != "" {
		poison, err := middleware.PoisonQueue(countingPoisonPublisher{poisonPublisher}, cfg.PoisonTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poison)
	}

	wmRouter.AddConsumerHandler(
		"profile-updater",
		TopicInteractions,
		subscriber,
		r.handleInteraction,
	)

	return r, nil
}

// handleInteraction applies one interaction event to the user's profile.
func (r *Router) handleInteraction(msg *message.Message) error {
	event, err := r.serializer.Unmarshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("decode interaction event: %w", err)
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid interaction event: %w", err)
	}

	ctx := msg.Context()

	if event.Kind == social.KindView {
		err = r.profiles.RecordView(ctx, event.UserID, event.ContentID, event.ContentType, event.DurationSeconds, event.Completed)
	} else {
		err = r.profiles.Apply(ctx, event.UserID, social.Interaction{
			ID:          event.ID,
			UserID:      event.UserID,
			ContentID:   event.ContentID,
			ContentType: event.ContentType,
			Kind:        event.Kind,
			Timestamp:   event.Timestamp,
		})
	}
	if err != nil {
		return fmt.Errorf("apply %s event for user %s: %w", event.Kind, event.UserID, err)
	}

	if r.cache != nil {
		r.cache.InvalidateUser(event.UserID)
	}
	metrics.EventsProcessed.Inc()
	return nil
}

// countingPoisonPublisher counts messages handed to the poison topic.
type countingPoisonPublisher struct {
	message.Publisher
}

func (p countingPoisonPublisher) Publish(topic string, msgs ...*message.Message) error {
	if err := p.Publisher.Publish(topic, msgs...); err != nil {
		return err
	}
	metrics.EventsPoisoned.Add(float64(len(msgs)))
	return nil
}

// Run starts the router and blocks until context cancellation or Close.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running returns a channel that closes once the router is consuming.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close gracefully stops the router, waiting up to CloseTimeout.
func (r *Router) Close() error {
	return r.router.Close()
}
