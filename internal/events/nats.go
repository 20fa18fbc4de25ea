// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
)

// NATSConfig holds settings for the optional JetStream mirror of the
// interaction stream.
type NATSConfig struct {
	// Enabled turns the external mirror on.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server address.
	URL string `koanf:"url"`

	// Subject is the JetStream subject interactions are mirrored to.
	Subject string `koanf:"subject"`

	MaxReconnects   int           `koanf:"max_reconnects"`
	ReconnectWait   time.Duration `koanf:"reconnect_wait"`
	ReconnectBuffer int           `koanf:"reconnect_buffer"`
}

// DefaultNATSConfig returns defaults for the JetStream mirror.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		Enabled:         false,
		URL:             natsgo.DefaultURL,
		Subject:         "pulse.interactions",
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
		ReconnectBuffer: 8 * 1024 * 1024,
	}
}

// NewNATSPublisher creates a JetStream publisher with reconnection handling
// and message id tracking so broker-side deduplication works.
func NewNATSPublisher(cfg NATSConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}
	return pub, nil
}

// AddMirror registers a passthrough handler that republishes the in-process
// interaction stream to an external publisher.
func (r *Router) AddMirror(subscriber message.Subscriber, publisher message.Publisher, subject string) {
	r.router.AddHandler(
		"interaction-mirror",
		TopicInteractions,
		subscriber,
		subject,
		publisher,
		func(msg *message.Message) ([]*message.Message, error) {
			out := message.NewMessage(msg.UUID, msg.Payload)
			out.Metadata = msg.Metadata
			return []*message.Message{out}, nil
		},
	)
}
