// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package services

import (
	"context"
	"fmt"
)

// EventRouter matches the events router's lifecycle.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventRouterService runs the interaction bus consumer router under
// supervision. The router's Run blocks until context cancellation, which
// maps directly onto suture's Serve contract.
type EventRouterService struct {
	router EventRouter
}

// NewEventRouterService wraps the router for supervision.
func NewEventRouterService(router EventRouter) *EventRouterService {
	return &EventRouterService{router: router}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	if err := s.router.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("event router failed: %w", err)
	}
	return ctx.Err()
}

// String names the service in supervisor logs.
func (s *EventRouterService) String() string {
	return "event-router"
}
