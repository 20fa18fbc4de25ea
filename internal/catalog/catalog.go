// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

// Package catalog defines the content catalog boundary.
//
// The catalog is an external collaborator: it supplies the immutable
// per-snapshot list of content items the engine ranks. Pulse never authors,
// stores long-term, or renders content; it only reads snapshots through the
// Catalog interface. Two adapters are provided: an in-memory snapshot used by
// tests and embedded deployments, and an HTTP adapter that pulls snapshots
// from an upstream content service.
package catalog

import (
	"context"
	"time"
)

// ContentType classifies a content item.
type ContentType string

// Known content types. The engine treats the type as an opaque label for
// matching purposes, so unknown values pass through unmodified.
const (
	TypeArticle    ContentType = "article"
	TypeVideo      ContentType = "video"
	TypePodcast    ContentType = "podcast"
	TypeGallery    ContentType = "gallery"
	TypeNewsletter ContentType = "newsletter"
)

// Metrics holds aggregate counters for a content item as reported by the
// upstream catalog. Engagement is a derived popularity score maintained by
// the upstream, distinct from the live stats the social package computes.
type Metrics struct {
	Views      int     `json:"views"`
	Likes      int     `json:"likes"`
	Shares     int     `json:"shares"`
	Comments   int     `json:"comments"`
	Rating     float64 `json:"rating"`
	Engagement float64 `json:"engagement"`
}

// ContentItem is an immutable snapshot of a piece of publishable content.
// Items are read-only to the engine within one scoring pass.
type ContentItem struct {
	ID          string      `json:"id"`
	Type        ContentType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Thumbnail   string      `json:"thumbnail,omitempty"`
	PublishedAt time.Time   `json:"published_at"`
	Author      string      `json:"author,omitempty"`
	Category    string      `json:"category,omitempty"`
	Tags        []string    `json:"tags"`
	Metrics     Metrics     `json:"metrics"`
}

// Catalog supplies content item snapshots to the engine.
type Catalog interface {
	// List returns the current content snapshot.
	List(ctx context.Context) ([]ContentItem, error)

	// Get resolves a single item by id. The boolean reports whether the id
	// exists in the current snapshot; absence is not an error.
	Get(ctx context.Context, id string) (ContentItem, bool, error)
}
