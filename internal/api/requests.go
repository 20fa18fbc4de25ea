// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package api

// InteractionRequest is the body of the like, bookmark, and view endpoints.
type InteractionRequest struct {
	UserID      string `json:"user_id" validate:"required,max=128"`
	ContentID   string `json:"content_id" validate:"required,max=128"`
	ContentType string `json:"content_type" validate:"omitempty,content_type"`

	// View-only fields.
	DurationSeconds int  `json:"duration_seconds" validate:"min=0"`
	Completed       bool `json:"completed"`
}

// ShareRequest is the body of the share endpoint.
type ShareRequest struct {
	UserID      string `json:"user_id" validate:"required,max=128"`
	ContentID   string `json:"content_id" validate:"required,max=128"`
	ContentType string `json:"content_type" validate:"omitempty,content_type"`
	Platform    string `json:"platform" validate:"max=32"`
	ShareURL    string `json:"share_url" validate:"omitempty,url"`
	ShareText   string `json:"share_text" validate:"max=512"`
}

// ConversionRequest is the body of the experiment conversion endpoint.
type ConversionRequest struct {
	UserID    string `json:"user_id" validate:"required,max=128"`
	Converted bool   `json:"converted"`
}
