// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package validation

import (
	"errors"
	"strings"
	"testing"
)

type interactionPayload struct {
	UserID      string `validate:"required,max=128"`
	ContentID   string `validate:"required"`
	ContentType string `validate:"omitempty,content_type"`
	Kind        string `validate:"omitempty,interaction_kind"`
}

func TestValidateStructValid(t *testing.T) {
	payload := interactionPayload{
		UserID:      "u1",
		ContentID:   "c1",
		ContentType: "article",
		Kind:        "like",
	}
	if err := ValidateStruct(&payload); err != nil {
		t.Errorf("ValidateStruct: %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	tests := []struct {
		name      string
		payload   interactionPayload
		wantField string
	}{
		{
			name:      "missing user id",
			payload:   interactionPayload{ContentID: "c1"},
			wantField: "UserID",
		},
		{
			name:      "missing content id",
			payload:   interactionPayload{UserID: "u1"},
			wantField: "ContentID",
		},
		{
			name:      "user id too long",
			payload:   interactionPayload{UserID: strings.Repeat("x", 200), ContentID: "c1"},
			wantField: "UserID",
		},
		{
			name:      "bad content type",
			payload:   interactionPayload{UserID: "u1", ContentID: "c1", ContentType: "hologram"},
			wantField: "ContentType",
		},
		{
			name:      "bad interaction kind",
			payload:   interactionPayload{UserID: "u1", ContentID: "c1", Kind: "clap"},
			wantField: "Kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.payload)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var ve *RequestValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err type = %T", err)
			}
			found := false
			for _, fe := range ve.Errors() {
				if fe.Field() == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("no field error for %s in %v", tt.wantField, ve.Error())
			}
		})
	}
}

func TestCustomValidatorsAcceptAllKnownValues(t *testing.T) {
	for _, kind := range []string{"like", "bookmark", "share", "view"} {
		payload := interactionPayload{UserID: "u1", ContentID: "c1", Kind: kind}
		if err := ValidateStruct(&payload); err != nil {
			t.Errorf("kind %q rejected: %v", kind, err)
		}
	}
	for _, ct := range []string{"article", "video", "podcast", "gallery", "newsletter"} {
		payload := interactionPayload{UserID: "u1", ContentID: "c1", ContentType: ct}
		if err := ValidateStruct(&payload); err != nil {
			t.Errorf("content type %q rejected: %v", ct, err)
		}
	}
}

func TestValidationErrorDetails(t *testing.T) {
	payload := interactionPayload{}
	err := ValidateStruct(&payload)

	var ve *RequestValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err type = %T", err)
	}

	details := ve.Details()
	if details == nil {
		t.Fatal("nil details")
	}
	// Two failed fields collapse into a fields list.
	if _, ok := details["fields"]; !ok {
		t.Errorf("details = %v, want fields list", details)
	}

	// A single failure reports the field directly.
	single := interactionPayload{UserID: "u1"}
	err = ValidateStruct(&single)
	if !errors.As(err, &ve) {
		t.Fatalf("err type = %T", err)
	}
	details = ve.Details()
	if details["field"] != "ContentID" {
		t.Errorf("single failure details = %v", details)
	}
}
