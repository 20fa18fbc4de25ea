// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/experiment"
	"github.com/pulsekit/pulse/internal/profile"
	"github.com/pulsekit/pulse/internal/recommend"
	"github.com/pulsekit/pulse/internal/social"
)

// testServer wires a full in-memory stack behind the real route tree.
type testServer struct {
	mux    http.Handler
	social *social.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	socialSvc, err := social.NewService(ctx, social.NewMemoryStore(), zerolog.Nop())
	if err != nil {
		t.Fatalf("social.NewService: %v", err)
	}

	profiles, err := profile.NewStore(ctx, profile.NewMemoryBackend(), zerolog.Nop())
	if err != nil {
		t.Fatalf("profile.NewStore: %v", err)
	}

	cat := catalog.NewMemory([]catalog.ContentItem{
		{ID: "c1", Type: catalog.TypeArticle, Title: "One", Category: "engineering",
			PublishedAt: time.Now().Add(-24 * time.Hour), Metrics: catalog.Metrics{Views: 100, Rating: 4}},
		{ID: "c2", Type: catalog.TypeVideo, Title: "Two", Category: "media",
			PublishedAt: time.Now().Add(-48 * time.Hour), Metrics: catalog.Metrics{Views: 50, Rating: 3}},
	})

	engine, err := recommend.NewEngine(nil, cat, profiles, zerolog.Nop())
	if err != nil {
		t.Fatalf("recommend.NewEngine: %v", err)
	}

	experiments, err := experiment.NewEvaluator(ctx, experiment.NewMemoryBackend(), zerolog.Nop())
	if err != nil {
		t.Fatalf("experiment.NewEvaluator: %v", err)
	}

	handler := NewHandler(socialSvc, profiles, engine, experiments, cat)
	mwConfig := DefaultChiMiddlewareConfig()
	mwConfig.RateLimitDisabled = true
	router := NewRouter(handler, NewChiMiddleware(mwConfig))

	return &testServer{mux: router.Setup(), social: socialSvc}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return resp
}

func TestSocialLikeToggle(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]interface{}{"user_id": "u1", "content_id": "c1", "content_type": "article"}

	rec := ts.do(t, http.MethodPost, "/api/v1/social/like", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	if resp.Status != "ok" {
		t.Errorf("envelope status = %q", resp.Status)
	}

	var toggle ToggleResponse
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &toggle); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !toggle.Active || toggle.Stats.Likes != 1 {
		t.Errorf("toggle = %+v, want active with 1 like", toggle)
	}

	// Second like removes the first.
	rec = ts.do(t, http.MethodPost, "/api/v1/social/like", body)
	resp = decodeEnvelope(t, rec)
	raw, _ = json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &toggle); err != nil {
		t.Fatal(err)
	}
	if toggle.Active || toggle.Stats.Likes != 0 {
		t.Errorf("second toggle = %+v, want inactive with 0 likes", toggle)
	}
}

func TestSocialValidationRejectsBeforeMutation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		path string
		body map[string]interface{}
	}{
		{"like missing user", "/api/v1/social/like", map[string]interface{}{"content_id": "c1"}},
		{"view missing content", "/api/v1/social/view", map[string]interface{}{"user_id": "u1"}},
		{"bad content type", "/api/v1/social/like", map[string]interface{}{"user_id": "u1", "content_id": "c1", "content_type": "hologram"}},
		{"share bad url", "/api/v1/social/share", map[string]interface{}{"user_id": "u1", "content_id": "c1", "share_url": "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			resp := decodeEnvelope(t, rec)
			if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("error = %+v", resp.Error)
			}
		})
	}

	// Nothing was recorded by the rejected calls.
	stats, err := ts.social.Stats(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Likes != 0 && stats.Views != 0 {
		t.Errorf("stats after rejected calls = %+v", stats)
	}
}

func TestSocialViewAndStats(t *testing.T) {
	ts := newTestServer(t)
	view := map[string]interface{}{"user_id": "u1", "content_id": "c1", "content_type": "article", "duration_seconds": 30}

	for i := 0; i < 3; i++ {
		rec := ts.do(t, http.MethodPost, "/api/v1/social/view", view)
		if rec.Code != http.StatusOK {
			t.Fatalf("view %d status = %d", i, rec.Code)
		}
	}

	rec := ts.do(t, http.MethodGet, "/api/v1/social/stats/c1", nil)
	resp := decodeEnvelope(t, rec)
	var stats social.Stats
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Views != 1 {
		t.Errorf("views = %d, want 1 (idempotent per user)", stats.Views)
	}
}

func TestSocialShareReturnsIntent(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]interface{}{
		"user_id": "u1", "content_id": "c1", "content_type": "article",
		"platform": "twitter", "share_url": "https://example.com/c1", "share_text": "Read this",
	}

	rec := ts.do(t, http.MethodPost, "/api/v1/social/share", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	var share ShareResponse
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &share); err != nil {
		t.Fatal(err)
	}
	if share.Intent.Action != social.ActionOpenURL {
		t.Errorf("intent action = %q", share.Intent.Action)
	}
	if share.Stats.Shares != 1 {
		t.Errorf("shares = %d, want 1", share.Stats.Shares)
	}
}

func TestSocialTrending(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodPost, "/api/v1/social/view", map[string]interface{}{"user_id": "u1", "content_id": "c1"})
	ts.do(t, http.MethodPost, "/api/v1/social/like", map[string]interface{}{"user_id": "u1", "content_id": "c1"})
	ts.do(t, http.MethodPost, "/api/v1/social/view", map[string]interface{}{"user_id": "u1", "content_id": "c2"})

	rec := ts.do(t, http.MethodGet, "/api/v1/social/trending", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	var entries []social.TrendingEntry
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].ContentID != "c1" {
		t.Errorf("trending = %+v, want c1 first", entries)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/social/trending?limit=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/recommendations/user/u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	var recs []recommend.Recommendation
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) == 0 {
		t.Error("no recommendations for cold-start user")
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/recommendations/user/u1?limit=-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative limit status = %d, want 400", rec.Code)
	}
}

func TestPersonalizedFeedEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/recommendations/user/u1/feed?content_type=video", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	var items []catalog.ContentItem
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatal(err)
	}
	for _, item := range items {
		if item.Type != catalog.TypeVideo {
			t.Errorf("item %s type %s escaped the filter", item.ID, item.Type)
		}
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/recommendations/user/u1/feed?published_after=yesterday", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", rec.Code)
	}
}

func TestExperimentEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/experiment/variant/u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("variant status = %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	var variant VariantResponse
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &variant); err != nil {
		t.Fatal(err)
	}
	if variant.Variant != experiment.Assign("u1") {
		t.Errorf("variant = %s, want deterministic assignment", variant.Variant)
	}

	// Repeat lookups return the same arm.
	rec2 := ts.do(t, http.MethodGet, "/api/v1/experiment/variant/u1", nil)
	resp2 := decodeEnvelope(t, rec2)
	var variant2 VariantResponse
	raw2, _ := json.Marshal(resp2.Data)
	_ = json.Unmarshal(raw2, &variant2)
	if variant2.Variant != variant.Variant {
		t.Error("variant flapped between requests")
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/experiment/conversion",
		map[string]interface{}{"user_id": "u1", "converted": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("conversion status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/experiment/conversion", map[string]interface{}{"converted": true})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing user conversion status = %d, want 400", rec.Code)
	}

	// With almost no users the winner is an insufficient sample, served as
	// a normal 200.
	rec = ts.do(t, http.MethodGet, "/api/v1/experiment/winner", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("winner status = %d", rec.Code)
	}
	resp = decodeEnvelope(t, rec)
	var result experiment.Result
	raw, _ = json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatal(err)
	}
	if result.Winner != experiment.VariantNone || result.Message != "insufficient sample" {
		t.Errorf("winner = %+v", result)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready", "/api/v1/health/"} {
		rec := ts.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}

func TestResponseEnvelopeAndHeaders(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/social/trending", nil)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("missing ETag header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}

	resp := decodeEnvelope(t, rec)
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Metadata.Timestamp.IsZero() {
		t.Error("metadata timestamp not set")
	}
}

func TestMalformedBodyRejected(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/social/like", bytes.NewReader([]byte("{broken")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestExperimentRoutesAbsentWhenDisabled(t *testing.T) {
	ctx := context.Background()

	socialSvc, err := social.NewService(ctx, social.NewMemoryStore(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	profiles, err := profile.NewStore(ctx, profile.NewMemoryBackend(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	cat := catalog.NewMemory(nil)
	engine, err := recommend.NewEngine(nil, cat, profiles, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	// A nil evaluator keeps the experiment group off the route tree.
	handler := NewHandler(socialSvc, profiles, engine, nil, cat)
	mwConfig := DefaultChiMiddlewareConfig()
	mwConfig.RateLimitDisabled = true
	mux := NewRouter(handler, NewChiMiddleware(mwConfig)).Setup()

	for _, path := range []string{
		"/api/v1/experiment/variant/u1",
		"/api/v1/experiment/winner",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", path, rec.Code)
		}
	}

	// The rest of the surface keeps serving.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}
