package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rankwatch/internal/store"
	"rankwatch/internal/types"
)

func notifyConfig(mode string, limit int) *store.Config {
	cfg := &store.Config{}
	cfg.Mode = mode
	cfg.Report.MessageLimit = limit
	cfg.Report.TimeoutSeconds = 5
	return cfg
}

func sampleReport() *types.Report {
	return &types.Report{
		RunID:           "run-1",
		GeneratedAt:     time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC),
		TotalKeywords:   2,
		QualifyingCount: 1,
		Results: []types.AnalysisResult{
			{
				Keyword: "seo tools",
				Verdict: types.DeclineVerdict{
					Keyword:   "seo tools",
					Previous:  3,
					Current:   7,
					Qualifies: true,
					Reason:    types.ReasonRankWorsened,
				},
				Narrative: "- " + strings.Repeat("competitor gap ", 15),
			},
		},
	}
}

func TestNotifyPostsChunks(t *testing.T) {
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()
	t.Setenv("DISCORD_WEBHOOK_URL", server.URL)

	n := NewWebhookNotifier(notifyConfig("LIVE", 200))
	if err := n.Notify(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(bodies) < 2 {
		t.Fatalf("Expected multiple chunks posted, got %d", len(bodies))
	}
	for i, body := range bodies {
		var payload struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			t.Fatalf("Chunk %d is not valid JSON: %v", i, err)
		}
		if payload.Content == "" {
			t.Errorf("Chunk %d has empty content", i)
		}
	}
	if !strings.Contains(bodies[0], "SEO Rank Report") {
		t.Error("Expected first chunk to carry the report header")
	}
}

func TestNotifyDryRunSkipsPost(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()
	t.Setenv("DISCORD_WEBHOOK_URL", server.URL)

	n := NewWebhookNotifier(notifyConfig("DRY_RUN", 2000))
	if err := n.Notify(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if requests != 0 {
		t.Errorf("Expected no webhook calls in DRY_RUN, got %d", requests)
	}
}

func TestNotifyFailureWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()
	t.Setenv("DISCORD_WEBHOOK_URL", server.URL)

	n := NewWebhookNotifier(notifyConfig("LIVE", 2000))
	err := n.Notify(context.Background(), sampleReport())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !errors.Is(err, types.ErrNotificationFailure) {
		t.Errorf("Expected ErrNotificationFailure, got %v", err)
	}
}

func TestNotifyMissingWebhookURL(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK_URL", "")

	n := NewWebhookNotifier(notifyConfig("LIVE", 2000))
	err := n.Notify(context.Background(), sampleReport())
	if !errors.Is(err, types.ErrNotificationFailure) {
		t.Errorf("Expected ErrNotificationFailure, got %v", err)
	}
}
