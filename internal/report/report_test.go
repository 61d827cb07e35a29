package report

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"rankwatch/internal/types"
)

func qualifyingVerdict(keyword string, previous, current types.Rank) types.DeclineVerdict {
	reason := types.ReasonRankWorsened
	if current == types.Unranked {
		reason = types.ReasonNewlyOutOfTop10
	}
	return types.DeclineVerdict{
		Keyword:   keyword,
		Previous:  previous,
		Current:   current,
		Qualifies: true,
		Reason:    reason,
	}
}

func TestAssembleOrdersAndCounts(t *testing.T) {
	verdicts := []types.DeclineVerdict{
		qualifyingVerdict("alpha", 3, 7),
		{Keyword: "beta", Previous: 5, Current: 4, Reason: types.ReasonStableOrImproved},
		{Keyword: "gamma", Previous: 2, Current: 2, Reason: types.ReasonUnevaluated},
		qualifyingVerdict("delta", 8, types.Unranked),
	}
	analyses := map[string]types.AnalysisResult{
		"alpha": {
			Keyword:   "alpha",
			Verdict:   verdicts[0],
			Narrative: "- competitor has more depth",
		},
	}

	rep := Assemble("run-1", time.Now(), verdicts, analyses)

	if rep.TotalKeywords != 4 {
		t.Errorf("Expected 4 total keywords, got %d", rep.TotalKeywords)
	}
	if rep.QualifyingCount != 2 {
		t.Errorf("Expected 2 qualifying, got %d", rep.QualifyingCount)
	}
	if rep.Unevaluated != 1 {
		t.Errorf("Expected 1 unevaluated, got %d", rep.Unevaluated)
	}
	if len(rep.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(rep.Results))
	}
	if rep.Results[0].Keyword != "alpha" || rep.Results[1].Keyword != "delta" {
		t.Errorf("Expected results in verdict order, got %s, %s", rep.Results[0].Keyword, rep.Results[1].Keyword)
	}
	if !rep.Results[1].Failed() {
		t.Error("Expected placeholder result for missing analysis")
	}
	if rep.Results[1].FailureReason != "analysis unavailable" {
		t.Errorf("Expected placeholder failure reason, got '%s'", rep.Results[1].FailureReason)
	}
}

func TestFormatSingleChunk(t *testing.T) {
	generated := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	rep := types.Report{
		RunID:           "run-1",
		GeneratedAt:     generated,
		TotalKeywords:   5,
		QualifyingCount: 1,
		Results: []types.AnalysisResult{
			{
				Keyword: "seo tools",
				Verdict: qualifyingVerdict("seo tools", 3, 7),
				OwnURL:  "https://example.co.jp/blog",
				Competitors: []types.SerpEntry{
					{Position: 1, URL: "https://rival.com/guide", Title: "The Big Guide"},
					{Position: 2, URL: "https://other.com/post", Title: ""},
				},
				Narrative: "- competitor covers pricing\n- add an FAQ section",
			},
		},
	}

	chunks := Format(rep, DefaultMessageLimit)
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}

	text := chunks[0]
	for _, want := range []string{
		"SEO Rank Report",
		"Run: 2026-08-25T09:00:00Z (run_id: run-1)",
		"Checked 5 keywords: 1 qualifying declines, 0 unevaluated",
		"## seo tools",
		"Rank: 7 (previous: 3) - RANK_WORSENED",
		"- The Big Guide: https://rival.com/guide",
		"- N/A: https://other.com/post",
		"Gaps and actions:",
		"- competitor covers pricing",
		"- add an FAQ section",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected chunk to contain '%s'", want)
		}
	}
}

func TestFormatEmptyReport(t *testing.T) {
	rep := types.Report{
		RunID:         "run-2",
		GeneratedAt:   time.Now(),
		TotalKeywords: 3,
	}

	chunks := Format(rep, DefaultMessageLimit)
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], "No qualifying rank declines detected.") {
		t.Error("Expected empty-report notice")
	}
}

func TestFormatFailedAnalysisNotice(t *testing.T) {
	rep := types.Report{
		RunID:           "run-3",
		GeneratedAt:     time.Now(),
		TotalKeywords:   1,
		QualifyingCount: 1,
		Results: []types.AnalysisResult{
			{
				Keyword:       "seo tools",
				Verdict:       qualifyingVerdict("seo tools", 8, types.Unranked),
				FailureReason: "narrative generation failed",
			},
		},
	}

	chunks := Format(rep, DefaultMessageLimit)
	if !strings.Contains(chunks[0], "Rank: not found (previous: 8) - NEWLY_OUT_OF_TOP10") {
		t.Error("Expected unranked movement line")
	}
	if !strings.Contains(chunks[0], "(analysis unavailable: narrative generation failed)") {
		t.Error("Expected failure notice in section")
	}
}

func TestFormatSplitsOnSections(t *testing.T) {
	rep := types.Report{
		RunID:       "run-4",
		GeneratedAt: time.Now(),
	}
	for i := 0; i < 8; i++ {
		keyword := fmt.Sprintf("keyword %d", i)
		rep.Results = append(rep.Results, types.AnalysisResult{
			Keyword:   keyword,
			Verdict:   qualifyingVerdict(keyword, 3, 7),
			Narrative: "- " + strings.Repeat("gap ", 20),
		})
	}
	rep.TotalKeywords = len(rep.Results)
	rep.QualifyingCount = len(rep.Results)

	limit := 300
	chunks := Format(rep, limit)
	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if utf8.RuneCountInString(chunk) > limit {
			t.Errorf("Chunk %d exceeds limit: %d chars", i, utf8.RuneCountInString(chunk))
		}
	}
	// Sections never split mid-way, so every appearance of a keyword header
	// stays whole within one chunk.
	joined := strings.Join(chunks, "\n\n")
	for i := 0; i < 8; i++ {
		if !strings.Contains(joined, fmt.Sprintf("## keyword %d", i)) {
			t.Errorf("Expected keyword %d section to survive chunking", i)
		}
	}
}

func TestFormatTruncatesOversizeSection(t *testing.T) {
	rep := types.Report{
		RunID:           "run-5",
		GeneratedAt:     time.Now(),
		TotalKeywords:   1,
		QualifyingCount: 1,
		Results: []types.AnalysisResult{
			{
				Keyword:   "seo tools",
				Verdict:   qualifyingVerdict("seo tools", 3, 7),
				Narrative: "- " + strings.Repeat("very long gap analysis ", 50),
			},
		},
	}

	limit := 200
	chunks := Format(rep, limit)
	found := false
	for _, chunk := range chunks {
		if utf8.RuneCountInString(chunk) > limit {
			t.Errorf("Chunk exceeds limit: %d chars", utf8.RuneCountInString(chunk))
		}
		if strings.Contains(chunk, "... (truncated)") {
			found = true
		}
	}
	if !found {
		t.Error("Expected truncation marker in some chunk")
	}
}

func TestBullets(t *testing.T) {
	text := "- first gap\n• second gap\n\n* third gap\nplain line\n   "
	lines := Bullets(text)

	want := []string{"first gap", "second gap", "third gap", "plain line"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d: %v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Expected line %d to be '%s', got '%s'", i, want[i], lines[i])
		}
	}
}
