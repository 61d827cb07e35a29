package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"rankwatch/internal/store"
	"rankwatch/internal/types"
)

type stubSource struct {
	records []types.KeywordRecord
	err     error
}

func (s *stubSource) Load(ctx context.Context) ([]types.KeywordRecord, error) {
	return s.records, s.err
}

type stubFetcher struct {
	ranks   map[string]types.Rank
	failing map[string]bool
	calls   []string
}

func (s *stubFetcher) Lookup(ctx context.Context, keyword string) (types.RankObservation, error) {
	s.calls = append(s.calls, keyword)
	if s.failing[keyword] {
		return types.RankObservation{}, fmt.Errorf("lookup %q: %w: boom", keyword, types.ErrLookupFailure)
	}
	rank := s.ranks[keyword]
	obs := types.RankObservation{Keyword: keyword, Rank: rank}
	if rank.Ranked() {
		obs.OwnURL = "https://example.co.jp/page"
	}
	return obs, nil
}

type stubAnalyzer struct {
	failing map[string]bool
	calls   []string
}

func (s *stubAnalyzer) Analyze(ctx context.Context, verdict types.DeclineVerdict, obs types.RankObservation) (types.AnalysisResult, error) {
	s.calls = append(s.calls, verdict.Keyword)
	result := types.AnalysisResult{
		Keyword: verdict.Keyword,
		Verdict: verdict,
		OwnURL:  obs.OwnURL,
	}
	if s.failing[verdict.Keyword] {
		result.FailureReason = "narrative generation failed"
		return result, fmt.Errorf("analyze %q: %w: boom", verdict.Keyword, types.ErrAnalysisUnavailable)
	}
	result.Narrative = "- stub analysis"
	return result, nil
}

func (s *stubAnalyzer) AnalyzeOnDemand(ctx context.Context, keyword string) (types.AnalysisResult, error) {
	return types.AnalysisResult{}, errors.New("not used in batch runs")
}

func pipelineConfig(t *testing.T) *store.Config {
	t.Setenv("RANKWATCH_LOG_DIR", t.TempDir())
	cfg := &store.Config{}
	cfg.TopN = 10
	return cfg
}

func TestRunHappyPath(t *testing.T) {
	source := &stubSource{records: []types.KeywordRecord{
		{Keyword: "declining", PreviousRank: 3},
		{Keyword: "stable", PreviousRank: 5},
		{Keyword: "improving", PreviousRank: 9},
	}}
	fetcher := &stubFetcher{ranks: map[string]types.Rank{
		"declining": 8,
		"stable":    5,
		"improving": 2,
	}}
	analyzer := &stubAnalyzer{}

	p := New(pipelineConfig(t), source, fetcher, analyzer)
	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rep.TotalKeywords != 3 {
		t.Errorf("Expected 3 total keywords, got %d", rep.TotalKeywords)
	}
	if rep.QualifyingCount != 1 {
		t.Errorf("Expected 1 qualifying decline, got %d", rep.QualifyingCount)
	}
	if len(rep.Results) != 1 || rep.Results[0].Keyword != "declining" {
		t.Fatalf("Expected one result for 'declining', got %v", rep.Results)
	}
	if rep.Results[0].Narrative == "" {
		t.Error("Expected narrative on analyzed result")
	}
	if len(analyzer.calls) != 1 {
		t.Errorf("Expected analyzer called once, got %d", len(analyzer.calls))
	}
	if rep.RunID == "" {
		t.Error("Expected run ID to be set")
	}
}

func TestRunLookupFailureContinues(t *testing.T) {
	source := &stubSource{records: []types.KeywordRecord{
		{Keyword: "first", PreviousRank: 2},
		{Keyword: "broken", PreviousRank: 4},
		{Keyword: "last", PreviousRank: 3},
	}}
	fetcher := &stubFetcher{
		ranks:   map[string]types.Rank{"first": 2, "last": 9},
		failing: map[string]bool{"broken": true},
	}
	analyzer := &stubAnalyzer{}

	p := New(pipelineConfig(t), source, fetcher, analyzer)
	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(fetcher.calls) != 3 {
		t.Errorf("Expected all 3 lookups attempted, got %d", len(fetcher.calls))
	}
	if rep.Unevaluated != 1 {
		t.Errorf("Expected 1 unevaluated keyword, got %d", rep.Unevaluated)
	}
	// "broken" never qualifies, but "last" (3 -> 9) still gets analyzed.
	if rep.QualifyingCount != 1 {
		t.Errorf("Expected 1 qualifying decline, got %d", rep.QualifyingCount)
	}
	if len(rep.Results) != 1 || rep.Results[0].Keyword != "last" {
		t.Fatalf("Expected result for 'last', got %v", rep.Results)
	}
}

func TestRunAnalyzerFailureKeepsDecline(t *testing.T) {
	source := &stubSource{records: []types.KeywordRecord{
		{Keyword: "declining", PreviousRank: 3},
	}}
	fetcher := &stubFetcher{ranks: map[string]types.Rank{"declining": 9}}
	analyzer := &stubAnalyzer{failing: map[string]bool{"declining": true}}

	p := New(pipelineConfig(t), source, fetcher, analyzer)
	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(rep.Results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(rep.Results))
	}
	if !rep.Results[0].Failed() {
		t.Error("Expected result to carry failure reason")
	}
	if rep.QualifyingCount != 1 {
		t.Errorf("Expected decline still counted, got %d", rep.QualifyingCount)
	}
}

func TestRunSourceFailureFatal(t *testing.T) {
	source := &stubSource{err: errors.New("sheet unreachable")}
	p := New(pipelineConfig(t), source, &stubFetcher{}, &stubAnalyzer{})

	rep, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if rep != nil {
		t.Error("Expected nil report on source failure")
	}
}

func TestRunEmptySource(t *testing.T) {
	fetcher := &stubFetcher{}
	p := New(pipelineConfig(t), &stubSource{}, fetcher, &stubAnalyzer{})

	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rep.TotalKeywords != 0 || len(rep.Results) != 0 {
		t.Errorf("Expected empty report, got %+v", rep)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("Expected no lookups for empty source, got %d", len(fetcher.calls))
	}
}

func TestRunPreservesSourceOrder(t *testing.T) {
	var records []types.KeywordRecord
	ranks := map[string]types.Rank{}
	for i := 0; i < 6; i++ {
		kw := fmt.Sprintf("keyword-%d", i)
		records = append(records, types.KeywordRecord{Keyword: kw, PreviousRank: 2})
		ranks[kw] = 9
	}
	p := New(pipelineConfig(t), &stubSource{records: records}, &stubFetcher{ranks: ranks}, &stubAnalyzer{})

	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rep.Results) != 6 {
		t.Fatalf("Expected 6 results, got %d", len(rep.Results))
	}
	for i, res := range rep.Results {
		want := fmt.Sprintf("keyword-%d", i)
		if res.Keyword != want {
			t.Errorf("Expected result %d to be %s, got %s", i, want, res.Keyword)
		}
	}
}
