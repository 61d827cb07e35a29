package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"rankwatch/internal/detector"
	"rankwatch/internal/interfaces"
	"rankwatch/internal/keywords"
	"rankwatch/internal/logger"
	"rankwatch/internal/serp"
	"rankwatch/internal/store"
	"rankwatch/internal/types"
)

// Analyzer turns a decline verdict plus the observation behind it into a
// narrative explaining the movement. Generation failures degrade to a
// result with FailureReason set so one bad call never loses the report.
type Analyzer struct {
	cfg       *store.Config
	gen       interfaces.TextGenerator
	fetcher   interfaces.RankFetcher
	source    interfaces.KeywordSource
	profiler  interfaces.PageProfiler
	det       *detector.Detector
	ownDomain string
}

// New builds an analyzer. profiler may be nil; on-demand analyses then
// skip the page comparison and work from the results page alone.
func New(cfg *store.Config, gen interfaces.TextGenerator, fetcher interfaces.RankFetcher, source interfaces.KeywordSource, profiler interfaces.PageProfiler) *Analyzer {
	return &Analyzer{
		cfg:       cfg,
		gen:       gen,
		fetcher:   fetcher,
		source:    source,
		profiler:  profiler,
		det:       detector.New(cfg.TopN),
		ownDomain: serp.OwnDomain(cfg.SiteURL),
	}
}

// Analyze explains a qualifying decline found during a scheduled run.
func (a *Analyzer) Analyze(ctx context.Context, verdict types.DeclineVerdict, obs types.RankObservation) (types.AnalysisResult, error) {
	result := types.AnalysisResult{
		Keyword:     verdict.Keyword,
		Verdict:     verdict,
		OwnURL:      obs.OwnURL,
		Competitors: a.capCompetitors(obs.Competitors),
	}
	return a.generate(ctx, result)
}

// AnalyzeOnDemand runs a fresh lookup for one keyword and explains where
// it stands right now. The baseline comes from the keyword source when
// the keyword is tracked there; untracked keywords are analyzed against
// no baseline.
func (a *Analyzer) AnalyzeOnDemand(ctx context.Context, keyword string) (types.AnalysisResult, error) {
	obs, err := a.fetcher.Lookup(ctx, keyword)
	if err != nil {
		result := types.AnalysisResult{
			Keyword:       keyword,
			Verdict:       detector.Unevaluated(keyword, types.Unranked),
			FailureReason: "rank lookup failed",
		}
		return result, err
	}

	verdict := a.det.Evaluate(keyword, a.baseline(ctx, keyword), obs.Rank)
	result := types.AnalysisResult{
		Keyword:     keyword,
		Verdict:     verdict,
		OwnURL:      obs.OwnURL,
		Competitors: a.capCompetitors(obs.Competitors),
	}

	if !obs.Rank.Ranked() || obs.OwnURL == "" {
		result.FailureReason = "own site not found in the top results"
		return result, nil
	}

	if a.profiler != nil && a.cfg.Analysis.ProfilePages {
		a.profilePages(ctx, &result, obs)
	}

	return a.generate(ctx, result)
}

// baseline looks the keyword up in the tracked source. Any trouble here
// is logged and treated as no baseline; the on-demand path must answer
// for untracked keywords too.
func (a *Analyzer) baseline(ctx context.Context, keyword string) types.Rank {
	if a.source == nil {
		return types.Unranked
	}
	records, err := a.source.Load(ctx)
	if err != nil {
		logger.Warn(ctx, "Baseline unavailable, analyzing without previous rank",
			"keyword", keyword,
			"error", err.Error(),
		)
		return types.Unranked
	}
	want := keywords.Normalize(keyword)
	for _, rec := range records {
		if strings.EqualFold(keywords.Normalize(rec.Keyword), want) {
			return rec.PreviousRank
		}
	}
	return types.Unranked
}

// profilePages fetches content metrics for the own page and for the
// competitor one position above. Profile failures are logged and leave
// the corresponding field nil.
func (a *Analyzer) profilePages(ctx context.Context, result *types.AnalysisResult, obs types.RankObservation) {
	own, err := a.profiler.Profile(ctx, obs.OwnURL)
	if err != nil {
		logger.Warn(ctx, "Own page profile failed", "url", obs.OwnURL, "error", err.Error())
	} else {
		result.OwnPage = &own
	}

	competitor := competitorOneAbove(obs)
	if competitor == nil {
		return
	}
	comp, err := a.profiler.Profile(ctx, competitor.URL)
	if err != nil {
		logger.Warn(ctx, "Competitor page profile failed", "url", competitor.URL, "error", err.Error())
		return
	}
	if comp.Title == "" {
		comp.Title = competitor.Title
	}
	result.CompetitorPage = &comp
}

// competitorOneAbove picks the competitor holding the position directly
// above the own rank, falling back to the best-placed competitor.
func competitorOneAbove(obs types.RankObservation) *types.SerpEntry {
	target := int(obs.Rank) - 1
	for i := range obs.Competitors {
		if obs.Competitors[i].Position == target {
			return &obs.Competitors[i]
		}
	}
	if len(obs.Competitors) > 0 {
		return &obs.Competitors[0]
	}
	return nil
}

func (a *Analyzer) generate(ctx context.Context, result types.AnalysisResult) (types.AnalysisResult, error) {
	prompt := a.buildPrompt(result)
	logger.Debug(ctx, "Built analysis prompt",
		"keyword", result.Keyword,
		"prompt_chars", len(prompt),
		"competitors", len(result.Competitors),
	)

	genCtx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.LLM.TimeoutSeconds)*time.Second)
	defer cancel()

	text, err := a.gen.Generate(genCtx, prompt)
	if err != nil {
		result.FailureReason = "narrative generation failed"
		return result, fmt.Errorf("analyze %q: %w: %v", result.Keyword, types.ErrAnalysisUnavailable, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		result.FailureReason = "empty response from generator"
		return result, fmt.Errorf("analyze %q: %w: empty response", result.Keyword, types.ErrAnalysisUnavailable)
	}

	result.Narrative = text
	return result, nil
}

// buildPrompt renders the analysis request. Competitors go in as JSON so
// the model sees positions, titles and snippets verbatim.
func (a *Analyzer) buildPrompt(result types.AnalysisResult) string {
	ownURL := result.OwnURL
	if ownURL == "" {
		ownURL = "https://" + a.ownDomain
	}
	competitors, err := json.MarshalIndent(result.Competitors, "", "  ")
	if err != nil {
		competitors = []byte("[]")
	}

	var sb strings.Builder
	sb.WriteString("You are an SEO analyst. Compare our site against the competitors below, analyze the gaps and list improvement actions.\n\n")
	fmt.Fprintf(&sb, "Keyword: %s\n", result.Keyword)
	fmt.Fprintf(&sb, "Previous rank: %s\n", result.Verdict.Previous)
	fmt.Fprintf(&sb, "Current rank: %s\n", result.Verdict.Current)
	fmt.Fprintf(&sb, "Own URL: %s\n", ownURL)
	sb.WriteString("Top competitors:\n")
	sb.Write(competitors)
	sb.WriteString("\n")

	if result.OwnPage != nil {
		fmt.Fprintf(&sb, "\nOwn page: %d chars, %d headings, %d images\n",
			result.OwnPage.CharCount, len(result.OwnPage.Headings), result.OwnPage.ImageCount)
	}
	if result.CompetitorPage != nil {
		fmt.Fprintf(&sb, "Competitor page (%s): %d chars, %d headings, %d images\n",
			result.CompetitorPage.URL, result.CompetitorPage.CharCount, len(result.CompetitorPage.Headings), result.CompetitorPage.ImageCount)
	}

	sb.WriteString("\nAnswer with short bullet points, separating gaps from improvement actions.")
	return sb.String()
}

// capCompetitors bounds the entries the model and the report see, and
// trims snippets so one verbose result page cannot blow up the prompt.
func (a *Analyzer) capCompetitors(entries []types.SerpEntry) []types.SerpEntry {
	limit := a.cfg.Analysis.CompetitorLimit
	if limit <= 0 {
		limit = 5
	}
	if len(entries) < limit {
		limit = len(entries)
	}
	capped := make([]types.SerpEntry, limit)
	copy(capped, entries[:limit])
	for i := range capped {
		capped[i].Snippet = truncate(capped[i].Snippet, a.cfg.Analysis.SnippetMaxChars)
	}
	return capped
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
