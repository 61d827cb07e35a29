package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rankwatch/internal/detector"
	"rankwatch/internal/interfaces"
	"rankwatch/internal/logger"
	"rankwatch/internal/metrics"
	"rankwatch/internal/report"
	"rankwatch/internal/runlog"
	"rankwatch/internal/store"
	"rankwatch/internal/types"
)

// Pipeline runs one batch pass: load keywords, look up current ranks and
// judge declines, then explain the qualifying ones and assemble the report.
// Lookup and analysis failures degrade per keyword; only a keyword source
// failure aborts the run.
type Pipeline struct {
	cfg      *store.Config
	source   interfaces.KeywordSource
	fetcher  interfaces.RankFetcher
	analyzer interfaces.Analyzer
	det      *detector.Detector
}

func New(cfg *store.Config, source interfaces.KeywordSource, fetcher interfaces.RankFetcher, analyzer interfaces.Analyzer) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		source:   source,
		fetcher:  fetcher,
		analyzer: analyzer,
		det:      detector.New(cfg.TopN),
	}
}

func (p *Pipeline) Run(ctx context.Context) (*types.Report, error) {
	runID := uuid.NewString()
	startedAt := time.Now()

	records, err := p.source.Load(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load keywords", err, "run_id", runID)
		return nil, err
	}
	metrics.SetTrackedKeywords(len(records))

	if len(records) == 0 {
		logger.Warn(ctx, "No keywords loaded, nothing to check", "run_id", runID)
		rep := report.Assemble(runID, startedAt, nil, nil)
		return &rep, nil
	}

	logger.Info(ctx, "Starting rank check",
		"run_id", runID,
		"keywords", len(records),
	)

	verdicts := make([]types.DeclineVerdict, 0, len(records))
	analyses := make(map[string]types.AnalysisResult)

	for _, rec := range records {
		obs, err := p.fetcher.Lookup(ctx, rec.Keyword)
		if err != nil {
			logger.Warn(ctx, "Rank lookup failed, keyword left unevaluated",
				"run_id", runID,
				"keyword", rec.Keyword,
				"error", err.Error(),
			)
			verdicts = append(verdicts, detector.Unevaluated(rec.Keyword, rec.PreviousRank))
			continue
		}

		verdict := p.det.Evaluate(rec.Keyword, rec.PreviousRank, obs.Rank)
		verdicts = append(verdicts, verdict)
		logger.Verdict(ctx, rec.Keyword, verdict.Previous.String(), verdict.Current.String(), verdict.Qualifies, string(verdict.Reason),
			"run_id", runID,
		)
		_ = runlog.AppendVerdict(runlog.VerdictEntry{
			RunID:        runID,
			Keyword:      rec.Keyword,
			PreviousRank: verdict.Previous.String(),
			CurrentRank:  verdict.Current.String(),
			Reason:       string(verdict.Reason),
			Qualifies:    verdict.Qualifies,
		})

		if !verdict.Qualifies {
			continue
		}

		result, err := p.analyzer.Analyze(ctx, verdict, obs)
		if err != nil {
			logger.Warn(ctx, "Analysis unavailable for declined keyword",
				"run_id", runID,
				"keyword", rec.Keyword,
				"error", err.Error(),
			)
		}
		analyses[rec.Keyword] = result
	}

	rep := report.Assemble(runID, startedAt, verdicts, analyses)
	logger.Info(ctx, "Rank check finished",
		"run_id", runID,
		"keywords", rep.TotalKeywords,
		"qualifying", rep.QualifyingCount,
		"unevaluated", rep.Unevaluated,
	)
	return &rep, nil
}
