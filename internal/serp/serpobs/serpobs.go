package serpobs

import (
	"context"
	"time"

	"rankwatch/internal/interfaces"
	"rankwatch/internal/logger"
	"rankwatch/internal/metrics"
	"rankwatch/internal/trace"
	"rankwatch/internal/types"
)

// observableFetcher wraps a RankFetcher with observability (logging,
// tracing, metrics)
type observableFetcher struct {
	fetcher interfaces.RankFetcher
}

// Compile-time interface check
var _ interfaces.RankFetcher = (*observableFetcher)(nil)

// Wrap wraps a rank fetcher with observability middleware
func Wrap(fetcher interfaces.RankFetcher) interfaces.RankFetcher {
	return &observableFetcher{
		fetcher: fetcher,
	}
}

// Lookup fetches the current rank with observability
func (of *observableFetcher) Lookup(ctx context.Context, keyword string) (types.RankObservation, error) {
	ctx, span := trace.StartSpan(ctx, "serp.Lookup")
	defer span.End()

	start := time.Now()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Looking up rank",
		"keyword", keyword,
	)

	obs, err := of.fetcher.Lookup(ctx, keyword)
	if err != nil {
		metrics.RecordLookup(metrics.OutcomeError)
		logger.ErrorWithErrSkip(ctx, 1, "Rank lookup failed", err,
			"keyword", keyword,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return types.RankObservation{}, err
	}

	outcome := metrics.OutcomeUnranked
	if obs.Rank.Ranked() {
		outcome = metrics.OutcomeRanked
	}
	metrics.RecordLookup(outcome)

	logger.InfoSkip(ctx, 1, "Rank lookup completed",
		"keyword", keyword,
		"rank", obs.Rank.String(),
		"competitors", len(obs.Competitors),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return obs, nil
}
