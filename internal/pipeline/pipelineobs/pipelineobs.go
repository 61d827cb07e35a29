package pipelineobs

import (
	"context"
	"time"

	"rankwatch/internal/interfaces"
	"rankwatch/internal/logger"
	"rankwatch/internal/trace"
	"rankwatch/internal/types"
)

type observablePipeline struct {
	pipeline interfaces.Pipeline
}

var _ interfaces.Pipeline = (*observablePipeline)(nil)

func Wrap(p interfaces.Pipeline) interfaces.Pipeline {
	return &observablePipeline{
		pipeline: p,
	}
}

func (op *observablePipeline) Run(ctx context.Context) (*types.Report, error) {
	ctx, span := trace.StartSpan(ctx, "pipeline.Run")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting report run")

	rep, err := op.pipeline.Run(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Report run failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Report run completed",
		"run_id", rep.RunID,
		"keywords", rep.TotalKeywords,
		"qualifying", rep.QualifyingCount,
		"unevaluated", rep.Unevaluated,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return rep, nil
}
