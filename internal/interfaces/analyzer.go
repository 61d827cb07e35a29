package interfaces

import (
	"context"

	"rankwatch/internal/types"
)

type Analyzer interface {
	Analyze(ctx context.Context, verdict types.DeclineVerdict, obs types.RankObservation) (types.AnalysisResult, error)
	AnalyzeOnDemand(ctx context.Context, keyword string) (types.AnalysisResult, error)
}
