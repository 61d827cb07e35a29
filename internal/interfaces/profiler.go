package interfaces

import (
	"context"

	"rankwatch/internal/types"
)

type PageProfiler interface {
	Profile(ctx context.Context, url string) (types.PageMetrics, error)
}
