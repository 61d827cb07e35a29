package interfaces

import (
	"context"

	"rankwatch/internal/types"
)

type RankFetcher interface {
	Lookup(ctx context.Context, keyword string) (types.RankObservation, error)
}
