package interfaces

import (
	"context"

	"rankwatch/internal/types"
)

type KeywordSource interface {
	Load(ctx context.Context) ([]types.KeywordRecord, error)
}
