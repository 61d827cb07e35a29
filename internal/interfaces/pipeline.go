package interfaces

import (
	"context"

	"rankwatch/internal/types"
)

type Pipeline interface {
	Run(ctx context.Context) (*types.Report, error)
}
