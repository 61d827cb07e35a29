package interfaces

import (
	"context"

	"rankwatch/internal/types"
)

type Notifier interface {
	Notify(ctx context.Context, report *types.Report) error
}
