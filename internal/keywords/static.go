package keywords

import (
	"context"

	"rankwatch/internal/types"
)

// StaticSource serves records fixed at construction time. Used for dry
// runs and tests where no spreadsheet is available.
type StaticSource struct {
	records []types.KeywordRecord
}

func NewStaticSource(records []types.KeywordRecord) *StaticSource {
	return &StaticSource{records: records}
}

func (s *StaticSource) Load(ctx context.Context) ([]types.KeywordRecord, error) {
	out := make([]types.KeywordRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}
