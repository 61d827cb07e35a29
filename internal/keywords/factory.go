package keywords

import (
	"context"
	"fmt"

	"rankwatch/internal/interfaces"
	"rankwatch/internal/store"
)

// New builds the keyword source named by the configuration.
func New(cfg *store.Config) (interfaces.KeywordSource, error) {
	switch cfg.Keywords.Provider {
	case "SHEETS":
		return NewSheetsSource(cfg.Keywords.SpreadsheetID, cfg.Keywords.Range), nil
	case "STATIC":
		// Static entries go through the same row validation as sheet rows.
		rows := make([][]string, 0, len(cfg.Keywords.Static))
		for _, e := range cfg.Keywords.Static {
			rows = append(rows, []string{e.Keyword, e.PreviousRank})
		}
		return NewStaticSource(ParseRows(context.Background(), rows)), nil
	default:
		return nil, fmt.Errorf("unknown keywords provider %q", cfg.Keywords.Provider)
	}
}
