package keywords

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"rankwatch/internal/logger"
	"rankwatch/internal/types"
)

// SheetsSource reads keyword baselines from a Google Sheets range.
// Column A holds the keyword, column B the previous rank.
type SheetsSource struct {
	spreadsheetID string
	readRange     string
	opts          []option.ClientOption
}

func NewSheetsSource(spreadsheetID, readRange string) *SheetsSource {
	var opts []option.ClientOption
	if f := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	} else if j := os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"); j != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(j)))
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsReadonlyScope))

	return &SheetsSource{
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		opts:          opts,
	}
}

func (s *SheetsSource) Load(ctx context.Context) ([]types.KeywordRecord, error) {
	svc, err := sheets.NewService(ctx, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	resp, err := svc.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets read %s: %w", s.readRange, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fmt.Sprint(cell)
		}
		rows = append(rows, cells)
	}

	records := ParseRows(ctx, rows)
	logger.Info(ctx, "Keywords loaded from sheet",
		"spreadsheet_id", s.spreadsheetID,
		"rows", len(rows),
		"records", len(records),
	)
	return records, nil
}
