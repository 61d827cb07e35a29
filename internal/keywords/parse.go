package keywords

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"rankwatch/internal/logger"
	"rankwatch/internal/types"
)

var errHeaderRow = errors.New("header row")

// ParseRows converts raw sheet rows into keyword records. Header rows and
// malformed rows are skipped; only the malformed ones get a warning. The
// first occurrence of a duplicate keyword wins.
func ParseRows(ctx context.Context, rows [][]string) []types.KeywordRecord {
	records := make([]types.KeywordRecord, 0, len(rows))
	seen := make(map[string]bool)

	for i, row := range rows {
		rec, err := parseRow(row)
		if err != nil {
			if errors.Is(err, errHeaderRow) {
				continue
			}
			logger.Warn(ctx, "Skipping keyword row", "row", i+1, "error", err)
			continue
		}
		if seen[rec.Keyword] {
			logger.Warn(ctx, "Skipping duplicate keyword", "row", i+1, "keyword", rec.Keyword)
			continue
		}
		seen[rec.Keyword] = true
		records = append(records, rec)
	}

	return records
}

func parseRow(row []string) (types.KeywordRecord, error) {
	if len(row) == 0 {
		return types.KeywordRecord{}, fmt.Errorf("empty row: %w", types.ErrInvalidRecord)
	}

	keyword := Normalize(row[0])
	if keyword == "" {
		return types.KeywordRecord{}, fmt.Errorf("empty keyword: %w", types.ErrInvalidRecord)
	}
	if strings.EqualFold(keyword, "keyword") {
		return types.KeywordRecord{}, errHeaderRow
	}

	previous := types.Unranked
	if len(row) > 1 {
		r, err := ParseRank(row[1])
		if err != nil {
			return types.KeywordRecord{}, err
		}
		previous = r
	}

	return types.KeywordRecord{Keyword: keyword, PreviousRank: previous}, nil
}

// ParseRank interprets a raw baseline cell. Empty and the literal
// "unranked" mean no baseline; anything else must be a positive integer.
func ParseRank(cell string) (types.Rank, error) {
	s := Normalize(cell)
	if s == "" || strings.EqualFold(s, "unranked") {
		return types.Unranked, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return types.Unranked, fmt.Errorf("rank cell %q: %w", cell, types.ErrInvalidRecord)
	}
	return types.Rank(n), nil
}

// Normalize trims a cell and applies NFKC so full-width digits and
// spacing variants from manually edited sheets compare and parse cleanly.
func Normalize(cell string) string {
	return strings.TrimSpace(norm.NFKC.String(cell))
}
