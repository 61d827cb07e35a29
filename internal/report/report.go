package report

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"rankwatch/internal/types"
)

// DefaultMessageLimit is the Discord message size cap.
const DefaultMessageLimit = 2000

const truncationMarker = "\n... (truncated)"

// Assemble builds the run report from the verdicts of one batch pass.
// Every qualifying verdict yields exactly one Results entry in verdict
// order. A qualifying verdict without an analysis gets a placeholder so
// the decline is still reported.
func Assemble(runID string, generatedAt time.Time, verdicts []types.DeclineVerdict, analyses map[string]types.AnalysisResult) types.Report {
	rep := types.Report{
		RunID:         runID,
		GeneratedAt:   generatedAt,
		TotalKeywords: len(verdicts),
	}

	for _, v := range verdicts {
		if v.Reason == types.ReasonUnevaluated {
			rep.Unevaluated++
		}
		if !v.Qualifies {
			continue
		}
		rep.QualifyingCount++

		if res, ok := analyses[v.Keyword]; ok {
			rep.Results = append(rep.Results, res)
			continue
		}
		rep.Results = append(rep.Results, types.AnalysisResult{
			Keyword:       v.Keyword,
			Verdict:       v,
			FailureReason: "analysis unavailable",
		})
	}
	return rep
}

// Format renders the report as Discord-ready text chunks. Chunks split on
// section boundaries and never exceed limit characters; a single section
// too large for one message is cut with a truncation marker. At least one
// chunk is always returned.
func Format(rep types.Report, limit int) []string {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}

	sections := []string{renderHeader(rep)}
	for _, res := range rep.Results {
		sections = append(sections, renderSection(res))
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, section := range sections {
		n := utf8.RuneCountInString(section)
		if n > limit {
			section = truncateRunes(section, limit-utf8.RuneCountInString(truncationMarker)) + truncationMarker
			n = utf8.RuneCountInString(section)
		}

		sep := 0
		if currentLen > 0 {
			sep = 2
		}
		if currentLen+sep+n > limit {
			flush()
			sep = 0
		}
		if sep > 0 {
			current.WriteString("\n\n")
			currentLen += 2
		}
		current.WriteString(section)
		currentLen += n
	}
	flush()

	if len(chunks) == 0 {
		chunks = []string{""}
	}
	return chunks
}

func renderHeader(rep types.Report) string {
	var sb strings.Builder
	sb.WriteString("SEO Rank Report\n")
	fmt.Fprintf(&sb, "Run: %s (run_id: %s)\n", rep.GeneratedAt.UTC().Format(time.RFC3339), rep.RunID)
	fmt.Fprintf(&sb, "Checked %d keywords: %d qualifying declines, %d unevaluated",
		rep.TotalKeywords, rep.QualifyingCount, rep.Unevaluated)
	if len(rep.Results) == 0 {
		sb.WriteString("\n\nNo qualifying rank declines detected.")
	}
	return sb.String()
}

func renderSection(res types.AnalysisResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n", res.Keyword)
	fmt.Fprintf(&sb, "Rank: %s (previous: %s) - %s\n", res.Verdict.Current, res.Verdict.Previous, res.Verdict.Reason)

	if len(res.Competitors) > 0 {
		sb.WriteString("Top competitors:\n")
		for _, c := range res.Competitors {
			title := c.Title
			if title == "" {
				title = "N/A"
			}
			fmt.Fprintf(&sb, "- %s: %s\n", title, c.URL)
		}
	}

	if res.Failed() {
		fmt.Fprintf(&sb, "(analysis unavailable: %s)\n", res.FailureReason)
	} else if res.Narrative != "" {
		sb.WriteString("Gaps and actions:\n")
		for _, line := range Bullets(res.Narrative) {
			fmt.Fprintf(&sb, "- %s\n", line)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// Bullets splits generated text into clean bullet lines, dropping blank
// lines and whatever bullet markers the model chose.
func Bullets(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-•* ")
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
