package types

import (
	"strconv"
	"time"
)

// Rank is a 1-based position in search results. Zero means not found
// within the configured search depth.
type Rank int

const Unranked Rank = 0

func (r Rank) Ranked() bool { return r > 0 }

func (r Rank) WithinTop(n int) bool { return r > 0 && int(r) <= n }

func (r Rank) String() string {
	if r == Unranked {
		return "not found"
	}
	return strconv.Itoa(int(r))
}

// KeywordRecord is one tracked keyword with its baseline from the source.
type KeywordRecord struct {
	Keyword      string
	PreviousRank Rank
}

// SerpEntry is a single organic result from a search results page.
type SerpEntry struct {
	Position int    `json:"position"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet,omitempty"`
}

// RankObservation is one fresh lookup result. Competitors exclude the
// own domain and are capped at the top ten entries.
type RankObservation struct {
	Keyword     string
	Rank        Rank
	OwnURL      string
	Competitors []SerpEntry
	ObservedAt  time.Time
}

type VerdictReason string

const (
	ReasonNewlyOutOfTop10  VerdictReason = "NEWLY_OUT_OF_TOP10"
	ReasonRankWorsened     VerdictReason = "RANK_WORSENED"
	ReasonStableOrImproved VerdictReason = "STABLE_OR_IMPROVED"
	ReasonStillUnranked    VerdictReason = "WAS_UNRANKED_STILL_UNRANKED"
	ReasonUnevaluated      VerdictReason = "UNEVALUATED"
)

type DeclineVerdict struct {
	Keyword   string
	Previous  Rank
	Current   Rank
	Qualifies bool
	Reason    VerdictReason
}

// PageMetrics summarizes a page for competitor comparison.
type PageMetrics struct {
	URL        string   `json:"url"`
	Title      string   `json:"title"`
	CharCount  int      `json:"char_count"`
	ImageCount int      `json:"image_count"`
	Headings   []string `json:"headings"`
}

// AnalysisResult carries either a generated narrative or the reason the
// generation failed, never both. OwnURL and Competitors come from the
// observation the analysis was built on; the page metrics are only set
// for on-demand analyses with profiling enabled.
type AnalysisResult struct {
	Keyword        string
	Verdict        DeclineVerdict
	OwnURL         string
	Competitors    []SerpEntry
	Narrative      string
	FailureReason  string
	OwnPage        *PageMetrics
	CompetitorPage *PageMetrics
}

func (a AnalysisResult) Failed() bool { return a.FailureReason != "" }

// Report is the outcome of one batch run. Results holds one entry per
// qualifying keyword in source order.
type Report struct {
	RunID           string
	GeneratedAt     time.Time
	TotalKeywords   int
	QualifyingCount int
	Unevaluated     int
	Results         []AnalysisResult
}
