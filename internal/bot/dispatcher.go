package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rankwatch/internal/interfaces"
	"rankwatch/internal/logger"
	"rankwatch/internal/metrics"
	"rankwatch/internal/report"
	"rankwatch/internal/serp"
	"rankwatch/internal/store"
	"rankwatch/internal/types"
)

// Embed accent colors, one per command family.
const (
	colorBlue   = 0x3498db
	colorRed    = 0xe74c3c
	colorGreen  = 0x2ecc71
	colorPurple = 0x9b59b6
)

// ReplyField is one name/value pair rendered as an embed field.
type ReplyField struct {
	Name   string
	Value  string
	Inline bool
}

// CommandReply is the transport-neutral answer to a command. The session
// layer turns it into a Discord embed; tests assert on it directly.
type CommandReply struct {
	Title  string
	Body   string
	Color  int
	Fields []ReplyField
}

// Dispatcher holds the command logic behind the Discord surface. It
// depends on interfaces only so every handler is unit-testable without a
// gateway connection.
type Dispatcher struct {
	cfg       *store.Config
	source    interfaces.KeywordSource
	fetcher   interfaces.RankFetcher
	analyzer  interfaces.Analyzer
	gen       interfaces.TextGenerator
	ownDomain string
	started   time.Time
}

func NewDispatcher(cfg *store.Config, source interfaces.KeywordSource, fetcher interfaces.RankFetcher, analyzer interfaces.Analyzer, gen interfaces.TextGenerator) *Dispatcher {
	return &Dispatcher{
		cfg:       cfg,
		source:    source,
		fetcher:   fetcher,
		analyzer:  analyzer,
		gen:       gen,
		ownDomain: serp.OwnDomain(cfg.SiteURL),
		started:   time.Now(),
	}
}

// HandleRank answers a position check. It only runs the rank lookup;
// the analyzer and generator are never involved.
func (d *Dispatcher) HandleRank(ctx context.Context, keyword string) *CommandReply {
	obs, err := d.fetcher.Lookup(ctx, keyword)
	if err != nil {
		metrics.RecordCommand("rank", metrics.OutcomeError)
		logger.ErrorWithErr(ctx, "Rank command failed", err, "keyword", keyword)
		return &CommandReply{
			Title: fmt.Sprintf("Rank check: %s", keyword),
			Body:  "Rank lookup failed. Try again in a moment.",
			Color: colorRed,
		}
	}

	metrics.RecordCommand("rank", metrics.OutcomeOK)
	if !obs.Rank.Ranked() {
		return &CommandReply{
			Title: fmt.Sprintf("Rank check: %s", keyword),
			Body:  fmt.Sprintf("%s was not found in the top %d results.", d.ownDomain, d.cfg.TopN),
			Color: colorRed,
		}
	}

	reply := &CommandReply{
		Title: fmt.Sprintf("Rank check: %s", keyword),
		Color: colorBlue,
		Fields: []ReplyField{
			{Name: "Current rank", Value: rankLabel(obs.Rank), Inline: true},
		},
	}
	if obs.OwnURL != "" {
		reply.Fields = append(reply.Fields, ReplyField{Name: "URL", Value: obs.OwnURL})
	}
	return reply
}

// HandleAnalyze runs the full on-demand analysis and renders movement,
// page comparison and the generated gap list.
func (d *Dispatcher) HandleAnalyze(ctx context.Context, keyword string) *CommandReply {
	result, err := d.analyzer.AnalyzeOnDemand(ctx, keyword)
	if err != nil {
		metrics.RecordCommand("analyze", metrics.OutcomeError)
		logger.ErrorWithErr(ctx, "Analyze command failed", err, "keyword", keyword)
		switch {
		case errors.Is(err, types.ErrLookupFailure):
			return &CommandReply{
				Title: fmt.Sprintf("Analysis: %s", keyword),
				Body:  "Rank lookup failed. Try again in a moment.",
				Color: colorRed,
			}
		case errors.Is(err, types.ErrAnalysisUnavailable):
			reply := d.analyzeReply(keyword, result)
			reply.Fields = append(reply.Fields, ReplyField{
				Name:  "AI analysis",
				Value: "Unavailable right now. The rank data above is still current.",
			})
			return reply
		default:
			return &CommandReply{
				Title: fmt.Sprintf("Analysis: %s", keyword),
				Body:  "Something went wrong during the analysis.",
				Color: colorRed,
			}
		}
	}

	if result.Failed() {
		metrics.RecordCommand("analyze", metrics.OutcomeOK)
		return &CommandReply{
			Title: fmt.Sprintf("Analysis: %s", keyword),
			Body:  fmt.Sprintf("%s was not found in the top %d results, nothing to compare against.", d.ownDomain, d.cfg.TopN),
			Color: colorRed,
		}
	}

	metrics.RecordCommand("analyze", metrics.OutcomeOK)
	reply := d.analyzeReply(keyword, result)

	if compTitle, compURL := comparisonTarget(result); compURL != "" {
		reply.Fields = append(reply.Fields, ReplyField{
			Name:  "Compared against",
			Value: fmt.Sprintf("%s\n%s", compTitle, compURL),
		})
	}
	if result.Narrative != "" {
		bullets := report.Bullets(result.Narrative)
		if len(bullets) > 5 {
			bullets = bullets[:5]
		}
		reply.Fields = append(reply.Fields, ReplyField{
			Name:  "AI analysis",
			Value: "• " + strings.Join(bullets, "\n• "),
		})
	}
	return reply
}

// analyzeReply renders the movement and optional page comparison shared
// by the success and analysis-unavailable paths.
func (d *Dispatcher) analyzeReply(keyword string, result types.AnalysisResult) *CommandReply {
	reply := &CommandReply{
		Title: fmt.Sprintf("Analysis: %s", keyword),
		Color: colorGreen,
		Fields: []ReplyField{
			{Name: "Current rank", Value: rankLabel(result.Verdict.Current), Inline: true},
			{Name: "Movement", Value: fmt.Sprintf("%s -> %s (%s)", result.Verdict.Previous, result.Verdict.Current, result.Verdict.Reason), Inline: true},
		},
	}
	if result.OwnPage != nil && result.CompetitorPage != nil {
		reply.Fields = append(reply.Fields, ReplyField{
			Name:  "Content comparison",
			Value: comparisonTable(result.OwnPage, result.CompetitorPage),
		})
	}
	return reply
}

func rankLabel(r types.Rank) string {
	if !r.Ranked() {
		return "not found"
	}
	return fmt.Sprintf("#%d", r)
}

// comparisonTarget names the page the analysis compared against: the
// profiled competitor when available, otherwise the best-placed one.
func comparisonTarget(result types.AnalysisResult) (title, url string) {
	if result.CompetitorPage != nil {
		return clipTitle(result.CompetitorPage.Title), result.CompetitorPage.URL
	}
	if len(result.Competitors) > 0 {
		return clipTitle(result.Competitors[0].Title), result.Competitors[0].URL
	}
	return "", ""
}

func clipTitle(title string) string {
	if title == "" {
		return "N/A"
	}
	runes := []rune(title)
	if len(runes) > 60 {
		return string(runes[:60])
	}
	return title
}

// comparisonTable renders the own vs competitor metrics as a fixed-width
// block so the columns line up inside the embed.
func comparisonTable(own, comp *types.PageMetrics) string {
	var sb strings.Builder
	sb.WriteString("```\n")
	fmt.Fprintf(&sb, "%-10s %8s %8s %8s\n", "metric", "own", "rival", "diff")
	fmt.Fprintf(&sb, "%s\n", strings.Repeat("-", 38))
	fmt.Fprintf(&sb, "%-10s %8d %8d %+8d\n", "chars", own.CharCount, comp.CharCount, own.CharCount-comp.CharCount)
	fmt.Fprintf(&sb, "%-10s %8d %8d %+8d\n", "headings", len(own.Headings), len(comp.Headings), len(own.Headings)-len(comp.Headings))
	fmt.Fprintf(&sb, "%-10s %8d %8d %+8d\n", "images", own.ImageCount, comp.ImageCount, own.ImageCount-comp.ImageCount)
	sb.WriteString("```")
	return sb.String()
}

// HandleStatus reports bot health and the tracked keyword list. Reads
// the keyword source only; no rank lookups.
func (d *Dispatcher) HandleStatus(ctx context.Context) *CommandReply {
	records, err := d.source.Load(ctx)
	if err != nil {
		metrics.RecordCommand("status", metrics.OutcomeError)
		logger.ErrorWithErr(ctx, "Status command failed", err)
		return &CommandReply{
			Title: "SEO Bot Status",
			Body:  "Keyword source is unreachable right now.",
			Color: colorRed,
		}
	}

	metrics.RecordCommand("status", metrics.OutcomeOK)
	reply := &CommandReply{
		Title: "SEO Bot Status",
		Color: colorPurple,
		Fields: []ReplyField{
			{Name: "Bot", Value: "online", Inline: true},
			{Name: "Mode", Value: d.cfg.Mode, Inline: true},
			{Name: "Uptime", Value: time.Since(d.started).Round(time.Second).String(), Inline: true},
			{Name: "Tracked keywords", Value: fmt.Sprintf("%d", len(records)), Inline: true},
		},
	}

	if len(records) > 0 {
		var lines []string
		for i, rec := range records {
			if i == 10 {
				lines = append(lines, fmt.Sprintf("... %d more", len(records)-10))
				break
			}
			lines = append(lines, "• "+rec.Keyword)
		}
		reply.Fields = append(reply.Fields, ReplyField{Name: "Keywords", Value: strings.Join(lines, "\n")})
	}
	return reply
}

const chatPrompt = `You are an SEO expert. Answer the question below concisely and include practical advice. If a deeper look at a specific keyword would help, suggest running /analyze with that keyword.

Question: %s`

// HandleChat answers a free-form mention. One generation call, no rank
// data involved.
func (d *Dispatcher) HandleChat(ctx context.Context, question string) *CommandReply {
	question = strings.TrimSpace(question)
	if question == "" {
		metrics.RecordCommand("chat", metrics.OutcomeOK)
		return &CommandReply{
			Body:  "Ask me anything about SEO, or try the /rank, /analyze and /status commands.",
			Color: colorBlue,
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, time.Duration(d.cfg.LLM.TimeoutSeconds)*time.Second)
	defer cancel()

	answer, err := d.gen.Generate(genCtx, fmt.Sprintf(chatPrompt, question))
	if err != nil {
		metrics.RecordCommand("chat", metrics.OutcomeError)
		logger.ErrorWithErr(ctx, "Chat generation failed", err)
		return &CommandReply{
			Body:  "Sorry, I could not come up with an answer.",
			Color: colorRed,
		}
	}

	metrics.RecordCommand("chat", metrics.OutcomeOK)
	return &CommandReply{
		Body:  strings.TrimSpace(answer),
		Color: colorBlue,
	}
}
