package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"rankwatch/internal/logger"
	"rankwatch/internal/store"
	"rankwatch/internal/types"
)

// maxHeadings bounds how many headings a profile keeps. Long articles can
// carry dozens; the first few are enough for a structure comparison.
const maxHeadings = 12

// Profiler fetches a page and summarizes the content signals that matter
// for rank comparison: visible text volume, heading structure and image count.
type Profiler struct {
	timeout time.Duration
}

func NewProfiler(cfg *store.Config) *Profiler {
	return &Profiler{
		timeout: time.Duration(cfg.Analysis.ProfileTimeoutSeconds) * time.Second,
	}
}

// Profile downloads the page at url and extracts content metrics.
func (p *Profiler) Profile(ctx context.Context, pageURL string) (types.PageMetrics, error) {
	metrics := types.PageMetrics{URL: pageURL}

	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(p.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		metrics.Title = strings.TrimSpace(e.DOM.Find("title").First().Text())
		metrics.ImageCount = e.DOM.Find("img").Length()

		headings := []string{}
		e.ForEach("h1, h2, h3", func(_ int, el *colly.HTMLElement) {
			if len(headings) >= maxHeadings {
				return
			}
			text := strings.TrimSpace(el.Text)
			if text != "" {
				headings = append(headings, text)
			}
		})
		metrics.Headings = headings

		body := e.DOM.Find("body").Clone()
		body.Find("script, style, noscript").Remove()
		text := strings.Join(strings.Fields(body.Text()), " ")
		metrics.CharCount = len([]rune(text))
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Page profile error", err, "url", r.Request.URL.String())
	})

	if err := c.Visit(pageURL); err != nil {
		return types.PageMetrics{}, fmt.Errorf("profile %s: %w", pageURL, err)
	}
	c.Wait()

	logger.Debug(ctx, "Page profiled",
		"url", pageURL,
		"chars", metrics.CharCount,
		"headings", len(metrics.Headings),
		"images", metrics.ImageCount,
	)
	return metrics, nil
}
