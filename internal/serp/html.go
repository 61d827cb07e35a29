package serp

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rankwatch/internal/api"
	"rankwatch/internal/store"
	"rankwatch/internal/types"
)

// HTMLFetcher scrapes a rendered results page and extracts result links
// with configurable CSS selectors. Useful against self-hosted SERP
// mirrors that expose no JSON API.
type HTMLFetcher struct {
	client    *api.Client
	cfg       *store.Config
	ownDomain string
}

func NewHTMLFetcher(cfg *store.Config) *HTMLFetcher {
	client := api.NewClient(
		api.WithTimeout(time.Duration(cfg.Serp.TimeoutSeconds)*time.Second),
		api.WithLogging(true),
	)
	return &HTMLFetcher{
		client:    client,
		cfg:       cfg,
		ownDomain: OwnDomain(cfg.SiteURL),
	}
}

func (f *HTMLFetcher) Lookup(ctx context.Context, keyword string) (types.RankObservation, error) {
	req := api.NewRequest(http.MethodGet, f.cfg.Serp.HTML.BaseURL).
		WithContext(ctx).
		WithQueryParam(f.cfg.Serp.Params.Query, keyword)
	for k, v := range api.BrowserHeaders() {
		req.WithHeader(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return types.RankObservation{}, fmt.Errorf("lookup %q: %w: %v", keyword, types.ErrLookupFailure, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return types.RankObservation{}, fmt.Errorf("parse results page for %q: %w: %v", keyword, types.ErrLookupFailure, err)
	}

	obs := types.RankObservation{
		Keyword:    keyword,
		Rank:       types.Unranked,
		ObservedAt: time.Now(),
	}

	doc.Find(f.cfg.Serp.HTML.ResultSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= f.cfg.Serp.SearchDepth {
			return false
		}

		link := s.Find(f.cfg.Serp.HTML.LinkSelector).First()
		href, _ := link.Attr("href")
		if href == "" {
			return true
		}
		pos := i + 1

		own := f.ownDomain != "" && strings.Contains(href, f.ownDomain)
		if own {
			if !obs.Rank.Ranked() {
				obs.Rank = types.Rank(pos)
				obs.OwnURL = href
			}
			return true
		}
		if len(obs.Competitors) < maxCompetitors {
			obs.Competitors = append(obs.Competitors, types.SerpEntry{
				Position: pos,
				URL:      href,
				Title:    strings.TrimSpace(link.Text()),
			})
		}
		return true
	})

	return obs, nil
}
