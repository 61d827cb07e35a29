package serp

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"rankwatch/internal/api"
	"rankwatch/internal/store"
	"rankwatch/internal/types"
)

// HTTPFetcher queries a JSON SERP API. Parameter names are configurable
// so different providers (SerpAPI-style and close clones) work without
// code changes.
type HTTPFetcher struct {
	client    *api.Client
	cfg       *store.Config
	ownDomain string
}

func NewHTTPFetcher(cfg *store.Config) *HTTPFetcher {
	client := api.NewClient(
		api.WithTimeout(time.Duration(cfg.Serp.TimeoutSeconds)*time.Second),
		api.WithLogging(true),
	)
	return &HTTPFetcher{
		client:    client,
		cfg:       cfg,
		ownDomain: OwnDomain(cfg.SiteURL),
	}
}

func (f *HTTPFetcher) Lookup(ctx context.Context, keyword string) (types.RankObservation, error) {
	req := api.NewRequest(http.MethodGet, f.cfg.Serp.Endpoint).
		WithContext(ctx).
		WithQueryParam(f.cfg.Serp.Params.Query, keyword).
		WithQueryParam("engine", f.cfg.Serp.Engine).
		WithQueryParam(f.cfg.Serp.Params.Num, strconv.Itoa(f.cfg.Serp.SearchDepth))

	if key := os.Getenv("SERP_API_KEY"); key != "" {
		req.WithQueryParam(f.cfg.Serp.Params.APIKey, key)
	}
	if f.cfg.Serp.Location != "" {
		req.WithQueryParam("location", f.cfg.Serp.Location)
	}
	if f.cfg.Serp.Language != "" {
		req.WithQueryParam("hl", f.cfg.Serp.Language)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return types.RankObservation{}, fmt.Errorf("lookup %q: %w: %v", keyword, types.ErrLookupFailure, err)
	}

	return ParseResponse(keyword, f.ownDomain, resp.Body, time.Now())
}
