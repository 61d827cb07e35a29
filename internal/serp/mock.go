package serp

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"rankwatch/internal/logger"
	"rankwatch/internal/store"
	"rankwatch/internal/types"
)

// MockFetcher serves fixed ranks for dry runs. Keywords absent from the
// table come back unranked. A small synthetic competitor list keeps
// prompts and reports rendering realistically.
type MockFetcher struct {
	ranks     map[string]int
	ownDomain string
}

func NewMockFetcher(cfg *store.Config) *MockFetcher {
	return &MockFetcher{
		ranks:     cfg.Serp.Mock,
		ownDomain: OwnDomain(cfg.SiteURL),
	}
}

func (m *MockFetcher) Lookup(ctx context.Context, keyword string) (types.RankObservation, error) {
	rank := types.Unranked
	if n, ok := m.ranks[keyword]; ok && n > 0 {
		rank = types.Rank(n)
	}
	logger.Debug(ctx, "Mock rank served", "keyword", keyword, "rank", rank.String())

	obs := types.RankObservation{
		Keyword:    keyword,
		Rank:       rank,
		ObservedAt: time.Now(),
	}
	if rank.Ranked() {
		obs.OwnURL = "https://" + m.ownDomain + "/"
	}
	for i := 1; i <= 3; i++ {
		obs.Competitors = append(obs.Competitors, types.SerpEntry{
			Position: i,
			URL:      fmt.Sprintf("https://competitor-%d.example/%s", i, url.PathEscape(keyword)),
			Title:    fmt.Sprintf("Result %d for %s", i, keyword),
		})
	}
	return obs, nil
}
