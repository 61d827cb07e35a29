package serp

import (
	"fmt"

	"rankwatch/internal/interfaces"
	"rankwatch/internal/store"
)

// New builds the rank fetcher named by the configuration.
func New(cfg *store.Config) (interfaces.RankFetcher, error) {
	switch cfg.Serp.Provider {
	case "HTTP":
		return NewHTTPFetcher(cfg), nil
	case "HTML":
		return NewHTMLFetcher(cfg), nil
	case "MOCK":
		return NewMockFetcher(cfg), nil
	default:
		return nil, fmt.Errorf("unknown serp provider %q", cfg.Serp.Provider)
	}
}
