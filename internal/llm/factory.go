package llm

import (
	"context"

	"rankwatch/internal/interfaces"
	"rankwatch/internal/llm/claude"
	"rankwatch/internal/llm/gemini"
	"rankwatch/internal/llm/noop"
	"rankwatch/internal/llm/openai"
	"rankwatch/internal/logger"
	"rankwatch/internal/store"
)

// New returns the text generator selected by llm.provider. An unknown
// provider falls back to the noop generator so a misconfigured bot still
// reports rank movements, just without narratives.
func New(ctx context.Context, cfg *store.Config) (interfaces.TextGenerator, error) {
	switch cfg.LLM.Provider {
	case "GEMINI":
		return gemini.New(ctx, cfg)
	case "OPENAI":
		return openai.New(cfg), nil
	case "CLAUDE":
		return claude.New(cfg), nil
	case "NOOP":
		return noop.New(), nil
	default:
		logger.Warn(ctx, "No LLM provider configured - using noop generator",
			"provider", cfg.LLM.Provider,
		)
		return noop.New(), nil
	}
}
