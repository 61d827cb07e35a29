package noop

import (
	"context"

	"rankwatch/internal/logger"
)

// Generator is a fallback text generator used when no LLM provider is
// configured. It returns a fixed placeholder so the rest of the pipeline
// keeps working in dry runs and local development.
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	logger.Debug(ctx, "Noop generator called - returning placeholder text",
		"prompt_chars", len(prompt),
	)
	return "Automatic analysis is disabled. Review the ranking movement manually.", nil
}
