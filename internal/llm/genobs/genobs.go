package genobs

import (
	"context"

	"rankwatch/internal/interfaces"
	"rankwatch/internal/logger"
	"rankwatch/internal/metrics"
	"rankwatch/internal/trace"
)

// observableGenerator wraps a TextGenerator with observability (logging & tracing)
type observableGenerator struct {
	gen      interfaces.TextGenerator
	provider string
}

// Compile-time interface check
var _ interfaces.TextGenerator = (*observableGenerator)(nil)

// Wrap wraps a text generator with observability middleware. The provider
// name labels metrics and log lines.
func Wrap(gen interfaces.TextGenerator, provider string) interfaces.TextGenerator {
	return &observableGenerator{
		gen:      gen,
		provider: provider,
	}
}

// Generate produces text with observability
func (og *observableGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Generate")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting text generation",
		"provider", og.provider,
		"prompt_chars", len(prompt),
	)

	text, err := og.gen.Generate(ctx, prompt)
	if err != nil {
		metrics.RecordGeneration(og.provider, metrics.OutcomeError)
		// Use ErrorWithErrSkip(1) to report the actual caller
		logger.ErrorWithErrSkip(ctx, 1, "Failed to generate text", err,
			"provider", og.provider,
		)
		return "", err
	}

	metrics.RecordGeneration(og.provider, metrics.OutcomeOK)
	// Log result - use InfoSkip(1) to report the actual caller
	logger.InfoSkip(ctx, 1, "Text generation complete",
		"provider", og.provider,
		"response_chars", len(text),
	)

	return text, nil
}
