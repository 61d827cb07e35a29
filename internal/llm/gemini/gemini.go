package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"rankwatch/internal/logger"
	"rankwatch/internal/store"
	"rankwatch/internal/trace"
)

// Generator produces narratives through the Gemini API.
type Generator struct {
	client *genai.Client
	cfg    *store.Config
}

func New(ctx context.Context, cfg *store.Config) (*Generator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY missing")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Generator{client: client, cfg: cfg}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "gemini-generate")
	defer span.End()

	model := g.client.GenerativeModel(g.cfg.LLM.Model)
	model.SetTemperature(g.cfg.LLM.Temperature)
	model.SetMaxOutputTokens(int32(g.cfg.LLM.MaxTokens))

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	logger.Debug(ctx, "Gemini response received",
		"model", g.cfg.LLM.Model,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		if txt, ok := resp.Candidates[0].Content.Parts[0].(genai.Text); ok {
			return string(txt), nil
		}
	}

	return "", errors.New("no response candidates or content")
}

// Close releases the underlying API connection.
func (g *Generator) Close() error {
	return g.client.Close()
}
