package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"rankwatch/internal/llm/claude"
	"rankwatch/internal/llm/genobs"
	"rankwatch/internal/llm/noop"
	"rankwatch/internal/llm/openai"
	"rankwatch/internal/store"
)

type MockGenerator struct {
	Response string
	Err      error
	Prompts  []string
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func testConfig(provider string) *store.Config {
	cfg := &store.Config{}
	cfg.LLM.Provider = provider
	cfg.LLM.Model = "test-model"
	cfg.LLM.MaxTokens = 256
	return cfg
}

func TestNewSelectsProvider(t *testing.T) {
	ctx := context.Background()

	gen, err := New(ctx, testConfig("NOOP"))
	assert.NoError(t, err)
	assert.IsType(t, &noop.Generator{}, gen)

	gen, err = New(ctx, testConfig("OPENAI"))
	assert.NoError(t, err)
	assert.IsType(t, &openai.Generator{}, gen)

	gen, err = New(ctx, testConfig("CLAUDE"))
	assert.NoError(t, err)
	assert.IsType(t, &claude.Generator{}, gen)
}

func TestNewUnknownProviderFallsBackToNoop(t *testing.T) {
	gen, err := New(context.Background(), testConfig("SOMETHING_ELSE"))
	assert.NoError(t, err)
	assert.IsType(t, &noop.Generator{}, gen)
}

func TestNewGeminiRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := New(context.Background(), testConfig("GEMINI"))
	assert.Error(t, err)
}

func TestNoopGeneratorAlwaysAnswers(t *testing.T) {
	gen := noop.New()

	text, err := gen.Generate(context.Background(), "why did the rank drop?")
	assert.NoError(t, err)
	assert.NotEmpty(t, text)
}

func TestGenobsPassesThrough(t *testing.T) {
	mock := &MockGenerator{Response: "the page lost its snippet"}
	wrapped := genobs.Wrap(mock, "MOCK")

	text, err := wrapped.Generate(context.Background(), "explain the decline")
	assert.NoError(t, err)
	assert.Equal(t, "the page lost its snippet", text)
	assert.Equal(t, []string{"explain the decline"}, mock.Prompts)
}

func TestGenobsPropagatesError(t *testing.T) {
	mock := &MockGenerator{Err: errors.New("quota exhausted")}
	wrapped := genobs.Wrap(mock, "MOCK")

	_, err := wrapped.Generate(context.Background(), "explain the decline")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "quota exhausted")
}
