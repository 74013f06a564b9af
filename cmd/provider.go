package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/quizgen/internal/llm"
	"github.com/abhisek/quizgen/internal/questiongen"
	"github.com/abhisek/quizgen/internal/store"
)

// newProvider builds the configured model provider with call logging to
// events. The mock provider answers every request with sample questions
// drawn from the source text.
func newProvider(ctx context.Context, events store.EventRepo) (llm.Provider, llm.Config, error) {
	cfg := llm.ConfigFromEnv()
	p, err := llm.NewProvider(ctx, cfg, events)
	if err != nil {
		return nil, cfg, fmt.Errorf("%w (or set QUIZGEN_LLM_PROVIDER=mock)", err)
	}
	if m, ok := p.(*llm.MockProvider); ok {
		m.Fallback = questiongen.MockFallback
	}
	return p, cfg, nil
}
