package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/quizgen/internal/llm"
	"github.com/abhisek/quizgen/internal/quiz"
	"github.com/abhisek/quizgen/internal/textproc"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

var _ Generator = (*LLMGenerator)(nil)

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// ModelID reports the model behind the generator.
func (g *LLMGenerator) ModelID() string {
	return g.provider.ModelID()
}

// Generate makes a single model call and parses its answer.
func (g *LLMGenerator) Generate(ctx context.Context, req quiz.GenerationRequest) ([]quiz.Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGeneration)

	llmReq := llm.Prompt(systemPrompt, buildUserMessage(req, g.config), QuestionsSchema)
	llmReq.MaxTokens = g.config.MaxTokens
	llmReq.Temperature = g.config.Temperature

	content, err := g.call(ctx, llmReq)
	if err != nil {
		return nil, err
	}

	items, err := parseOutput(content)
	if err != nil {
		return nil, malformed("%w", err)
	}
	if len(items) < req.NumQuestions {
		return nil, malformed("model returned %d questions, %d requested", len(items), req.NumQuestions)
	}
	items = items[:req.NumQuestions]

	subject := textproc.DetectSubject(req.Text)
	out := make([]quiz.Question, 0, len(items))
	for i, item := range items {
		q, err := toQuestion(item, req.Difficulty, bloomFor, subject)
		if err != nil {
			return nil, malformed("question %d: %w", i+1, err)
		}
		out = append(out, q)
	}
	return out, nil
}

// call invokes the provider once. A response the provider rejected for
// not matching the schema is handed back for lenient parsing; every
// other failure is terminal.
func (g *LLMGenerator) call(ctx context.Context, req llm.Request) (json.RawMessage, error) {
	resp, err := g.provider.Generate(ctx, req)
	if err == nil {
		return resp.Content, nil
	}

	if llm.KindOf(err) == llm.KindMalformed {
		// Schema misses still carry the raw answer, which the parser may
		// be able to salvage.
		var inv *llm.ErrInvalidResponse
		if errors.As(err, &inv) && len(inv.Content) > 0 {
			return inv.Content, nil
		}
		return nil, &GenerationError{Reason: ReasonMalformedResponse, Err: err}
	}
	return nil, &GenerationError{Reason: ReasonModelUnavailable, Err: fmt.Errorf("LLM generation failed: %w", err)}
}

func bloomFor(d quiz.Difficulty) string {
	return textproc.PrimaryBloom(string(d))
}
