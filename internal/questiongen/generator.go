// Package questiongen turns source text into multiple-choice questions
// using an LLM provider.
package questiongen

import (
	"context"
	"fmt"

	"github.com/abhisek/quizgen/internal/quiz"
)

// Generator produces quiz questions from source text.
type Generator interface {
	// Generate returns exactly req.NumQuestions structurally valid
	// questions, or a *GenerationError. The request must already be
	// normalized and validated.
	Generate(ctx context.Context, req quiz.GenerationRequest) ([]quiz.Question, error)
}

// Reason classifies a generation failure.
type Reason string

const (
	// ReasonModelUnavailable means the model could not be reached or
	// refused the call.
	ReasonModelUnavailable Reason = "model_unavailable"

	// ReasonMalformedResponse means the model answered but the answer is
	// not a list of well-formed questions.
	ReasonMalformedResponse Reason = "malformed_response"
)

// GenerationError describes why generation failed. Err carries the
// underlying cause for logs; it is not meant for end users.
type GenerationError struct {
	Reason Reason
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("question generation failed: %s", e.Reason)
	}
	return fmt.Sprintf("question generation failed: %s: %v", e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func malformed(format string, args ...any) *GenerationError {
	return &GenerationError{Reason: ReasonMalformedResponse, Err: fmt.Errorf(format, args...)}
}
