package quiz

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MinTextLength is the minimum source text length in characters.
	MinTextLength = 100

	MinQuestions = 1
	MaxQuestions = 20
)

// GenerationRequest is the input to question generation.
type GenerationRequest struct {
	Text         string       `json:"text"`
	NumQuestions int          `json:"num_questions"`
	QuestionType QuestionType `json:"question_type"`
	Difficulty   Difficulty   `json:"difficulty"`
}

// Normalize fills defaults and canonicalizes enum values in place.
// It does not validate.
func (r *GenerationRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
	if d, ok := ParseDifficulty(string(r.Difficulty)); ok {
		r.Difficulty = d
	}
	qt := QuestionType(strings.ToLower(strings.TrimSpace(string(r.QuestionType))))
	switch qt {
	case "", "mcq", "multiple-choice":
		qt = QuestionTypeMultipleChoice
	}
	r.QuestionType = qt
}

// Validate checks the request shape. It returns a *ValidationError
// describing the first problem found.
func (r GenerationRequest) Validate() error {
	if n := utf8.RuneCountInString(strings.TrimSpace(r.Text)); n < MinTextLength {
		return &ValidationError{
			Field:   "text",
			Message: fmt.Sprintf("Text too short. Minimum %d characters required (got %d).", MinTextLength, n),
		}
	}
	if r.NumQuestions < MinQuestions || r.NumQuestions > MaxQuestions {
		return &ValidationError{
			Field:   "num_questions",
			Message: fmt.Sprintf("Number of questions must be between %d and %d", MinQuestions, MaxQuestions),
		}
	}
	if r.QuestionType != "" && r.QuestionType != QuestionTypeMultipleChoice {
		return &ValidationError{
			Field:   "question_type",
			Message: fmt.Sprintf("Unsupported question type %q. Only %q is supported.", r.QuestionType, QuestionTypeMultipleChoice),
		}
	}
	if _, ok := ParseDifficulty(string(r.Difficulty)); !ok {
		return &ValidationError{
			Field:   "difficulty",
			Message: fmt.Sprintf("Unknown difficulty %q. Use easy, medium, hard, or mixed.", r.Difficulty),
		}
	}
	return nil
}
