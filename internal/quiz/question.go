package quiz

import (
	"strings"
	"time"
)

// OptionCount is the number of options every generated question carries.
// Stored or user-supplied questions may have fewer (never less than
// MinOptions).
const (
	OptionCount = 4
	MinOptions  = 2
)

// Question is one multiple-choice item.
type Question struct {
	// ID is the store row id. Zero for questions that were never persisted.
	ID int `json:"id,omitempty"`

	// Question is the prompt shown to the learner.
	Question string `json:"question"`

	// Options are the answer choices in display order.
	Options []string `json:"options"`

	// CorrectAnswer is the text of the correct option, not its index.
	// It must equal one entry of Options exactly.
	CorrectAnswer string `json:"correct_answer"`

	Explanation string     `json:"explanation,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
	BloomLevel  string     `json:"bloom_level,omitempty"`
	Category    string     `json:"category,omitempty"`

	// CreatedAt is set by the store.
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// CorrectIndex returns the index of CorrectAnswer in Options, or -1.
func (q Question) CorrectIndex() int {
	for i, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return i
		}
	}
	return -1
}

// Distractors returns the options that are not the correct answer,
// preserving order.
func (q Question) Distractors() []string {
	out := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		if opt != q.CorrectAnswer {
			out = append(out, opt)
		}
	}
	return out
}

// Clone returns a deep copy so callers can mutate options safely.
func (q Question) Clone() Question {
	c := q
	c.Options = append([]string(nil), q.Options...)
	return c
}

// Difficulty is the requested or per-question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"

	// DifficultyMixed is only valid on a GenerationRequest. Questions
	// generated for a mixed request carry their own level.
	DifficultyMixed Difficulty = "mixed"
)

// ParseDifficulty normalizes s and reports whether it names a known level.
// An empty string maps to DifficultyMedium.
func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case "":
		return DifficultyMedium, true
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyMixed:
		return d, true
	}
	return d, false
}

// IsQuestionLevel reports whether d is a level a single question may carry.
func (d Difficulty) IsQuestionLevel() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// QuestionType is the kind of question requested. Only multiple choice
// is supported.
type QuestionType string

const QuestionTypeMultipleChoice QuestionType = "multiple_choice"
