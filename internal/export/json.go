package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/quizgen/internal/quiz"
)

// Envelope is the JSON export document.
type Envelope struct {
	ExportedAt time.Time       `json:"exported_at"`
	Count      int             `json:"count"`
	Questions  []quiz.Question `json:"questions"`
}

func encodeJSON(questions []quiz.Question, now time.Time) ([]byte, error) {
	return json.MarshalIndent(Envelope{
		ExportedAt: now.UTC(),
		Count:      len(questions),
		Questions:  questions,
	}, "", "  ")
}

// ParseJSON reads a JSON export back into its questions.
func ParseJSON(data []byte) ([]quiz.Question, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse json export: %w", err)
	}
	if env.Count != len(env.Questions) {
		return nil, fmt.Errorf("parse json export: count %d does not match %d questions", env.Count, len(env.Questions))
	}
	return env.Questions, nil
}
