package questiongen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/quizgen/internal/quiz"
)

// questionOutput is one question as the model returns it.
type questionOutput struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty"`
	BloomLevel    string   `json:"bloom_level"`
	Category      string   `json:"category"`
}

// parseOutput extracts question objects from raw model output. It
// accepts the schema's {"questions": [...]} envelope, a bare array, and
// either of those wrapped in a markdown code fence or surrounded by
// prose.
func parseOutput(raw []byte) ([]questionOutput, error) {
	text := stripFences(strings.TrimSpace(string(raw)))
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}

	if strings.HasPrefix(text, "{") {
		var env struct {
			Questions *[]questionOutput `json:"questions"`
		}
		if err := json.Unmarshal([]byte(text), &env); err == nil {
			if env.Questions == nil {
				return nil, fmt.Errorf("response object has no questions field")
			}
			return *env.Questions, nil
		}
	}

	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var out []questionOutput
	dec := json.NewDecoder(bytes.NewReader([]byte(text[start : end+1])))
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode question array: %w", err)
	}
	return out, nil
}

// stripFences removes a surrounding ``` or ```json fence.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "[{") {
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// toQuestion converts model output into a quiz.Question, applying the
// requested difficulty and repairing a correct answer that differs from
// its option only in case or surrounding whitespace. Generated questions
// must carry exactly quiz.OptionCount distinct options.
func toQuestion(o questionOutput, requested quiz.Difficulty, fallbackBloom func(quiz.Difficulty) string, subject string) (quiz.Question, error) {
	q := quiz.Question{
		Question:      strings.TrimSpace(o.Question),
		Options:       o.Options,
		CorrectAnswer: o.CorrectAnswer,
		Explanation:   strings.TrimSpace(o.Explanation),
		BloomLevel:    strings.ToLower(strings.TrimSpace(o.BloomLevel)),
		Category:      strings.TrimSpace(o.Category),
	}

	if requested == quiz.DifficultyMixed {
		d, ok := quiz.ParseDifficulty(o.Difficulty)
		if !ok || !d.IsQuestionLevel() {
			d = quiz.DifficultyMedium
		}
		q.Difficulty = d
	} else {
		q.Difficulty = requested
	}

	if match, ok := quiz.MatchOption(q.Options, q.CorrectAnswer); ok {
		q.CorrectAnswer = match
	}

	if q.BloomLevel == "" {
		q.BloomLevel = fallbackBloom(q.Difficulty)
	}
	if q.Category == "" {
		q.Category = subject
	}

	if err := quiz.Validate(q); err != nil {
		return quiz.Question{}, err
	}
	if len(q.Options) != quiz.OptionCount {
		return quiz.Question{}, fmt.Errorf("expected %d options, found %d", quiz.OptionCount, len(q.Options))
	}
	return q, nil
}
