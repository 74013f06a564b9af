package questiongen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/quizgen/internal/llm"
	"github.com/abhisek/quizgen/internal/quiz"
	"github.com/abhisek/quizgen/internal/textproc"
)

// SampleQuestions builds n placeholder questions from the longer words
// of text. They let the server and client run end to end without model
// credentials.
func SampleQuestions(text string, n int) []quiz.Question {
	terms := keyTerms(text, 10)
	for _, filler := range []string{"concept", "topic", "subject", "theme"} {
		if len(terms) >= quiz.OptionCount {
			break
		}
		if !slices.ContainsFunc(terms, func(t string) bool { return strings.EqualFold(t, filler) }) {
			terms = append(terms, filler)
		}
	}

	out := make([]quiz.Question, n)
	for i := range out {
		term := terms[i%len(terms)]
		opts := make([]string, quiz.OptionCount)
		for j := range opts {
			opts[j] = fmt.Sprintf("Related to %s", terms[(i+j)%len(terms)])
		}
		out[i] = quiz.Question{
			Question:      fmt.Sprintf("What is the significance of %s in the given context?", term),
			Options:       opts,
			CorrectAnswer: opts[0],
			Explanation:   "Sample question generated without a model.",
			Difficulty:    quiz.DifficultyMedium,
			BloomLevel:    textproc.BloomUnderstand,
			Category:      "sample",
		}
	}
	return out
}

// MockFallback answers question generation requests on a MockProvider
// with sample questions. The generator truncates to the requested count.
func MockFallback(req llm.Request) llm.MockResponse {
	var text string
	if len(req.Messages) > 0 {
		text = sourceText(req.Messages[len(req.Messages)-1].Content)
	}
	qs := SampleQuestions(text, quiz.MaxQuestions)
	out := make([]questionOutput, len(qs))
	for i, q := range qs {
		out[i] = questionOutput{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Difficulty:    string(q.Difficulty),
			BloomLevel:    q.BloomLevel,
			Category:      q.Category,
		}
	}
	return llm.MockJSON(map[string]any{"questions": out})
}

func keyTerms(text string, max int) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,!?;:\"'()[]")
		if len([]rune(w)) <= 5 || seen[strings.ToLower(w)] {
			continue
		}
		seen[strings.ToLower(w)] = true
		terms = append(terms, w)
		if len(terms) == max {
			break
		}
	}
	return terms
}
