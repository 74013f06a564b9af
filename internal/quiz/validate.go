package quiz

import (
	"fmt"
	"strings"
)

// ValidationError describes user-correctable bad input. Its message is
// safe to show verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Problems lists every structural invariant q violates. An empty result
// means the question is well formed.
func Problems(q Question) []string {
	var out []string
	if strings.TrimSpace(q.Question) == "" {
		out = append(out, "question text is empty")
	}
	if len(q.Options) < MinOptions {
		out = append(out, fmt.Sprintf("needs at least %d options, found %d", MinOptions, len(q.Options)))
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			out = append(out, fmt.Sprintf("option %d is empty", i+1))
			continue
		}
		for j := range i {
			if sameOption(q.Options[j], opt) {
				out = append(out, fmt.Sprintf("options %d and %d are duplicates", j+1, i+1))
				break
			}
		}
	}
	if q.CorrectAnswer == "" {
		out = append(out, "correct_answer is missing")
	} else if q.CorrectIndex() < 0 {
		out = append(out, "correct_answer does not match any option")
	}
	if q.Difficulty != "" && !q.Difficulty.IsQuestionLevel() {
		out = append(out, fmt.Sprintf("difficulty %q is not easy, medium, or hard", q.Difficulty))
	}
	return out
}

// Validate returns a *ValidationError for the first structural problem
// in q, or nil.
func Validate(q Question) error {
	if p := Problems(q); len(p) > 0 {
		return &ValidationError{Field: "question", Message: p[0]}
	}
	return nil
}

// sameOption compares options after trimming and case-folding.
func sameOption(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// MatchOption finds the option that answer refers to. An exact match
// wins; otherwise a single option equal after trimming and case-folding
// is accepted. Ambiguous or missing matches return ok=false.
func MatchOption(options []string, answer string) (string, bool) {
	for _, opt := range options {
		if opt == answer {
			return opt, true
		}
	}
	want := strings.TrimSpace(answer)
	var found string
	n := 0
	for _, opt := range options {
		if sameOption(opt, want) {
			found = opt
			n++
		}
	}
	return found, n == 1
}
