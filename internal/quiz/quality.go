package quiz

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/quizgen/internal/textproc"
)

// QualityReport is the heuristic quality assessment of one question.
// It is advisory; Problems decides structural validity.
type QualityReport struct {
	Score    int            `json:"score"`
	Feedback string         `json:"feedback"`
	Metrics  QualityMetrics `json:"quality_metrics"`
}

// QualityMetrics are the raw measurements behind a QualityReport.
type QualityMetrics struct {
	QuestionLength    int    `json:"question_length"`
	OptionCount       int    `json:"option_count"`
	ExplanationLength int    `json:"explanation_length"`
	HasQuestionMark   bool   `json:"has_question_mark"`
	UniqueOptions     bool   `json:"unique_options"`
	DistractorQuality int    `json:"distractor_quality,omitempty"`
	BloomLevel        string `json:"bloom_level"`
}

// Assess scores q from 0 to 100, deducting for common item-writing flaws.
func Assess(q Question) QualityReport {
	score := 100
	var feedback []string
	deduct := func(points int, msg string) {
		score -= points
		feedback = append(feedback, msg)
	}

	text := strings.TrimSpace(q.Question)
	qLen := utf8.RuneCountInString(text)
	m := QualityMetrics{
		QuestionLength:    qLen,
		OptionCount:       len(q.Options),
		ExplanationLength: utf8.RuneCountInString(q.Explanation),
		HasQuestionMark:   strings.HasSuffix(text, "?"),
		UniqueOptions:     uniqueOptions(q.Options),
		BloomLevel:        textproc.ClassifyBloom(text),
	}

	if !m.HasQuestionMark {
		deduct(10, "Question should end with question mark")
	}
	if qLen < 10 {
		deduct(20, "Question too short")
	}
	if qLen > 200 {
		deduct(10, "Question too long")
	}
	if len(q.Options) != OptionCount {
		deduct(30, fmt.Sprintf("Should have %d options, found %d", OptionCount, len(q.Options)))
	}
	if q.CorrectIndex() < 0 {
		deduct(40, "Correct answer not found in options")
	}
	if !m.UniqueOptions {
		deduct(25, "Duplicate options found")
	}
	if avgLen(q.Options) < 5 {
		deduct(15, "Options too short")
	}
	if m.ExplanationLength < 10 {
		deduct(10, "Explanation too short")
	}
	if len(q.Options) >= OptionCount {
		m.DistractorQuality = distractorQuality(q)
		if m.DistractorQuality < 50 {
			deduct(20, "Poor quality distractors")
		}
	}

	score = max(0, min(100, score))
	fb := "Good quality question"
	if len(feedback) > 0 {
		fb = strings.Join(feedback, "; ")
	}
	return QualityReport{Score: score, Feedback: fb, Metrics: m}
}

func uniqueOptions(opts []string) bool {
	seen := make(map[string]struct{}, len(opts))
	for _, o := range opts {
		if _, ok := seen[o]; ok {
			return false
		}
		seen[o] = struct{}{}
	}
	return true
}

func avgLen(opts []string) float64 {
	if len(opts) == 0 {
		return 0
	}
	total := 0
	for _, o := range opts {
		total += utf8.RuneCountInString(o)
	}
	return float64(total) / float64(len(opts))
}

// distractorQuality rates how well wrong options blend in with the
// correct one. A distractor whose length is within half to double the
// correct answer's length does not give the answer away.
func distractorQuality(q Question) int {
	ds := q.Distractors()
	if len(ds) == 0 {
		return 0
	}
	ref := float64(max(1, utf8.RuneCountInString(q.CorrectAnswer)))
	good := 0
	for _, d := range ds {
		ratio := float64(utf8.RuneCountInString(d)) / ref
		if ratio >= 0.5 && ratio <= 2 {
			good++
		}
	}
	return good * 100 / len(ds)
}
