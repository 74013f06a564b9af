package export

import (
	"bytes"
	"encoding/csv"

	"github.com/abhisek/quizgen/internal/quiz"
)

var csvHeader = []string{
	"question", "option_a", "option_b", "option_c", "option_d",
	"correct_answer", "explanation", "difficulty",
}

// encodeCSV writes one row per question. Options are padded or cut to
// quiz.OptionCount columns.
func encodeCSV(questions []quiz.Question) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, q := range questions {
		row := make([]string, 0, len(csvHeader))
		row = append(row, q.Question)
		for i := range quiz.OptionCount {
			var opt string
			if i < len(q.Options) {
				opt = q.Options[i]
			}
			row = append(row, opt)
		}
		row = append(row, q.CorrectAnswer, q.Explanation, string(q.Difficulty))
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
