package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizgen/internal/quiz"
	"github.com/abhisek/quizgen/internal/store"
)

var exportTime = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func questions() []quiz.Question {
	return []quiz.Question{
		{
			Question:      "Which gas do plants absorb?",
			Options:       []string{"Oxygen", "Carbon dioxide", "Nitrogen", "Helium"},
			CorrectAnswer: "Carbon dioxide",
			Explanation:   "Plants take in CO2, releasing oxygen.",
			Difficulty:    quiz.DifficultyEasy,
			BloomLevel:    "remember",
			Category:      "science",
		},
		{
			Question:      "What is 2+2? {test}",
			Options:       []string{"3", "4"},
			CorrectAnswer: "4",
			Difficulty:    quiz.DifficultyMedium,
		},
		{
			Question:      "Pick the markup: a ~ b = c # d : e \\ f",
			Options:       []string{"<tag> & \"quote\"", "x, y", "=eq", "~tilde"},
			CorrectAnswer: "=eq",
			Explanation:   "Line one\nLine two",
			Difficulty:    quiz.DifficultyHard,
		},
	}
}

func TestParseTarget(t *testing.T) {
	for in, want := range map[string]Target{
		"json": TargetJSON, "CSV": TargetCSV, "moodle": TargetMoodle,
		"moodle_xml": TargetMoodle, "xml": TargetMoodle, " Gift ": TargetGIFT,
	} {
		got, err := ParseTarget(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTarget("pdf")
	reason, ok := ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, ReasonUnsupportedFormat, reason)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "quiz_export_json_20260314_150926.json", Filename(TargetJSON, exportTime))
	assert.Equal(t, "quiz_export_moodle_20260314_150926.xml", Filename(TargetMoodle, exportTime))
	assert.Equal(t, "quiz_export_gift_20260314_150926.gift", Filename(TargetGIFT, exportTime))
}

func TestFormat_EmptyProducesNothing(t *testing.T) {
	for _, target := range Targets {
		f, err := Format(nil, target, exportTime)
		assert.Nil(t, f)
		reason, _ := ReasonOf(err)
		assert.Equal(t, ReasonEmpty, reason, target)
	}
}

func TestFormat_UnknownTarget(t *testing.T) {
	f, err := Format(questions(), Target("pdf"), exportTime)
	assert.Nil(t, f)
	reason, _ := ReasonOf(err)
	assert.Equal(t, ReasonUnsupportedFormat, reason)
}

func TestJSON_RoundTrip(t *testing.T) {
	f, err := Format(questions(), TargetJSON, exportTime)
	require.NoError(t, err)
	assert.Equal(t, "application/json", f.MIMEType)
	assert.Contains(t, string(f.Data), `"exported_at": "2026-03-14T15:09:26Z"`)
	assert.Contains(t, string(f.Data), `"count": 3`)

	got, err := ParseJSON(f.Data)
	require.NoError(t, err)
	assert.Equal(t, questions(), got)
}

func TestParseJSON_CountMismatch(t *testing.T) {
	_, err := ParseJSON([]byte(`{"count": 2, "questions": []}`))
	assert.Error(t, err)
}

func TestCSV(t *testing.T) {
	f, err := Format(questions()[:2], TargetCSV, exportTime)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(f.Data), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "question,option_a,option_b,option_c,option_d,correct_answer,explanation,difficulty", lines[0])
	assert.Contains(t, lines[1], `"Plants take in CO2, releasing oxygen."`)
	assert.Equal(t, "What is 2+2? {test},3,4,,,4,,medium", lines[2])
}

func TestCSV_QuotedFieldsParse(t *testing.T) {
	f, err := Format(questions(), TargetCSV, exportTime)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(f.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "x, y", rows[3][2])
	assert.Equal(t, "Line one\nLine two", rows[3][6])
	assert.Equal(t, "hard", rows[3][7])
}

func TestMoodle(t *testing.T) {
	f, err := Format(questions(), TargetMoodle, exportTime)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(f.Data), `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, string(f.Data), "&lt;tag&gt; &amp; &#34;quote&#34;")

	var doc moodleQuiz
	require.NoError(t, xml.Unmarshal(f.Data, &doc))
	require.Len(t, doc.Questions, 3)

	first := doc.Questions[0]
	assert.Equal(t, "multichoice", first.Type)
	assert.Equal(t, "Which gas do plants absorb?", first.QuestionText.Text)
	assert.Equal(t, "Plants take in CO2, releasing oxygen.", first.GeneralFeedback.Text)
	require.Len(t, first.Answers, 4)
	for i, a := range first.Answers {
		want := 0
		if i == 1 {
			want = 100
		}
		assert.Equal(t, want, a.Fraction, a.Text)
	}

	assert.Equal(t, "<tag> & \"quote\"", doc.Questions[2].Answers[0].Text)
}

func TestGIFT_EscapesBraces(t *testing.T) {
	f, err := Format(questions()[1:2], TargetGIFT, exportTime)
	require.NoError(t, err)
	out := string(f.Data)

	assert.Contains(t, out, `What is 2+2? \{test\}`)
	assert.Contains(t, out, "=4\n")
	assert.Contains(t, out, "~3\n")
}

func TestGIFT_RoundTrip(t *testing.T) {
	f, err := Format(questions(), TargetGIFT, exportTime)
	require.NoError(t, err)
	out := string(f.Data)

	assert.Contains(t, out, `a \~ b \= c \# d \: e \\ f`)
	assert.Contains(t, out, `####Line one\nLine two`)

	got, err := ParseGIFT(f.Data)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, want := range questions() {
		assert.Equal(t, want.Question, got[i].Question)
		assert.Equal(t, want.Options, got[i].Options)
		assert.Equal(t, want.CorrectAnswer, got[i].CorrectAnswer)
		assert.Equal(t, want.Explanation, got[i].Explanation)
		assert.Equal(t, want.Difficulty, got[i].Difficulty)
	}
}

func TestGIFT_KeepsCarriageReturnsAndEdgeSpaces(t *testing.T) {
	in := []quiz.Question{{
		Question:      "  Which line ending is Windows?\t",
		Options:       []string{"\\n", "\r\n", "Paris ", " \\"},
		CorrectAnswer: "\r\n",
		Explanation:   "Line one\r\nLine two ",
		Difficulty:    quiz.DifficultyMedium,
	}}
	f, err := Format(in, TargetGIFT, exportTime)
	require.NoError(t, err)
	out := string(f.Data)
	assert.NotContains(t, out, "\r")
	assert.Contains(t, out, `=\r\n`)
	assert.Contains(t, out, `~Paris\ `)

	got, err := ParseGIFT(f.Data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, in[0].Question, got[0].Question)
	assert.Equal(t, in[0].Options, got[0].Options)
	assert.Equal(t, in[0].CorrectAnswer, got[0].CorrectAnswer)
	assert.Equal(t, in[0].Explanation, got[0].Explanation)
}

func TestTrimGIFT(t *testing.T) {
	for in, want := range map[string]string{
		"  a b  ":  "a b",
		`a\ `:      `a\ `,
		`a\\ `:     `a\\`,
		"\t\\\t\t": "\\\t",
		"":         "",
	} {
		assert.Equal(t, want, trimGIFT(in), "%q", in)
	}
}

func TestParseGIFT_Errors(t *testing.T) {
	for name, in := range map[string]string{
		"unterminated": "::Q1:: Text {\n=a\n",
		"no block":     "::Q1:: Text\n",
		"junk line":    "::Q1:: Text {\n=a\nnonsense\n}\n",
	} {
		_, err := ParseGIFT([]byte(in))
		assert.Error(t, err, name)
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = Run(ctx, s.QuestionRepo(), Job{Target: TargetJSON}, exportTime)
	reason, _ := ReasonOf(err)
	assert.Equal(t, ReasonEmpty, reason)

	require.NoError(t, s.QuestionRepo().Append(ctx, questions(), store.GenerationMeta{Difficulty: quiz.DifficultyMixed}))

	f, err := Run(ctx, s.QuestionRepo(), Job{Target: TargetGIFT, Limit: 2}, exportTime)
	require.NoError(t, err)
	got, err := ParseGIFT(f.Data)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = Run(ctx, s.QuestionRepo(), Job{Target: TargetCSV, Limit: MaxLimit + 1}, exportTime)
	reason, _ = ReasonOf(err)
	assert.Equal(t, ReasonInvalidLimit, reason)
}

func TestRun_StoreUnavailable(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	repo := s.QuestionRepo()
	require.NoError(t, s.Close())

	f, err := Run(context.Background(), repo, Job{Target: TargetCSV}, exportTime)
	assert.Nil(t, f)
	reason, _ := ReasonOf(err)
	assert.Equal(t, ReasonStoreUnavailable, reason)
}
