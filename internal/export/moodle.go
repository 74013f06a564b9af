package export

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/abhisek/quizgen/internal/quiz"
)

type moodleQuiz struct {
	XMLName   xml.Name         `xml:"quiz"`
	Questions []moodleQuestion `xml:"question"`
}

type moodleQuestion struct {
	Type            string         `xml:"type,attr"`
	Name            moodleText     `xml:"name"`
	QuestionText    moodleText     `xml:"questiontext"`
	GeneralFeedback moodleText     `xml:"generalfeedback"`
	DefaultGrade    string         `xml:"defaultgrade"`
	Penalty         string         `xml:"penalty"`
	Hidden          int            `xml:"hidden"`
	Single          bool           `xml:"single"`
	ShuffleAnswers  bool           `xml:"shuffleanswers"`
	AnswerNumbering string         `xml:"answernumbering"`
	Tags            *moodleTags    `xml:"tags,omitempty"`
	Answers         []moodleAnswer `xml:"answer"`
}

type moodleText struct {
	Format string `xml:"format,attr,omitempty"`
	Text   string `xml:"text"`
}

type moodleAnswer struct {
	Fraction int        `xml:"fraction,attr"`
	Format   string     `xml:"format,attr"`
	Text     string     `xml:"text"`
	Feedback moodleText `xml:"feedback"`
}

type moodleTags struct {
	Tags []moodleText `xml:"tag"`
}

const moodleFormat = "plain_text"

// encodeMoodle renders a Moodle XML question bank. Every option becomes
// an answer worth 100 if correct and 0 otherwise.
func encodeMoodle(questions []quiz.Question) ([]byte, error) {
	doc := moodleQuiz{Questions: make([]moodleQuestion, len(questions))}
	for i, q := range questions {
		mq := moodleQuestion{
			Type:            "multichoice",
			Name:            moodleText{Text: fmt.Sprintf("Question %d", i+1)},
			QuestionText:    moodleText{Format: moodleFormat, Text: q.Question},
			GeneralFeedback: moodleText{Format: moodleFormat, Text: q.Explanation},
			DefaultGrade:    "1.0000000",
			Penalty:         "0.3333333",
			Single:          true,
			ShuffleAnswers:  true,
			AnswerNumbering: "abc",
		}
		var tags []moodleText
		for _, t := range []string{string(q.Difficulty), q.BloomLevel, q.Category} {
			if t != "" {
				tags = append(tags, moodleText{Text: t})
			}
		}
		if len(tags) > 0 {
			mq.Tags = &moodleTags{Tags: tags}
		}
		for _, opt := range q.Options {
			a := moodleAnswer{Format: moodleFormat, Text: opt}
			if opt == q.CorrectAnswer {
				a.Fraction = 100
				a.Feedback = moodleText{Format: moodleFormat, Text: "Correct!"}
			} else {
				a.Feedback = moodleText{Format: moodleFormat, Text: "Incorrect."}
			}
			mq.Answers = append(mq.Answers, a)
		}
		doc.Questions[i] = mq
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
