package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizgen/internal/quiz"
	"github.com/abhisek/quizgen/internal/textproc"
)

const systemPrompt = `You are an expert educational content creator writing multiple choice quizzes.

Rules:
- Base every question on the source text. Do not test outside knowledge.
- Each question has exactly 4 options and exactly one correct answer.
- correct_answer must repeat the text of the correct option exactly.
- Distractors must be plausible but clearly wrong once the text is understood.
- Do not prefix options with letters such as "A)" or "B.".
- The explanation says why the correct answer is right, referring to the text.
- Return JSON only, shaped as {"questions": [...]}.`

// sourceMarker precedes the source text in the user message.
const sourceMarker = "Source text:\n"

// buildUserMessage describes the request and embeds the cleaned source text.
func buildUserMessage(req quiz.GenerationRequest, cfg Config) string {
	text := textproc.Clean(req.Text)
	if cfg.MaxSourceRunes > 0 {
		if r := []rune(text); len(r) > cfg.MaxSourceRunes {
			text = string(r[:cfg.MaxSourceRunes])
		}
	}

	difficulty := string(req.Difficulty)
	var b strings.Builder

	fmt.Fprintf(&b, "Number of questions: %d\n", req.NumQuestions)
	fmt.Fprintf(&b, "Subject area: %s\n", textproc.DetectSubject(text))
	fmt.Fprintf(&b, "Difficulty: %s\n", difficulty)
	fmt.Fprintf(&b, "Bloom's taxonomy levels: %s\n", strings.Join(textproc.BloomLevels(difficulty), ", "))
	fmt.Fprintf(&b, "Test %s\n", textproc.Focus(difficulty))
	if req.Difficulty == quiz.DifficultyMixed {
		b.WriteString("Label each question with its own difficulty: easy, medium or hard.\n")
	} else {
		fmt.Fprintf(&b, "Label every question with difficulty %q.\n", difficulty)
	}

	b.WriteString("\n")
	b.WriteString(sourceMarker)
	b.WriteString(text)

	return b.String()
}

// sourceText recovers the source text from a user message built by
// buildUserMessage.
func sourceText(msg string) string {
	if i := strings.Index(msg, sourceMarker); i >= 0 {
		return msg[i+len(sourceMarker):]
	}
	return msg
}
