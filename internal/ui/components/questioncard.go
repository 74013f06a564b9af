package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizgen/internal/quiz"
	"github.com/abhisek/quizgen/internal/ui/theme"
)

var optionLabels = []string{"A", "B", "C", "D", "E", "F"}

// QuestionCard renders one question with its options, marking the
// correct answer.
type QuestionCard struct {
	Number   int
	Question quiz.Question
	Focused  bool
}

// View renders the card at the given width.
func (c QuestionCard) View(width int) string {
	inner := max(10, width-4)
	var b strings.Builder

	title := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(inner).
		Render(fmt.Sprintf("%d. %s", c.Number, c.Question.Question))
	b.WriteString(title + "\n\n")

	correct := c.Question.CorrectIndex()
	for i, opt := range c.Question.Options {
		label := "?"
		if i < len(optionLabels) {
			label = optionLabels[i]
		}
		line := fmt.Sprintf("  %s) %s", label, opt)
		if i == correct {
			b.WriteString(theme.Correct.Render(line+"  ✓") + "\n")
		} else {
			b.WriteString(theme.Body.Render(line) + "\n")
		}
	}

	if c.Question.Explanation != "" {
		b.WriteString("\n" + theme.Hint.Width(inner).Render(c.Question.Explanation) + "\n")
	}

	var meta []string
	if c.Question.Difficulty != "" {
		meta = append(meta, string(c.Question.Difficulty))
	}
	if c.Question.BloomLevel != "" {
		meta = append(meta, c.Question.BloomLevel)
	}
	if c.Question.Category != "" {
		meta = append(meta, c.Question.Category)
	}
	if len(meta) > 0 {
		b.WriteString("\n" + theme.Muted.Render(strings.Join(meta, " · ")))
	}

	style := theme.Card
	if c.Focused {
		style = theme.FocusedCard
	}
	return style.Width(width).Render(b.String())
}
