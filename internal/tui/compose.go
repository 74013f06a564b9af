package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizgen/internal/client"
	"github.com/abhisek/quizgen/internal/quiz"
	"github.com/abhisek/quizgen/internal/ui/components"
	"github.com/abhisek/quizgen/internal/ui/layout"
	"github.com/abhisek/quizgen/internal/ui/theme"
)

var difficulties = []quiz.Difficulty{
	quiz.DifficultyEasy,
	quiz.DifficultyMedium,
	quiz.DifficultyHard,
	quiz.DifficultyMixed,
}

type composeField int

const (
	fieldText composeField = iota
	fieldNumber
	fieldDifficulty
	numFields
)

type generateDoneMsg struct{ err error }

// ComposeScreen collects the source text and generation settings.
type ComposeScreen struct {
	ctrl      *client.Controller
	exportDir string
	state     client.State

	text       textarea.Model
	count      components.TextInput
	difficulty int
	field      composeField

	// touched is set once the user edits the text; until then restored
	// session text replaces the field contents.
	touched    bool
	generating bool
}

var _ Screen = (*ComposeScreen)(nil)

// NewComposeScreen creates the compose screen.
func NewComposeScreen(ctrl *client.Controller, exportDir string) *ComposeScreen {
	ta := textarea.New()
	ta.Placeholder = fmt.Sprintf("Paste at least %d characters of study material...", quiz.MinTextLength)
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Focus()

	s := &ComposeScreen{
		ctrl:      ctrl,
		exportDir: exportDir,
		text:      ta,
		count:     components.NewTextInput("Questions", "5", true, 2),
	}
	s.sync(ctrl.State())
	return s
}

func (s *ComposeScreen) Init() tea.Cmd {
	return nil
}

func (s *ComposeScreen) Title() string {
	return "Compose"
}

func (s *ComposeScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Ctrl+G", Description: "Generate"},
	}
	if len(s.state.Questions) > 0 {
		hints = append(hints,
			layout.KeyHint{Key: "Ctrl+R", Description: "Review"},
			layout.KeyHint{Key: "Ctrl+E", Description: "Export"},
		)
	}
	return hints
}

func (s *ComposeScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		// The message may trail a change made from this screen.
		s.sync(s.ctrl.State())
		return s, nil

	case generateDoneMsg:
		s.generating = false
		if msg.err == nil {
			return s, push(NewReviewScreen(s.ctrl, s.exportDir))
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+g":
			return s, s.generate()
		case "tab":
			return s, s.focus((s.field + 1) % numFields)
		case "shift+tab":
			return s, s.focus((s.field + numFields - 1) % numFields)
		case "ctrl+r":
			if len(s.state.Questions) > 0 {
				return s, push(NewReviewScreen(s.ctrl, s.exportDir))
			}
			return s, nil
		case "ctrl+e":
			if len(s.state.Questions) > 0 {
				return s, push(NewExportScreen(s.ctrl, s.exportDir))
			}
			return s, nil
		}
	}

	return s, s.updateField(msg)
}

func (s *ComposeScreen) updateText(msg tea.Msg) tea.Cmd {
	before := s.text.Value()
	var cmd tea.Cmd
	s.text, cmd = s.text.Update(msg)
	if v := s.text.Value(); v != before {
		s.touched = true
		s.ctrl.SetText(v)
	}
	return cmd
}

func (s *ComposeScreen) updateField(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch s.field {
	case fieldText:
		cmd = s.updateText(msg)

	case fieldNumber:
		before := s.count.Value()
		s.count, cmd = s.count.Update(msg)
		if s.count.Value() != before {
			s.applyCount()
		}

	case fieldDifficulty:
		kmsg, ok := msg.(tea.KeyMsg)
		if !ok {
			return nil
		}
		switch kmsg.String() {
		case "left", "h":
			s.difficulty = (s.difficulty + len(difficulties) - 1) % len(difficulties)
		case "right", "l", "space", " ":
			s.difficulty = (s.difficulty + 1) % len(difficulties)
		default:
			return nil
		}
		s.ctrl.SetSettings(s.state.NumQuestions, difficulties[s.difficulty])
	}
	return cmd
}

func (s *ComposeScreen) applyCount() {
	n, err := s.count.NumericValue()
	if err != nil || n < quiz.MinQuestions || n > quiz.MaxQuestions {
		s.count.SetError(fmt.Sprintf("%d-%d", quiz.MinQuestions, quiz.MaxQuestions))
		return
	}
	s.count.SetError("")
	s.ctrl.SetSettings(n, difficulties[s.difficulty])
}

func (s *ComposeScreen) focus(f composeField) tea.Cmd {
	s.field = f
	s.text.Blur()
	s.count.Blur()
	switch f {
	case fieldText:
		s.text.Focus()
	case fieldNumber:
		return s.count.Focus()
	}
	return nil
}

// sync copies controller state into the fields the user is not editing.
func (s *ComposeScreen) sync(st client.State) {
	s.state = st
	if !s.touched && st.Text != s.text.Value() {
		s.text.SetValue(st.Text)
	}
	if s.field != fieldNumber || s.count.Err() == "" {
		if v := strconv.Itoa(st.NumQuestions); v != s.count.Value() {
			s.count.SetValue(v)
			s.count.SetError("")
		}
	}
	for i, d := range difficulties {
		if d == st.Difficulty {
			s.difficulty = i
		}
	}
	if st.Phase == client.PhaseLoading {
		s.generating = true
	}
}

func (s *ComposeScreen) generate() tea.Cmd {
	if s.generating {
		return nil
	}
	s.generating = true
	ctrl := s.ctrl
	return func() tea.Msg {
		err := ctrl.Generate(context.Background())
		if errors.Is(err, client.ErrBusy) {
			err = nil
		}
		return generateDoneMsg{err: err}
	}
}

func (s *ComposeScreen) View(width, height int) string {
	inner := max(20, width-4)

	chars := utf8.RuneCountInString(s.text.Value())
	counter := fmt.Sprintf("%d characters", chars)
	if chars < quiz.MinTextLength {
		counter = theme.Warning.Render(fmt.Sprintf("%d/%d characters", chars, quiz.MinTextLength))
	} else {
		counter = theme.Muted.Render(counter)
	}

	s.text.SetWidth(inner - 4)
	s.text.SetHeight(max(3, height-10))
	textStyle := theme.Card
	if s.field == fieldText {
		textStyle = theme.FocusedCard
	}
	textBox := textStyle.Width(inner).Render(s.text.View())

	diff := fmt.Sprintf("‹ %s ›", difficulties[s.difficulty])
	if s.field == fieldDifficulty {
		diff = theme.Selected.Render(diff)
	} else {
		diff = theme.Unselected.Render(diff)
	}
	countView := s.count.View()
	if s.field == fieldNumber {
		countView = theme.Selected.Render("▸ ") + countView
	}
	settings := countView + "     " + theme.Label.Render("Difficulty: ") + diff

	var status string
	switch {
	case s.generating:
		status = theme.Notice.Render("Generating questions...")
	case len(s.state.Questions) > 0:
		status = theme.Muted.Render(fmt.Sprintf("%d questions ready. Ctrl+R to review.", len(s.state.Questions)))
	default:
		status = theme.Hint.Render("Ctrl+G to generate.")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		" "+theme.Label.Render("Source text")+"  "+counter,
		textBox,
		"",
		" "+settings,
		"",
		" "+status,
	)
}
