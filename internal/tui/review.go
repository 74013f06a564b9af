package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizgen/internal/client"
	"github.com/abhisek/quizgen/internal/ui/components"
	"github.com/abhisek/quizgen/internal/ui/layout"
	"github.com/abhisek/quizgen/internal/ui/theme"
)

// ReviewScreen lists the generated questions and lets the user edit
// question text or delete questions.
type ReviewScreen struct {
	ctrl      *client.Controller
	exportDir string
	state     client.State
	cursor    int
	edit      components.TextInput
}

var _ Screen = (*ReviewScreen)(nil)

// NewReviewScreen creates the review screen.
func NewReviewScreen(ctrl *client.Controller, exportDir string) *ReviewScreen {
	return &ReviewScreen{
		ctrl:      ctrl,
		exportDir: exportDir,
		state:     ctrl.State(),
		edit:      components.NewTextInput("Question", "", false, 0),
	}
}

func (r *ReviewScreen) Init() tea.Cmd {
	return nil
}

func (r *ReviewScreen) Title() string {
	return fmt.Sprintf("Review (%d)", len(r.state.Questions))
}

func (r *ReviewScreen) editing() bool {
	return r.state.Phase == client.PhaseEditing && r.state.EditIndex >= 0
}

func (r *ReviewScreen) confirming() bool {
	return r.state.PendingDelete >= 0
}

func (r *ReviewScreen) CapturingInput() bool {
	return r.editing() || r.confirming()
}

func (r *ReviewScreen) KeyHints() []layout.KeyHint {
	switch {
	case r.confirming():
		return []layout.KeyHint{{Key: "y", Description: "Delete"}, {Key: "n/Esc", Description: "Keep"}}
	case r.editing():
		return []layout.KeyHint{{Key: "Enter", Description: "Save"}, {Key: "Esc", Description: "Cancel"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Select"},
		{Key: "e", Description: "Edit"},
		{Key: "d", Description: "Delete"},
		{Key: "x", Description: "Export"},
		{Key: "Esc", Description: "Back"},
	}
}

func (r *ReviewScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		r.refresh()
		return r, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		switch {
		case r.confirming():
			r.updateConfirm(msg)
		case r.editing():
			cmd = r.updateEdit(msg)
		default:
			cmd = r.updateList(msg)
		}
		r.refresh()
		return r, cmd
	}

	if r.editing() {
		var cmd tea.Cmd
		r.edit, cmd = r.edit.Update(msg)
		return r, cmd
	}
	return r, nil
}

func (r *ReviewScreen) updateList(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if r.cursor > 0 {
			r.cursor--
		}
	case "down", "j":
		if r.cursor < len(r.state.Questions)-1 {
			r.cursor++
		}
	case "e", "enter":
		r.ctrl.StartEdit(r.cursor)
		st := r.ctrl.State()
		if st.Phase == client.PhaseEditing && st.EditIndex == r.cursor {
			r.edit.SetValue(st.Questions[r.cursor].Question)
			r.edit.SetError("")
			return r.edit.Focus()
		}
	case "d", "delete":
		r.ctrl.RequestDelete(r.cursor)
	case "x":
		if len(r.state.Questions) > 0 {
			return push(NewExportScreen(r.ctrl, r.exportDir))
		}
	}
	return nil
}

func (r *ReviewScreen) updateEdit(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		r.ctrl.CommitEdit(r.edit.Value())
		if r.ctrl.State().Phase == client.PhaseEditing {
			r.edit.SetError("cannot be empty")
			return nil
		}
		r.edit.Blur()
		return nil
	case "esc":
		r.ctrl.CancelEdit()
		r.edit.Blur()
		return nil
	}
	var cmd tea.Cmd
	r.edit, cmd = r.edit.Update(msg)
	return cmd
}

func (r *ReviewScreen) updateConfirm(msg tea.KeyMsg) {
	switch msg.String() {
	case "y", "Y":
		r.ctrl.ConfirmDelete()
	case "n", "N", "esc":
		r.ctrl.CancelDelete()
	}
}

// refresh pulls the current state and keeps the cursor on a question.
func (r *ReviewScreen) refresh() {
	r.state = r.ctrl.State()
	if n := len(r.state.Questions); r.cursor >= n {
		r.cursor = max(0, n-1)
	}
	if !r.editing() && r.edit.Focused() {
		r.edit.Blur()
	}
}

func (r *ReviewScreen) View(width, height int) string {
	qs := r.state.Questions
	if len(qs) == 0 {
		return "\n " + theme.Hint.Render("No questions. Press Esc and generate some.")
	}

	inner := max(20, width-2)
	listHeight := min(len(qs), max(3, height/3))
	start := min(max(0, r.cursor-listHeight/2), len(qs)-listHeight)

	var list strings.Builder
	for i := start; i < start+listHeight; i++ {
		line := layout.Truncate(fmt.Sprintf("%2d. %s", i+1, qs[i].Question), inner-4)
		if i == r.cursor {
			list.WriteString(theme.Selected.Render(" ▸ "+line) + "\n")
		} else {
			list.WriteString(theme.Unselected.Render("   "+line) + "\n")
		}
	}

	card := components.QuestionCard{
		Number:   r.cursor + 1,
		Question: qs[r.cursor],
		Focused:  r.editing(),
	}.View(inner)

	var action string
	switch {
	case r.confirming():
		action = theme.Warning.Render(fmt.Sprintf(" Delete question %d? (y/n)", r.state.PendingDelete+1))
	case r.editing():
		action = " " + r.edit.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, list.String(), card, action)
}
