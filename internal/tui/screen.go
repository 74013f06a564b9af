// Package tui is the terminal front end for the quiz client. It renders
// client.State and turns key presses into controller calls.
package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizgen/internal/client"
	"github.com/abhisek/quizgen/internal/ui/layout"
)

// Screen is one page of the interface.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	// View renders the screen content, excluding header and footer.
	View(width, height int) string
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// InputCapturer is implemented by screens that sometimes own esc, for
// example while a text field is being edited.
type InputCapturer interface {
	CapturingInput() bool
}

// StateMsg carries a new controller state.
type StateMsg struct {
	State client.State
}

// PushScreenMsg requests the router to push a new screen onto the stack.
type PushScreenMsg struct {
	Screen Screen
}

// PopScreenMsg requests the router to pop the current screen.
type PopScreenMsg struct{}

func push(s Screen) tea.Cmd {
	return func() tea.Msg { return PushScreenMsg{Screen: s} }
}

func pop() tea.Msg { return PopScreenMsg{} }
