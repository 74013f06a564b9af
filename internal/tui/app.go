package tui

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizgen/internal/client"
	"github.com/abhisek/quizgen/internal/ui/layout"
	"github.com/abhisek/quizgen/internal/ui/theme"
)

// Model is the root Bubble Tea model.
type Model struct {
	ctrl   *client.Controller
	router *Router
	state  client.State
	width  int
	height int
}

// NewModel creates the root model with the compose screen on the stack.
// Exported files are written to exportDir.
func NewModel(ctrl *client.Controller, exportDir string) Model {
	return Model{
		ctrl:   ctrl,
		router: NewRouter(NewComposeScreen(ctrl, exportDir)),
		state:  ctrl.State(),
	}
}

func (m Model) Init() tea.Cmd {
	ctrl := m.ctrl
	start := func() tea.Msg {
		ctrl.Start()
		return nil
	}
	return tea.Batch(m.router.Active().Init(), start, waitForState(ctrl.Updates()))
}

// waitForState blocks on the controller's update channel. It yields nil
// once the channel is closed.
func waitForState(ch <-chan client.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return StateMsg{State: st}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case StateMsg:
		m.state = msg.State
		return m, tea.Batch(m.router.Update(msg), waitForState(m.ctrl.Updates()))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if c, ok := m.router.Active().(InputCapturer); ok && c.CapturingInput() {
				break
			}
			if m.router.Depth() > 1 {
				return m, pop
			}
			if m.state.Error != "" {
				m.ctrl.DismissError()
			}
			return m, nil
		}
	}

	return m, m.router.Update(msg)
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	header := layout.RenderHeader(active.Title(), connStatus(m.state, m.ctrl.MaxRetries()), m.width)

	hints := []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	if p, ok := active.(KeyHintProvider); ok {
		hints = append(p.KeyHints(), hints...)
	} else if m.router.Depth() > 1 {
		hints = append([]layout.KeyHint{{Key: "Esc", Description: "Back"}}, hints...)
	}
	footer := layout.RenderFooter(hints, m.width)

	body := m.router.View(m.width, layout.ContentHeight(header, footer, m.height)-2)
	content := banner(m.state) + "\n" + body

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// banner is the single line above the screen content: the current error,
// otherwise the latest notice.
func banner(s client.State) string {
	switch {
	case s.Error != "":
		return " " + theme.ErrorText.Render("✗ "+s.Error)
	case s.Notice != "":
		return " " + theme.Notice.Render(s.Notice)
	}
	return ""
}

func connStatus(s client.State, maxRetries int) layout.Status {
	switch s.Conn {
	case client.Connected:
		if !s.ModelLoaded {
			return layout.Status{Label: "● connected (model not ready)", Color: theme.Accent}
		}
		return layout.Status{Label: "● connected", Color: theme.Success}
	case client.Retrying:
		return layout.Status{Label: fmt.Sprintf("◌ reconnecting %d/%d", s.Attempt, maxRetries), Color: theme.Accent}
	}
	if s.Exhausted(maxRetries) {
		return layout.Status{Label: "○ offline (generate to retry)", Color: theme.Error}
	}
	return layout.Status{Label: "○ offline", Color: theme.Error}
}

// Run starts the program and flushes any pending autosave when it exits.
// The caller owns ctrl and closes it.
func Run(ctrl *client.Controller, exportDir string) error {
	p := tea.NewProgram(NewModel(ctrl, exportDir))
	_, err := p.Run()
	ctrl.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
