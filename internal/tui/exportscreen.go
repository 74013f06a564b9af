package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizgen/internal/client"
	"github.com/abhisek/quizgen/internal/export"
	"github.com/abhisek/quizgen/internal/ui/components"
	"github.com/abhisek/quizgen/internal/ui/layout"
	"github.com/abhisek/quizgen/internal/ui/theme"
)

const exportTimeout = 30 * time.Second

var targetDescriptions = map[export.Target]string{
	export.TargetJSON:   "questions with metadata",
	export.TargetCSV:    "one row per question",
	export.TargetMoodle: "Moodle question bank XML",
	export.TargetGIFT:   "Moodle GIFT text",
}

type exportDoneMsg struct {
	path string
	err  error
}

// ExportScreen downloads the stored questions in a chosen format and
// writes the file to the export directory.
type ExportScreen struct {
	ctrl *client.Controller
	dir  string
	menu components.Menu
	busy bool
	path string
	err  error
}

var _ Screen = (*ExportScreen)(nil)

// NewExportScreen creates the export screen.
func NewExportScreen(ctrl *client.Controller, dir string) *ExportScreen {
	s := &ExportScreen{ctrl: ctrl, dir: dir}
	items := make([]components.MenuItem, 0, len(export.Targets))
	for _, t := range export.Targets {
		items = append(items, components.MenuItem{
			Label:       fmt.Sprintf("%-8s .%s", t, t.Ext()),
			Description: targetDescriptions[t],
			Action:      func() tea.Cmd { return s.run(t) },
		})
	}
	s.menu = components.NewMenu(items)
	return s
}

func (s *ExportScreen) Init() tea.Cmd {
	return nil
}

func (s *ExportScreen) Title() string {
	return "Export"
}

func (s *ExportScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Format"},
		{Key: "Enter", Description: "Export"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ExportScreen) run(t export.Target) tea.Cmd {
	if s.busy {
		return nil
	}
	s.busy = true
	s.err = nil
	s.path = ""
	ctrl, dir := s.ctrl, s.dir
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()
		path, err := exportTo(ctx, ctrl, t, dir)
		return exportDoneMsg{path: path, err: err}
	}
}

// exportTo downloads target and writes it under dir using the
// server-chosen file name. The saved session is only cleared once the
// file is on disk.
func exportTo(ctx context.Context, ctrl *client.Controller, t export.Target, dir string) (string, error) {
	var path string
	_, err := ctrl.ExportTo(ctx, t, func(f *export.File) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
		path = filepath.Join(dir, filepath.Base(f.Filename))
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (s *ExportScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case exportDoneMsg:
		s.busy = false
		s.path, s.err = msg.path, msg.err
		return s, nil
	case tea.KeyMsg:
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ExportScreen) View(width, height int) string {
	var status string
	switch {
	case s.busy:
		status = theme.Notice.Render("Exporting...")
	case s.err != nil:
		status = theme.ErrorText.Render("✗ " + s.err.Error())
	case s.path != "":
		status = theme.Correct.Render("✓ Saved " + s.path)
	default:
		status = theme.Hint.Render("Files are written to " + s.dir)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		s.menu.View(),
		" "+layout.Truncate(status, max(10, width-2)),
	)
}
