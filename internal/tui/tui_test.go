package tui

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizgen/internal/client"
	"github.com/abhisek/quizgen/internal/export"
	"github.com/abhisek/quizgen/internal/health"
	"github.com/abhisek/quizgen/internal/quiz"
)

const sourceText = "The water cycle describes how water evaporates from oceans, condenses into clouds, " +
	"falls as precipitation and returns to rivers and seas."

type stubBackend struct {
	exported []export.Target
}

func (b *stubBackend) Health(context.Context) (health.Report, error) {
	return health.Report{Status: health.StatusRunning, ModelLoaded: true}, nil
}

func (b *stubBackend) Generate(context.Context, quiz.GenerationRequest) ([]quiz.Question, error) {
	qs := make([]quiz.Question, 0, 3)
	for _, text := range []string{"What drives evaporation?", "Where do clouds form?", "What is precipitation?"} {
		qs = append(qs, quiz.Question{
			Question:      text,
			Options:       []string{"The sun", "The moon", "Wind only", "Gravity only"},
			CorrectAnswer: "The sun",
			Difficulty:    quiz.DifficultyMedium,
		})
	}
	return qs, nil
}

func (b *stubBackend) Export(_ context.Context, t export.Target, _ int) (*export.File, error) {
	b.exported = append(b.exported, t)
	return &export.File{Data: []byte("exported"), Filename: export.Filename(t, time.Now())}, nil
}

func newController(t *testing.T) (*client.Controller, *stubBackend) {
	t.Helper()
	b := &stubBackend{}
	cfg := client.DefaultConfig()
	cfg.StateDir = t.TempDir()
	ctrl := client.New(b, client.FileStorage{Dir: cfg.StateDir}, cfg, nil)
	t.Cleanup(ctrl.Close)
	return ctrl, b
}

func withQuestions(t *testing.T) *client.Controller {
	t.Helper()
	ctrl, _ := newController(t)
	ctrl.SetText(sourceText)
	if err := ctrl.Generate(context.Background()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return ctrl
}

func key(s string) tea.KeyPressMsg {
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestCompose_TypingUpdatesController(t *testing.T) {
	ctrl, _ := newController(t)
	s := NewComposeScreen(ctrl, t.TempDir())

	s.Update(key("h"))
	s.Update(key("i"))

	if got := ctrl.State().Text; got != "hi" {
		t.Errorf("controller text = %q, want %q", got, "hi")
	}
}

func TestCompose_RestoredTextFillsField(t *testing.T) {
	ctrl, _ := newController(t)
	s := NewComposeScreen(ctrl, t.TempDir())

	ctrl.SetText(sourceText)
	s.Update(StateMsg{State: ctrl.State()})

	if s.text.Value() != sourceText {
		t.Errorf("text field = %q, want restored text", s.text.Value())
	}
}

func TestCompose_GeneratePushesReview(t *testing.T) {
	ctrl, _ := newController(t)
	ctrl.SetText(sourceText)
	s := NewComposeScreen(ctrl, t.TempDir())

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'g', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected a generate command")
	}
	done := cmd()
	if _, ok := done.(generateDoneMsg); !ok {
		t.Fatalf("msg = %T, want generateDoneMsg", done)
	}
	if n := len(ctrl.State().Questions); n != 3 {
		t.Fatalf("questions = %d, want 3", n)
	}

	_, cmd = s.Update(done)
	if cmd == nil {
		t.Fatal("expected a push command")
	}
	pushMsg, ok := cmd().(PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := pushMsg.Screen.(*ReviewScreen); !ok {
		t.Errorf("pushed %T, want *ReviewScreen", pushMsg.Screen)
	}
}

func TestCompose_GenerateFailureStays(t *testing.T) {
	ctrl, _ := newController(t)
	ctrl.SetText("too short")
	s := NewComposeScreen(ctrl, t.TempDir())

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'g', Mod: tea.ModCtrl})
	_, next := s.Update(cmd())
	if next != nil {
		t.Error("failed generation should not navigate")
	}
	if !strings.Contains(ctrl.State().Error, "Text too short") {
		t.Errorf("error = %q", ctrl.State().Error)
	}
}

func TestCompose_CountField(t *testing.T) {
	ctrl, _ := newController(t)
	s := NewComposeScreen(ctrl, t.TempDir())

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.field != fieldNumber {
		t.Fatalf("field = %d, want count field", s.field)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyBackspace})
	if s.count.Err() == "" {
		t.Error("empty count should show an error")
	}
	if got := ctrl.State().NumQuestions; got != 5 {
		t.Errorf("NumQuestions = %d, want unchanged 5", got)
	}

	s.Update(key("x"))
	s.Update(key("8"))
	if got := ctrl.State().NumQuestions; got != 8 {
		t.Errorf("NumQuestions = %d, want 8", got)
	}
	if s.count.Err() != "" {
		t.Errorf("unexpected error %q", s.count.Err())
	}
}

func TestCompose_DifficultyCycles(t *testing.T) {
	ctrl, _ := newController(t)
	s := NewComposeScreen(ctrl, t.TempDir())

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	if got := ctrl.State().Difficulty; got != quiz.DifficultyHard {
		t.Errorf("difficulty = %q, want hard", got)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	if got := ctrl.State().Difficulty; got != quiz.DifficultyEasy {
		t.Errorf("difficulty = %q, want wrap to easy", got)
	}
}

func TestReview_EditCommit(t *testing.T) {
	ctrl := withQuestions(t)
	r := NewReviewScreen(ctrl, t.TempDir())

	r.Update(key("j"))
	r.Update(key("e"))
	if !r.CapturingInput() {
		t.Fatal("expected edit mode")
	}
	if r.edit.Value() != "Where do clouds form?" {
		t.Errorf("edit value = %q", r.edit.Value())
	}

	r.edit.SetValue("Where do clouds usually form?")
	r.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	st := ctrl.State()
	if st.Phase != client.PhaseIdle {
		t.Errorf("phase = %v, want idle", st.Phase)
	}
	if st.Questions[1].Question != "Where do clouds usually form?" {
		t.Errorf("question = %q", st.Questions[1].Question)
	}
}

func TestReview_EditEmptyKeepsEditing(t *testing.T) {
	ctrl := withQuestions(t)
	r := NewReviewScreen(ctrl, t.TempDir())

	r.Update(key("e"))
	r.edit.SetValue("   ")
	r.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if ctrl.State().Phase != client.PhaseEditing {
		t.Error("empty text should keep the editor open")
	}
	r.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if ctrl.State().Phase != client.PhaseIdle {
		t.Error("esc should cancel the edit")
	}
	if ctrl.State().Questions[0].Question != "What drives evaporation?" {
		t.Error("cancelled edit changed the question")
	}
}

func TestReview_DeleteNeedsConfirmation(t *testing.T) {
	ctrl := withQuestions(t)
	r := NewReviewScreen(ctrl, t.TempDir())

	r.Update(key("d"))
	if !r.CapturingInput() {
		t.Fatal("expected delete confirmation")
	}
	r.Update(key("n"))
	if n := len(ctrl.State().Questions); n != 3 {
		t.Fatalf("questions = %d after cancel, want 3", n)
	}

	r.Update(key("j"))
	r.Update(key("j"))
	r.Update(key("d"))
	r.Update(key("y"))
	if n := len(ctrl.State().Questions); n != 2 {
		t.Fatalf("questions = %d, want 2", n)
	}
	if r.cursor != 1 {
		t.Errorf("cursor = %d, want clamped to 1", r.cursor)
	}
	if v := r.View(80, 30); !strings.Contains(v, "Where do clouds form?") {
		t.Error("view should show the remaining question")
	}
}

func TestExportScreen_WritesFile(t *testing.T) {
	ctrl, b := newController(t)
	dir := t.TempDir()
	s := NewExportScreen(ctrl, dir)

	s.Update(key("j"))
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected an export command")
	}
	s.Update(cmd())

	if s.err != nil {
		t.Fatalf("export error: %v", s.err)
	}
	if len(b.exported) != 1 || b.exported[0] != export.TargetCSV {
		t.Fatalf("exported = %v, want [csv]", b.exported)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != "exported" {
		t.Errorf("data = %q", data)
	}
	if !strings.HasSuffix(s.path, ".csv") {
		t.Errorf("path = %q, want .csv", s.path)
	}
	if !strings.HasPrefix(ctrl.State().Notice, "Exported quiz_export_csv_") {
		t.Errorf("notice = %q", ctrl.State().Notice)
	}
}

func TestModel_EscNavigation(t *testing.T) {
	ctrl := withQuestions(t)
	m := NewModel(ctrl, t.TempDir())
	m.router.Push(NewReviewScreen(ctrl, t.TempDir()))

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("esc should pop the review screen")
	}
	if _, ok := cmd().(PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}

	// While a delete is pending, esc belongs to the screen.
	updated, _ := m.Update(key("d"))
	m = updated.(Model)
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		if _, ok := cmd().(PopScreenMsg); ok {
			t.Error("esc should cancel the delete, not navigate")
		}
	}
	if ctrl.State().PendingDelete != -1 {
		t.Error("delete should be cancelled")
	}
}

func TestModel_ViewShowsStatus(t *testing.T) {
	ctrl := withQuestions(t)
	m := NewModel(ctrl, t.TempDir())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)
	m.state = ctrl.State()

	v := m.View()
	if !v.AltScreen {
		t.Error("expected alt screen")
	}
}

func TestConnStatus(t *testing.T) {
	tests := []struct {
		name  string
		state client.State
		want  string
	}{
		{"connected", client.State{Conn: client.Connected, ModelLoaded: true}, "● connected"},
		{"model not ready", client.State{Conn: client.Connected}, "model not ready"},
		{"retrying", client.State{Conn: client.Retrying, Attempt: 2}, "reconnecting 2/5"},
		{"offline", client.State{Conn: client.Disconnected}, "○ offline"},
		{"exhausted", client.State{Conn: client.Disconnected, Attempt: 6}, "generate to retry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := connStatus(tt.state, 5).Label
			if !strings.Contains(got, tt.want) {
				t.Errorf("label = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRouter_PopKeepsRoot(t *testing.T) {
	ctrl, _ := newController(t)
	root := NewComposeScreen(ctrl, t.TempDir())
	r := NewRouter(root)

	r.Update(PushScreenMsg{Screen: NewExportScreen(ctrl, t.TempDir())})
	if r.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", r.Depth())
	}
	r.Update(PopScreenMsg{})
	r.Update(PopScreenMsg{})
	if r.Depth() != 1 || r.Active() != Screen(root) {
		t.Error("root screen should remain")
	}
}
