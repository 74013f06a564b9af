package client

import (
	"testing"

	"github.com/abhisek/quizgen/internal/quiz"
)

func threeQuestions() []quiz.Question {
	qs := make([]quiz.Question, 3)
	for i, text := range []string{"First?", "Second?", "Third?"} {
		qs[i] = quiz.Question{
			Question:      text,
			Options:       []string{"a", "b"},
			CorrectAnswer: "a",
			Difficulty:    quiz.DifficultyEasy,
		}
	}
	return qs
}

func withQuestions() State {
	s := Reduce(NewState(), GenerateStarted{})
	return Reduce(s, GenerateSucceeded{Questions: threeQuestions()})
}

func TestReduce_Generate(t *testing.T) {
	s := NewState()
	s.Error = "old"

	s = Reduce(s, GenerateStarted{})
	if s.Phase != PhaseLoading || s.Error != "" {
		t.Fatalf("after start: phase=%v error=%q", s.Phase, s.Error)
	}

	rev := s.Revision
	s = Reduce(s, GenerateSucceeded{Questions: threeQuestions()})
	if s.Phase != PhaseIdle || len(s.Questions) != 3 {
		t.Fatalf("after success: phase=%v questions=%d", s.Phase, len(s.Questions))
	}
	if s.Revision != rev+1 {
		t.Error("generated questions should mark the session changed")
	}
	if s.Notice != "Generated 3 questions" {
		t.Errorf("notice = %q", s.Notice)
	}

	s = Reduce(s, GenerateStarted{})
	s = Reduce(s, GenerateFailed{Message: "boom"})
	if s.Phase != PhaseIdle || s.Error != "boom" || len(s.Questions) != 3 {
		t.Fatalf("after failure: %+v", s)
	}
}

func TestReduce_SuccessIgnoredUnlessLoading(t *testing.T) {
	s := Reduce(NewState(), GenerateSucceeded{Questions: threeQuestions()})
	if len(s.Questions) != 0 {
		t.Fatal("late result applied outside loading")
	}
}

func TestReduce_Editing(t *testing.T) {
	orig := withQuestions()
	s := orig

	s = Reduce(s, EditStarted{Index: 5})
	if s.Phase != PhaseIdle {
		t.Fatal("out of range edit accepted")
	}

	s = Reduce(s, EditStarted{Index: 1})
	if s.Phase != PhaseEditing || s.EditIndex != 1 {
		t.Fatalf("phase=%v index=%d", s.Phase, s.EditIndex)
	}

	// One question at a time.
	s = Reduce(s, EditStarted{Index: 2})
	if s.EditIndex != 1 {
		t.Fatal("second edit started while editing")
	}

	s = Reduce(s, EditCommitted{Text: "   "})
	if s.Phase != PhaseEditing || s.Error == "" {
		t.Fatal("empty text should keep editing with an error")
	}

	rev := s.Revision
	s = Reduce(s, EditCommitted{Text: " Changed? "})
	if s.Phase != PhaseIdle || s.Questions[1].Question != "Changed?" {
		t.Fatalf("commit not applied: %+v", s.Questions[1])
	}
	if s.Revision != rev+1 {
		t.Error("edit should mark the session changed")
	}
	if orig.Questions[1].Question != "Second?" {
		t.Error("reducer mutated an earlier state")
	}

	s = Reduce(s, EditStarted{Index: 0})
	s = Reduce(s, EditCancelled{})
	if s.Phase != PhaseIdle || s.Questions[0].Question != "First?" {
		t.Fatal("cancel changed state")
	}
}

func TestReduce_DeleteNeedsConfirmation(t *testing.T) {
	s := withQuestions()

	s = Reduce(s, DeleteRequested{Index: 0})
	if len(s.Questions) != 3 || s.PendingDelete != 0 {
		t.Fatal("delete applied without confirmation")
	}
	s = Reduce(s, DeleteCancelled{})
	if s.PendingDelete != -1 || len(s.Questions) != 3 {
		t.Fatal("cancel did not clear pending delete")
	}

	s = Reduce(s, DeleteConfirmed{})
	if len(s.Questions) != 3 {
		t.Fatal("confirm without request deleted a question")
	}

	s = Reduce(s, EditStarted{Index: 2})
	s = Reduce(s, DeleteRequested{Index: 0})
	s = Reduce(s, DeleteConfirmed{})
	if len(s.Questions) != 2 || s.Questions[0].Question != "Second?" {
		t.Fatalf("wrong question deleted: %+v", s.Questions)
	}
	if s.Phase != PhaseEditing || s.EditIndex != 1 {
		t.Fatalf("edit index not shifted: %d", s.EditIndex)
	}
}

func TestReduce_HealthSequence(t *testing.T) {
	const maxRetries = 5
	fail := func(src HealthSource) HealthChecked {
		return HealthChecked{Source: src, MaxRetries: maxRetries}
	}

	s := NewState()
	s = Reduce(s, fail(SourceManual))
	if s.Conn != Retrying || s.Attempt != 1 {
		t.Fatalf("conn=%v attempt=%d", s.Conn, s.Attempt)
	}

	// A failed poll does not advance the sequence.
	s = Reduce(s, fail(SourcePoll))
	if s.Attempt != 1 {
		t.Fatalf("poll advanced attempt to %d", s.Attempt)
	}

	for i := 2; i <= maxRetries; i++ {
		s = Reduce(s, fail(SourceRetry))
		if s.Conn != Retrying || s.Attempt != i {
			t.Fatalf("retry %d: conn=%v attempt=%d", i, s.Conn, s.Attempt)
		}
	}
	s = Reduce(s, fail(SourceRetry))
	if s.Conn != Disconnected || !s.Exhausted(maxRetries) {
		t.Fatalf("expected exhausted, got conn=%v attempt=%d", s.Conn, s.Attempt)
	}

	// Stray retry and poll failures leave an exhausted sequence alone.
	s = Reduce(s, fail(SourceRetry))
	s = Reduce(s, fail(SourcePoll))
	if s.Attempt != maxRetries+1 {
		t.Fatalf("attempt = %d", s.Attempt)
	}

	s = Reduce(s, RetryReset{})
	if s.Attempt != 0 || s.Exhausted(maxRetries) {
		t.Fatal("reset did not restart the sequence")
	}

	s = Reduce(s, HealthChecked{OK: true, ModelLoaded: true, Source: SourcePoll})
	if s.Conn != Connected || s.Attempt != 0 || !s.ModelLoaded {
		t.Fatalf("after success: %+v", s)
	}

	s = Reduce(s, fail(SourcePoll))
	if s.Conn != Retrying || s.Attempt != 1 {
		t.Fatal("failed poll while connected should start a sequence")
	}
}

func TestReduce_SessionRevision(t *testing.T) {
	s := NewState()
	s = Reduce(s, TextChanged{Text: "abc"})
	s = Reduce(s, TextChanged{Text: "abc"})
	s = Reduce(s, SettingsChanged{NumQuestions: 5, Difficulty: quiz.DifficultyMedium})
	if s.Revision != 1 {
		t.Fatalf("revision = %d, want 1", s.Revision)
	}

	s = Reduce(s, Restored{Session: Session{InputText: "saved", NumQuestions: 7, Difficulty: quiz.DifficultyHard}})
	if s.Revision != 1 || s.Text != "saved" || s.NumQuestions != 7 {
		t.Fatalf("restore: %+v", s)
	}

	s = Reduce(s, Exported{Filename: "f.json"})
	if s.Revision != 1 || s.Notice != "Exported f.json" {
		t.Fatalf("export: %+v", s)
	}
}

func TestBackoffDelay(t *testing.T) {
	want := []int{1, 2, 4, 8, 16}
	for i, sec := range want {
		d, ok := DefaultBackoff.Delay(i + 1)
		if !ok || d.Seconds() != float64(sec) {
			t.Errorf("attempt %d: got %v %v, want %ds", i+1, d, ok, sec)
		}
	}
	if _, ok := DefaultBackoff.Delay(6); ok {
		t.Error("sixth retry should not happen")
	}

	capped := Backoff{Initial: DefaultBackoff.Initial, Max: DefaultBackoff.Max, MaxRetries: 10}
	if d, _ := capped.Delay(7); d != capped.Max {
		t.Errorf("delay 7 = %v, want cap %v", d, capped.Max)
	}
}
