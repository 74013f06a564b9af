package client

import (
	"strconv"
	"strings"

	"github.com/abhisek/quizgen/internal/quiz"
)

// Phase is the generation/editing axis of the client state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseEditing
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseEditing:
		return "editing"
	default:
		return "idle"
	}
}

// Connectivity is the server reachability axis of the client state.
type Connectivity int

const (
	Disconnected Connectivity = iota
	Connected
	Retrying
)

func (c Connectivity) String() string {
	switch c {
	case Connected:
		return "connected"
	case Retrying:
		return "retrying"
	default:
		return "disconnected"
	}
}

// State is everything the client shows. It is a value; Reduce returns
// a new one and never mutates its input.
type State struct {
	Phase     Phase
	EditIndex int // valid while Phase == PhaseEditing

	Conn        Connectivity
	Attempt     int // consecutive failed health checks in the current sequence
	ModelLoaded bool

	Text         string
	Questions    []quiz.Question
	NumQuestions int
	Difficulty   quiz.Difficulty

	// PendingDelete is the index awaiting confirmation, or -1.
	PendingDelete int

	Error  string
	Notice string

	// Revision increases on every change to the saved session fields.
	Revision int
}

// NewState returns the initial client state.
func NewState() State {
	return State{
		NumQuestions:  5,
		Difficulty:    quiz.DifficultyMedium,
		PendingDelete: -1,
		EditIndex:     -1,
	}
}

// Exhausted reports whether automatic reconnects have stopped.
func (s State) Exhausted(maxRetries int) bool {
	return s.Conn == Disconnected && s.Attempt > maxRetries
}

// Request builds the generation request for the current inputs.
func (s State) Request() quiz.GenerationRequest {
	req := quiz.GenerationRequest{
		Text:         s.Text,
		NumQuestions: s.NumQuestions,
		QuestionType: quiz.QuestionTypeMultipleChoice,
		Difficulty:   s.Difficulty,
	}
	req.Normalize()
	return req
}

// Event is an input to Reduce.
type Event interface{ event() }

// HealthSource says what triggered a health check.
type HealthSource int

const (
	// SourceManual is a startup or user-triggered check. It starts a
	// new retry sequence.
	SourceManual HealthSource = iota
	// SourceRetry is a scheduled backoff retry.
	SourceRetry
	// SourcePoll is the fixed-interval poll. A failed poll never
	// advances or restarts the retry sequence.
	SourcePoll
)

type (
	TextChanged     struct{ Text string }
	SettingsChanged struct {
		NumQuestions int
		Difficulty   quiz.Difficulty
	}

	GenerateStarted   struct{}
	GenerateSucceeded struct{ Questions []quiz.Question }
	GenerateFailed    struct{ Message string }

	EditStarted   struct{ Index int }
	EditCommitted struct{ Text string }
	EditCancelled struct{}

	DeleteRequested struct{ Index int }
	DeleteConfirmed struct{}
	DeleteCancelled struct{}

	// HealthChecked reports one health check. MaxRetries is the number
	// of failures after which the client stops retrying.
	HealthChecked struct {
		OK          bool
		ModelLoaded bool
		Source      HealthSource
		MaxRetries  int
	}
	RetryReset struct{}

	Restored       struct{ Session Session }
	Exported       struct{ Filename string }
	ExportFailed   struct{ Message string }
	ErrorDismissed struct{}
)

func (TextChanged) event()       {}
func (SettingsChanged) event()   {}
func (GenerateStarted) event()   {}
func (GenerateSucceeded) event() {}
func (GenerateFailed) event()    {}
func (EditStarted) event()       {}
func (EditCommitted) event()     {}
func (EditCancelled) event()     {}
func (DeleteRequested) event()   {}
func (DeleteConfirmed) event()   {}
func (DeleteCancelled) event()   {}
func (HealthChecked) event()     {}
func (RetryReset) event()        {}
func (Restored) event()          {}
func (Exported) event()          {}
func (ExportFailed) event()      {}
func (ErrorDismissed) event()    {}

// Reduce applies ev to s. Events that make no sense in the current
// state are ignored.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case TextChanged:
		if s.Text != e.Text {
			s.Text = e.Text
			s.Revision++
		}

	case SettingsChanged:
		if e.NumQuestions != s.NumQuestions || e.Difficulty != s.Difficulty {
			s.NumQuestions = e.NumQuestions
			s.Difficulty = e.Difficulty
			s.Revision++
		}

	case GenerateStarted:
		if s.Phase == PhaseLoading {
			break
		}
		s.Phase = PhaseLoading
		s.EditIndex = -1
		s.PendingDelete = -1
		s.Error = ""
		s.Notice = ""

	case GenerateSucceeded:
		if s.Phase != PhaseLoading {
			break
		}
		s.Phase = PhaseIdle
		s.Questions = cloneQuestions(e.Questions)
		s.Notice = "Generated " + plural(len(e.Questions), "question")
		s.Revision++

	case GenerateFailed:
		if s.Phase == PhaseLoading {
			s.Phase = PhaseIdle
		}
		s.Error = e.Message

	case EditStarted:
		if s.Phase != PhaseIdle || e.Index < 0 || e.Index >= len(s.Questions) {
			break
		}
		s.Phase = PhaseEditing
		s.EditIndex = e.Index
		s.PendingDelete = -1

	case EditCommitted:
		if s.Phase != PhaseEditing {
			break
		}
		text := strings.TrimSpace(e.Text)
		if text == "" {
			s.Error = "Question text cannot be empty"
			break
		}
		if s.Questions[s.EditIndex].Question != text {
			s.Questions = cloneQuestions(s.Questions)
			s.Questions[s.EditIndex].Question = text
			s.Revision++
		}
		s.Phase = PhaseIdle
		s.EditIndex = -1

	case EditCancelled:
		if s.Phase == PhaseEditing {
			s.Phase = PhaseIdle
			s.EditIndex = -1
		}

	case DeleteRequested:
		if s.Phase == PhaseLoading || e.Index < 0 || e.Index >= len(s.Questions) {
			break
		}
		s.PendingDelete = e.Index

	case DeleteConfirmed:
		i := s.PendingDelete
		if i < 0 || i >= len(s.Questions) || s.Phase == PhaseLoading {
			break
		}
		qs := make([]quiz.Question, 0, len(s.Questions)-1)
		qs = append(qs, s.Questions[:i]...)
		s.Questions = append(qs, s.Questions[i+1:]...)
		s.PendingDelete = -1
		if s.Phase == PhaseEditing {
			switch {
			case s.EditIndex == i:
				s.Phase = PhaseIdle
				s.EditIndex = -1
			case s.EditIndex > i:
				s.EditIndex--
			}
		}
		s.Revision++

	case DeleteCancelled:
		s.PendingDelete = -1

	case HealthChecked:
		s = reduceHealth(s, e)

	case RetryReset:
		if s.Conn != Connected {
			s.Attempt = 0
		}

	case Restored:
		s.Text = e.Session.InputText
		s.Questions = cloneQuestions(e.Session.Questions)
		if e.Session.NumQuestions > 0 {
			s.NumQuestions = e.Session.NumQuestions
		}
		if e.Session.Difficulty != "" {
			s.Difficulty = e.Session.Difficulty
		}
		s.Notice = "Restored previous session"

	case Exported:
		s.Notice = "Exported " + e.Filename
		s.Error = ""

	case ExportFailed:
		s.Error = e.Message

	case ErrorDismissed:
		s.Error = ""
	}
	return s
}

func reduceHealth(s State, e HealthChecked) State {
	if e.OK {
		s.Conn = Connected
		s.Attempt = 0
		s.ModelLoaded = e.ModelLoaded
		return s
	}

	if e.Source == SourcePoll && s.Conn != Connected {
		return s
	}
	if e.Source == SourceRetry && s.Conn != Retrying {
		return s
	}

	s.Attempt++
	if s.Attempt > e.MaxRetries {
		s.Conn = Disconnected
	} else {
		s.Conn = Retrying
	}
	return s
}

func cloneQuestions(qs []quiz.Question) []quiz.Question {
	if qs == nil {
		return nil
	}
	out := make([]quiz.Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
