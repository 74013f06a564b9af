package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/quizgen/internal/quiz"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// Error wraps a failed storage operation. Op names the operation
// ("append questions", "recent questions", ...).
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// Backend is a storage backend: SQLite (Store) or PostgreSQL (pgstore).
type Backend interface {
	QuestionRepo() QuestionRepo
	EventRepo() EventRepo
	Close() error
}

// GenerationMeta describes the request that produced a batch of questions.
type GenerationMeta struct {
	Difficulty quiz.Difficulty
	Provider   string
	Model      string
}

// QuestionRepo persists generated questions. Rows are never updated or
// deleted; edits stay on the client.
type QuestionRepo interface {
	// Append stores questions as one batch. Either every question is
	// stored or none is.
	Append(ctx context.Context, questions []quiz.Question, meta GenerationMeta) error

	// Recent returns up to limit questions, newest first.
	Recent(ctx context.Context, limit int) ([]quiz.Question, error)

	// Count returns the number of stored questions.
	Count(ctx context.Context) (int, error)
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int       // id > After
	Before  int       // id < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact match when set
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMPurposeUsage aggregates usage for one purpose label.
type LLMPurposeUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and reads LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one event or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
