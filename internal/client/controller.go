package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/quizgen/internal/export"
	"github.com/abhisek/quizgen/internal/quiz"
)

var (
	// ErrBusy is returned by Generate while a generation is in flight.
	ErrBusy = errors.New("generation already in progress")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("controller closed")
)

const unreachableMessage = "Cannot reach the quiz server. Check that it is running."

// Controller serializes client events, runs the timers (autosave,
// health polling, reconnect backoff, error dismissal) and performs the
// network calls. All methods are safe for concurrent use.
type Controller struct {
	backend Backend
	storage Storage
	clock   Clock
	cfg     Config

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	sessionID string
	closed    bool
	saveGen   uint64
	autosave  *Debouncer
	retry     Timer
	poll      Timer
	dismiss   Timer
	updates   chan State
}

// New creates a Controller. A nil clock means RealClock.
func New(backend Backend, storage Storage, cfg Config, clock Clock) *Controller {
	if clock == nil {
		clock = RealClock
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		backend:   backend,
		storage:   storage,
		clock:     clock,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
		state:     NewState(),
		sessionID: uuid.NewString(),
		autosave:  NewDebouncer(clock, cfg.AutosaveDelay),
		updates:   make(chan State, 1),
	}
}

// Start restores the saved session, checks the server once and begins
// polling.
func (c *Controller) Start() {
	c.restore()
	c.checkHealth(SourceManual)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.schedulePollLocked()
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Updates delivers the state after each change. Only the latest
// undelivered state is kept. The channel is closed by Close.
func (c *Controller) Updates() <-chan State {
	return c.updates
}

// MaxRetries is the number of failed checks after which reconnecting
// stops until the next generate.
func (c *Controller) MaxRetries() int { return c.cfg.Backoff.MaxRetries }

func (c *Controller) SetText(text string) { c.dispatch(TextChanged{Text: text}) }

func (c *Controller) SetSettings(n int, d quiz.Difficulty) {
	c.dispatch(SettingsChanged{NumQuestions: n, Difficulty: d})
}

func (c *Controller) StartEdit(i int) { c.dispatch(EditStarted{Index: i}) }
func (c *Controller) CommitEdit(text string) { c.dispatch(EditCommitted{Text: text}) }
func (c *Controller) CancelEdit() { c.dispatch(EditCancelled{}) }
func (c *Controller) RequestDelete(i int) { c.dispatch(DeleteRequested{Index: i}) }
func (c *Controller) ConfirmDelete() { c.dispatch(DeleteConfirmed{}) }
func (c *Controller) CancelDelete() { c.dispatch(DeleteCancelled{}) }
func (c *Controller) DismissError() { c.dispatch(ErrorDismissed{}) }

// Generate requests questions for the current inputs. It blocks until
// the server answers. When the server is not known to be reachable it
// restarts the reconnect sequence first.
func (c *Controller) Generate(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state.Phase == PhaseLoading {
		c.mu.Unlock()
		return ErrBusy
	}
	req := c.state.Request()
	if err := req.Validate(); err != nil {
		c.dispatchLocked(GenerateFailed{Message: err.Error()})
		c.mu.Unlock()
		return err
	}
	reconnect := c.state.Conn != Connected
	if reconnect {
		c.dispatchLocked(RetryReset{})
	}
	c.dispatchLocked(GenerateStarted{})
	c.mu.Unlock()

	if reconnect {
		c.checkHealth(SourceManual)
	}

	questions, err := c.backend.Generate(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err != nil {
		c.dispatchLocked(GenerateFailed{Message: failureMessage("Failed to generate questions", err)})
		if IsConnectivity(err) && ctx.Err() == nil && c.state.Conn == Connected {
			c.applyHealthLocked(false, false, SourceManual)
		}
		return err
	}
	c.dispatchLocked(GenerateSucceeded{Questions: questions})
	return nil
}

// Export downloads the newest stored questions as target. On success
// the saved session is deleted and any pending autosave is dropped;
// the questions stay on screen.
func (c *Controller) Export(ctx context.Context, target export.Target) (*export.File, error) {
	return c.ExportTo(ctx, target, nil)
}

// ExportTo is Export with a save step. save runs after the download
// and before the saved session is deleted; if it fails the session is
// kept and the error is reported like a failed download.
func (c *Controller) ExportTo(ctx context.Context, target export.Target, save func(*export.File) error) (*export.File, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	f, err := c.backend.Export(ctx, target, c.cfg.ExportLimit)
	saved := err == nil
	if saved && save != nil {
		err = save(f)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if err != nil {
		msg := "Export failed: " + err.Error()
		if !saved {
			msg = failureMessage("Export failed", err)
		}
		c.dispatchLocked(ExportFailed{Message: msg})
		if !saved && IsConnectivity(err) && ctx.Err() == nil && c.state.Conn == Connected {
			c.applyHealthLocked(false, false, SourceManual)
		}
		return nil, err
	}

	c.saveGen++
	c.autosave.Cancel()
	if err := c.storage.Delete(SessionKey); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to clear saved session: %v\n", err)
	}
	c.dispatchLocked(Exported{Filename: f.Filename})
	return f, nil
}

// Flush writes a pending autosave immediately.
func (c *Controller) Flush() {
	if c.autosave.Cancel() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.saveLocked()
	}
}

// Close stops every timer and background call. Pending autosaves are
// dropped; call Flush first to keep them.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	c.autosave.Cancel()
	for _, t := range []Timer{c.retry, c.poll, c.dismiss} {
		if t != nil {
			t.Stop()
		}
	}
	c.retry, c.poll, c.dismiss = nil, nil, nil
	close(c.updates)
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) dispatch(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.dispatchLocked(ev)
}

// dispatchLocked reduces ev and starts the timers the transition needs.
func (c *Controller) dispatchLocked(ev Event) {
	before := c.state
	c.state = Reduce(before, ev)
	after := c.state

	if after.Revision != before.Revision {
		gen := c.saveGen
		c.autosave.Trigger(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if !c.closed && gen == c.saveGen {
				c.saveLocked()
			}
		})
	}

	if after.Error != "" && (after.Error != before.Error || isFailure(ev)) {
		c.scheduleDismissLocked()
	}

	c.publishLocked()
}

func isFailure(ev Event) bool {
	switch ev.(type) {
	case GenerateFailed, ExportFailed, EditCommitted:
		return true
	}
	return false
}

func (c *Controller) publishLocked() {
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- c.state:
	default:
	}
}

func (c *Controller) scheduleDismissLocked() {
	if c.dismiss != nil {
		c.dismiss.Stop()
	}
	var t Timer
	t = c.clock.AfterFunc(c.cfg.ErrorTTL, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || c.dismiss != t {
			return
		}
		c.dismiss = nil
		c.dispatchLocked(ErrorDismissed{})
	})
	c.dismiss = t
}

func (c *Controller) schedulePollLocked() {
	c.poll = c.clock.AfterFunc(c.cfg.PollInterval, func() {
		c.checkHealth(SourcePoll)
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.closed {
			c.schedulePollLocked()
		}
	})
}

// checkHealth calls the server and feeds the result to the state
// machine. The network call runs without the lock held.
func (c *Controller) checkHealth(src HealthSource) {
	if c.isClosed() {
		return
	}
	report, err := c.backend.Health(c.ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.applyHealthLocked(err == nil, report.ModelLoaded, src)
}

func (c *Controller) applyHealthLocked(ok, modelLoaded bool, src HealthSource) {
	before := c.state
	c.dispatchLocked(HealthChecked{
		OK:          ok,
		ModelLoaded: modelLoaded,
		Source:      src,
		MaxRetries:  c.cfg.Backoff.MaxRetries,
	})
	after := c.state

	switch {
	case after.Conn == Retrying && after.Attempt != before.Attempt:
		c.stopRetryLocked()
		if d, ok := c.cfg.Backoff.Delay(after.Attempt); ok {
			var t Timer
			t = c.clock.AfterFunc(d, func() {
				c.mu.Lock()
				current := c.retry == t && !c.closed
				if current {
					c.retry = nil
				}
				c.mu.Unlock()
				if current {
					c.checkHealth(SourceRetry)
				}
			})
			c.retry = t
		}
	case after.Conn != Retrying:
		c.stopRetryLocked()
	}
}

func (c *Controller) stopRetryLocked() {
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
}

func (c *Controller) restore() {
	data, err := c.storage.Load(SessionKey)
	if errors.Is(err, ErrNoSession) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to read saved session: %v\n", err)
		return
	}
	s, err := decodeSession(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring saved session: %v\n", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if s.ID != "" {
		c.sessionID = s.ID
	}
	c.dispatchLocked(Restored{Session: s})
}

func (c *Controller) saveLocked() {
	s := Session{
		ID:           c.sessionID,
		InputText:    c.state.Text,
		Questions:    c.state.Questions,
		NumQuestions: c.state.NumQuestions,
		Difficulty:   c.state.Difficulty,
		Timestamp:    c.clock.Now().UTC(),
	}
	data, err := encodeSession(s)
	if err == nil {
		err = c.storage.Save(SessionKey, data)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: autosave failed: %v\n", err)
	}
}

func failureMessage(prefix string, err error) string {
	var ae *APIError
	if errors.As(err, &ae) && ae.Detail != "" {
		return prefix + ": " + ae.Detail
	}
	if errors.Is(err, context.Canceled) {
		return prefix + ": cancelled"
	}
	return unreachableMessage
}
