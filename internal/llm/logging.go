package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/quizgen/internal/store"
)

const eventWriteTimeout = 5 * time.Second

// LoggingProvider records every call, successful or not, as an LLM
// request event.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
}

// WithLogging wraps p. name is stored as the event's provider.
func WithLogging(p Provider, name string, events store.EventRepo) Provider {
	return &LoggingProvider{inner: p, provider: name, events: events}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	l.record(ctx, req, resp, err, time.Since(start))
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) record(ctx context.Context, req Request, resp *Response, callErr error, took time.Duration) {
	ev := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   took.Milliseconds(),
		Success:     callErr == nil,
		RequestBody: transcript(req),
	}
	if callErr != nil {
		ev.ErrorMessage = callErr.Error()
	}
	if resp != nil {
		ev.InputTokens, ev.OutputTokens = resp.Usage.InputTokens, resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
		if resp.Model != "" {
			ev.Model = resp.Model
		}
	}

	// Canceled calls are still recorded.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventWriteTimeout)
	defer cancel()
	if err := l.events.AppendLLMRequest(wctx, ev); err != nil {
		fmt.Fprintf(os.Stderr, "warning: record %s call: %v\n", ev.Purpose, err)
	}
}

// transcript renders req as tagged plain-text sections.
func transcript(req Request) string {
	var b strings.Builder
	section := func(tag, body string) {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", tag, body)
	}
	if req.System != "" {
		section("system", req.System)
	}
	for _, m := range req.Messages {
		section(string(m.Role), m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			section("schema: "+req.Schema.Name, string(def))
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
