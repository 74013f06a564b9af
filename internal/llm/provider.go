package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Provider sends one request to a model and returns its answer. When the
// request carries a Schema the answer has already been validated against
// it; otherwise Content holds the model's raw text.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single model call.
type Request struct {
	System   string
	Messages []Message

	// Schema switches the vendor into structured output mode.
	Schema *Schema

	// MaxTokens caps the answer. Zero leaves it to the vendor, except
	// for Anthropic which needs an explicit limit.
	MaxTokens int

	// Temperature in [0, 1]. Zero is the vendor default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema the answer must satisfy. Name must be
// kebab-case ("quiz-questions"); OpenAI rejects anything else.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a model answer.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string // model that actually served the call

	// StopReason is "end" or "max_tokens".
	StopReason string
}

// Prompt builds a single-turn request with one user message.
func Prompt(system, user string, schema *Schema) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
		Schema:   schema,
	}
}

// resolveModel maps a friendly model name to a provider model ID.
// Names not in the map are used as-is so direct model IDs work.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}

// Usage counts tokens for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// completion is a vendor answer normalized enough to finish.
type completion struct {
	vendor  string
	content json.RawMessage
	stop    string // "end" or "max_tokens"
	usage   Usage
	model   string
}

// finish turns a completion into a Response. Truncated and empty answers
// are errors; with a schema the content must validate against it.
func finish(req Request, c completion) (*Response, error) {
	if c.stop == "max_tokens" {
		return nil, &ErrMaxTokensExceeded{Content: c.content}
	}
	if len(bytes.TrimSpace(c.content)) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("empty %s response", c.vendor)}
	}
	if err := req.Schema.Validate(c.content); err != nil {
		return nil, err
	}
	return &Response{
		Content:    c.content,
		Usage:      c.usage,
		Model:      c.model,
		StopReason: c.stop,
	}, nil
}
