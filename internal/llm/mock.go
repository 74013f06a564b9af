package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted answer. A non-nil Err is returned as is.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockJSON scripts v as the answer content. It panics on unmarshalable
// fixtures.
func MockJSON(v any) MockResponse {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return MockResponse{Content: b}
}

// MockProvider answers from a FIFO script and remembers every request.
// Once the script runs dry, Fallback answers, and without a Fallback
// the provider reports itself unavailable. QUIZGEN_LLM_PROVIDER=mock
// selects it.
type MockProvider struct {
	Fallback func(Request) MockResponse

	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, ok := m.next(req)
	if !ok {
		return nil, &ErrProviderUnavailable{}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return finish(req, completion{
		vendor:  "mock",
		content: resp.Content,
		stop:    "end",
		usage:   resp.Usage,
		model:   "mock",
	})
}

func (m *MockProvider) next(req Request) (MockResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)

	if len(m.script) > 0 {
		r := m.script[0]
		m.script = m.script[1:]
		return r, true
	}
	if m.Fallback != nil {
		return m.Fallback(req), true
	}
	return MockResponse{}, false
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse appends to the script.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request.
func (m *MockProvider) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
