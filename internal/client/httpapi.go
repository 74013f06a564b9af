package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/quizgen/internal/export"
	"github.com/abhisek/quizgen/internal/health"
	"github.com/abhisek/quizgen/internal/quiz"
)

// Backend is the server as the controller sees it.
type Backend interface {
	Health(ctx context.Context) (health.Report, error)
	Generate(ctx context.Context, req quiz.GenerationRequest) ([]quiz.Question, error)
	Export(ctx context.Context, target export.Target, limit int) (*export.File, error)
}

// APIError is a non-2xx answer from the server. Detail is the server's
// user-facing message.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return e.Detail
}

// IsConnectivity reports whether err means the server could not be
// reached, as opposed to the server answering with an error.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}
	var ae *APIError
	return !errors.As(err, &ae)
}

// HTTPBackend talks to the quizgen API.
type HTTPBackend struct {
	BaseURL string
	HTTP    *http.Client

	// HealthTimeout bounds health calls. Generate has no client-side
	// timeout beyond ctx.
	HealthTimeout time.Duration
}

var _ Backend = (*HTTPBackend)(nil)

// NewHTTPBackend creates a backend for the API at baseURL.
func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		HTTP:          &http.Client{},
		HealthTimeout: 5 * time.Second,
	}
}

func (b *HTTPBackend) Health(ctx context.Context) (health.Report, error) {
	if b.HealthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.HealthTimeout)
		defer cancel()
	}
	var r health.Report
	err := b.doJSON(ctx, http.MethodGet, "/api/health", nil, &r)
	return r, err
}

type generateResponse struct {
	Questions []quiz.Question `json:"questions"`
}

func (b *HTTPBackend) Generate(ctx context.Context, req quiz.GenerationRequest) ([]quiz.Question, error) {
	var out generateResponse
	if err := b.doJSON(ctx, http.MethodPost, "/api/generate-questions", req, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

func (b *HTTPBackend) Export(ctx context.Context, target export.Target, limit int) (*export.File, error) {
	path := "/api/export/" + url.PathEscape(string(target))
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	resp, err := b.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	f := &export.File{
		Data:     data,
		MIMEType: resp.Header.Get("Content-Type"),
		Filename: export.Filename(target, time.Now()),
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		f.Filename = params["filename"]
	}
	return f, nil
}

func (b *HTTPBackend) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := b.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// send performs the request and turns non-2xx answers into *APIError.
func (b *HTTPBackend) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.BaseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 == 2 {
		return resp, nil
	}

	defer resp.Body.Close()
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Detail string `json:"detail"`
	}
	if data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024)); err == nil {
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Detail = payload.Detail
		}
	}
	return nil, apiErr
}
