package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizgen/internal/export"
	"github.com/abhisek/quizgen/internal/health"
	"github.com/abhisek/quizgen/internal/llm"
	"github.com/abhisek/quizgen/internal/questiongen"
	"github.com/abhisek/quizgen/internal/quiz"
	"github.com/abhisek/quizgen/internal/store"
)

var fixedNow = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

const sourceText = "Photosynthesis is the process by which green plants use sunlight, water and carbon dioxide " +
	"to produce glucose and oxygen. Chlorophyll in the leaves absorbs the light energy needed."

type fixture struct {
	srv   *Server
	mock  *llm.MockProvider
	store *store.Store
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	mock := llm.NewMockProvider()
	srv, err := New(Deps{
		Generator: questiongen.New(mock, questiongen.DefaultConfig()),
		Questions: s.QuestionRepo(),
		Health:    health.NewMonitor(mock, health.Config{}),
		Provider:  "mock",
		Model:     mock.ModelID(),
		Now:       func() time.Time { return fixedNow },
	}, cfg)
	require.NoError(t, err)
	return &fixture{srv: srv, mock: mock, store: s}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.srv.App().Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func detailOf(t *testing.T, data []byte) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(data, &body), string(data))
	return body.Detail
}

func generated(n int) llm.MockResponse {
	items := make([]map[string]any, n)
	for i := range items {
		items[i] = map[string]any{
			"question":       "Which gas do plants absorb?",
			"options":        []string{"Oxygen", "Carbon dioxide", "Nitrogen", "Helium"},
			"correct_answer": "Carbon dioxide",
			"explanation":    "Plants absorb carbon dioxide.",
			"difficulty":     "easy",
			"bloom_level":    "remember",
			"category":       "biology",
		}
	}
	return llm.MockJSON(map[string]any{"questions": items})
}

func TestHealth(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	resp, data := f.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"error","model_loaded":false}`, string(data))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestGenerate_StoresAndMarksLoaded(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.mock.AddResponse(generated(3))

	resp, data := f.do(t, http.MethodPost, "/api/generate-questions", map[string]any{
		"text": sourceText, "num_questions": 3, "difficulty": "Easy",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var out GenerateResponse
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Len(t, out.Questions, 3)
	assert.Equal(t, 3, out.TotalGenerated)
	assert.Equal(t, quiz.DifficultyEasy, out.RequestParams.Difficulty)
	assert.Equal(t, "multiple_choice", out.RequestParams.QuestionType)

	n, err := f.store.QuestionRepo().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, data = f.do(t, http.MethodGet, "/api/health", nil)
	assert.JSONEq(t, `{"status":"running","model_loaded":true}`, string(data))
}

func TestGenerate_Validation(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"short text", map[string]any{"text": "too short", "num_questions": 3}, "Text too short"},
		{"too many", map[string]any{"text": sourceText, "num_questions": 21}, "between 1 and 20"},
		{"bad difficulty", map[string]any{"text": sourceText, "num_questions": 2, "difficulty": "brutal"}, "Unknown difficulty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := f.do(t, http.MethodPost, "/api/generate-questions", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, detailOf(t, data), tt.want)
		})
	}
	assert.Zero(t, f.mock.CallCount())
}

func TestGenerate_ModelFailure(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.mock.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})

	resp, data := f.do(t, http.MethodPost, "/api/generate-questions", map[string]any{
		"text": sourceText, "num_questions": 2,
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, detailOf(t, data), "unavailable")
	assert.NotContains(t, string(data), "LLM provider")
}

func TestGenerate_StoreFailureStillReturnsQuestions(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.mock.AddResponse(generated(1))
	require.NoError(t, f.store.Close())

	resp, data := f.do(t, http.MethodPost, "/api/generate-questions", map[string]any{
		"text": sourceText, "num_questions": 1,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(data))
}

func TestGenerate_RateLimited(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GenerateLimit = 1
	f := newFixture(t, cfg)
	f.mock.AddResponse(generated(1))

	body := map[string]any{"text": sourceText, "num_questions": 1}
	resp, _ := f.do(t, http.MethodPost, "/api/generate-questions", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := f.do(t, http.MethodPost, "/api/generate-questions", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, detailOf(t, data), "Too many")
}

func TestValidate(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	good := quiz.Question{
		Question:      "Which gas do plants absorb during photosynthesis?",
		Options:       []string{"Oxygen", "Carbon dioxide", "Nitrogen", "Hydrogen"},
		CorrectAnswer: "Carbon dioxide",
		Explanation:   "Plants take in carbon dioxide and release oxygen.",
	}
	bad := good
	bad.CorrectAnswer = "Argon"
	dup := good
	dup.Options = []string{"Oxygen", "Carbon dioxide", "Carbon dioxide", "Hydrogen"}

	resp, data := f.do(t, http.MethodPost, "/api/validate-questions", ValidateRequest{Questions: []quiz.Question{good, bad, dup}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var out ValidateResponse
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.Results, 3)
	assert.True(t, out.Results[0].Valid)
	assert.Empty(t, out.Results[0].Errors)
	assert.False(t, out.Results[1].Valid)
	assert.Contains(t, out.Results[1].Errors, "correct_answer does not match any option")
	assert.False(t, out.Results[2].Valid)
	assert.Contains(t, out.Results[2].Errors, "options 2 and 3 are duplicates")
	assert.Equal(t, 1, out.ValidCount)
	assert.Equal(t, 3, out.TotalQuestions)

	resp, _ = f.do(t, http.MethodPost, "/api/validate-questions", ValidateRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExport(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	resp, data := f.do(t, http.MethodGet, "/api/export/gift", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No questions found to export", detailOf(t, data))

	q := quiz.Question{
		Question:      "What is 2+2? {test}",
		Options:       []string{"3", "4"},
		CorrectAnswer: "4",
		Difficulty:    quiz.DifficultyEasy,
	}
	require.NoError(t, f.store.QuestionRepo().Append(context.Background(), []quiz.Question{q}, store.GenerationMeta{}))

	resp, data = f.do(t, http.MethodGet, "/api/export/gift", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="quiz_export_gift_20260501_093000.gift"`, resp.Header.Get("Content-Disposition"))
	assert.Contains(t, string(data), `What is 2+2? \{test\}`)

	resp, data = f.do(t, http.MethodGet, "/api/export/moodle_xml?limit=5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml", resp.Header.Get("Content-Type"))
	assert.True(t, strings.Contains(string(data), `<answer fraction="100"`))

	resp, data = f.do(t, http.MethodGet, "/api/export/json", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := export.ParseJSON(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, q.Question, got[0].Question)
}

func TestExport_BadInput(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	for _, path := range []string{"/api/export/pdf", "/api/export/csv?limit=abc", "/api/export/csv?limit=0", "/api/export/csv?limit=5000"} {
		resp, data := f.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.NotEmpty(t, detailOf(t, data), path)
	}
}

func TestExport_StoreUnavailable(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	require.NoError(t, f.store.Close())

	resp, data := f.do(t, http.MethodGet, "/api/export/csv", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Question store is unavailable", detailOf(t, data))
}

func TestCORS(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := f.srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	resp, data := f.do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, detailOf(t, data))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("QUIZGEN_ADDR", ":9999")
	t.Setenv("QUIZGEN_CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("QUIZGEN_GENERATE_LIMIT", "0")

	cfg := ConfigFromEnv()
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Zero(t, cfg.GenerateLimit)
}

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(Deps{}, DefaultConfig())
	assert.Error(t, err)
}
