package api

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/abhisek/quizgen/internal/export"
	"github.com/abhisek/quizgen/internal/quiz"
	"github.com/abhisek/quizgen/internal/store"
)

// GenerateResponse is the body of a successful generate call.
type GenerateResponse struct {
	Questions      []quiz.Question `json:"questions"`
	TotalGenerated int             `json:"total_generated"`
	RequestParams  RequestParams   `json:"request_params"`
}

// RequestParams echoes the normalized request.
type RequestParams struct {
	NumQuestions int             `json:"num_questions"`
	Difficulty   quiz.Difficulty `json:"difficulty"`
	QuestionType string          `json:"question_type"`
	TextLength   int             `json:"text_length"`
}

// ValidateRequest is the body of a validate call.
type ValidateRequest struct {
	Questions []quiz.Question `json:"questions"`
}

// ValidationResult is the verdict for one submitted question.
type ValidationResult struct {
	Index          int                 `json:"index"`
	Valid          bool                `json:"valid"`
	Errors         []string            `json:"errors"`
	Score          int                 `json:"score"`
	Feedback       string              `json:"feedback"`
	QualityMetrics quiz.QualityMetrics `json:"quality_metrics"`
}

// ValidateResponse is the body of a validate call.
type ValidateResponse struct {
	Results        []ValidationResult `json:"individual_results"`
	OverallScore   float64            `json:"overall_score"`
	ValidCount     int                `json:"valid_count"`
	TotalQuestions int                `json:"total_questions"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(s.deps.Health.Check(c.UserContext()))
}

func (s *Server) handleGenerate(c *fiber.Ctx) error {
	var req quiz.GenerationRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fail(c, err)
	}

	questions, err := s.deps.Generator.Generate(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	s.deps.Health.MarkLoaded()

	// A failed write does not fail the request; the caller still gets
	// the questions.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.UserContext()), s.storeTimeout())
	defer cancel()
	meta := store.GenerationMeta{Difficulty: req.Difficulty, Provider: s.deps.Provider, Model: s.deps.Model}
	if err := s.deps.Questions.Append(ctx, questions, meta); err != nil {
		log.Printf("request %v: warning: questions not stored: %v", c.Locals("requestid"), err)
	}

	return c.JSON(GenerateResponse{
		Questions:      questions,
		TotalGenerated: len(questions),
		RequestParams: RequestParams{
			NumQuestions: req.NumQuestions,
			Difficulty:   req.Difficulty,
			QuestionType: string(req.QuestionType),
			TextLength:   len([]rune(req.Text)),
		},
	})
}

func (s *Server) handleValidate(c *fiber.Ctx) error {
	var req ValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if len(req.Questions) == 0 {
		return detail(c, fiber.StatusBadRequest, "No questions to validate")
	}

	resp := ValidateResponse{
		Results:        make([]ValidationResult, len(req.Questions)),
		TotalQuestions: len(req.Questions),
	}
	var total int
	for i, q := range req.Questions {
		problems := quiz.Problems(q)
		report := quiz.Assess(q)
		if problems == nil {
			problems = []string{}
		}
		resp.Results[i] = ValidationResult{
			Index:          i,
			Valid:          len(problems) == 0,
			Errors:         problems,
			Score:          report.Score,
			Feedback:       report.Feedback,
			QualityMetrics: report.Metrics,
		}
		if len(problems) == 0 {
			resp.ValidCount++
		}
		total += report.Score
	}
	resp.OverallScore = math.Round(float64(total)/float64(len(req.Questions))*100) / 100

	return c.JSON(resp)
}

func (s *Server) handleExport(c *fiber.Ctx) error {
	target, err := export.ParseTarget(c.Params("format"))
	if err != nil {
		return fail(c, err)
	}

	job := export.Job{Target: target, Limit: export.DefaultLimit}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return detail(c, fiber.StatusBadRequest, fmt.Sprintf("limit must be an integer, got %q", v))
		}
		job.Limit = n
		if n == 0 {
			return detail(c, fiber.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", export.MaxLimit))
		}
	}

	f, err := export.Run(c.UserContext(), s.deps.Questions, job, s.deps.Now())
	if err != nil {
		return fail(c, err)
	}

	c.Set(fiber.HeaderContentType, f.MIMEType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, f.Filename))
	return c.Send(f.Data)
}

func (s *Server) storeTimeout() time.Duration {
	if s.cfg.StoreTimeout > 0 {
		return s.cfg.StoreTimeout
	}
	return DefaultConfig().StoreTimeout
}
