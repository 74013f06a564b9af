package pgstore

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/abhisek/quizgen/internal/quiz"
	"github.com/abhisek/quizgen/internal/store"
)

// generationRow groups the questions produced by one generate call.
type generationRow struct {
	ID            uint      `gorm:"primaryKey"`
	CreatedAt     time.Time `gorm:"not null;index"`
	Difficulty    string    `gorm:"not null"`
	Provider      string    `gorm:"not null;default:''"`
	Model         string    `gorm:"not null;default:''"`
	QuestionCount int       `gorm:"not null"`

	Questions []questionRow `gorm:"foreignKey:GenerationID;constraint:OnDelete:CASCADE"`
}

func (generationRow) TableName() string { return "generations" }

type questionRow struct {
	ID            uint           `gorm:"primaryKey"`
	GenerationID  uint           `gorm:"not null;index"`
	CreatedAt     time.Time      `gorm:"not null;index:idx_questions_recent,priority:1,sort:desc"`
	Question      string         `gorm:"type:text;not null"`
	Options       datatypes.JSON `gorm:"type:jsonb;not null"`
	CorrectAnswer string         `gorm:"type:text;not null"`
	Explanation   string         `gorm:"type:text;not null;default:''"`
	Difficulty    string         `gorm:"not null"`
	BloomLevel    string         `gorm:"not null;default:''"`
	Category      string         `gorm:"not null;default:''"`
}

func (questionRow) TableName() string { return "questions" }

type llmEventRow struct {
	ID           uint      `gorm:"primaryKey"`
	CreatedAt    time.Time `gorm:"not null"`
	Provider     string    `gorm:"not null"`
	Model        string    `gorm:"not null;index"`
	Purpose      string    `gorm:"not null;index"`
	InputTokens  int       `gorm:"not null;default:0"`
	OutputTokens int       `gorm:"not null;default:0"`
	LatencyMs    int64     `gorm:"not null;default:0"`
	Success      bool      `gorm:"not null"`
	ErrorMessage string    `gorm:"type:text;not null;default:''"`
	RequestBody  string    `gorm:"type:text;not null;default:''"`
	ResponseBody string    `gorm:"type:text;not null;default:''"`
}

func (llmEventRow) TableName() string { return "llm_request_events" }

func toQuestionRow(q quiz.Question, now time.Time) (questionRow, error) {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return questionRow{}, err
	}
	return questionRow{
		CreatedAt:     now,
		Question:      q.Question,
		Options:       datatypes.JSON(opts),
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		Difficulty:    string(q.Difficulty),
		BloomLevel:    q.BloomLevel,
		Category:      q.Category,
	}, nil
}

func (r questionRow) toQuestion() (quiz.Question, error) {
	q := quiz.Question{
		ID:            int(r.ID),
		Question:      r.Question,
		CorrectAnswer: r.CorrectAnswer,
		Explanation:   r.Explanation,
		Difficulty:    quiz.Difficulty(r.Difficulty),
		BloomLevel:    r.BloomLevel,
		Category:      r.Category,
		CreatedAt:     r.CreatedAt,
	}
	if err := json.Unmarshal(r.Options, &q.Options); err != nil {
		return quiz.Question{}, fmt.Errorf("decode options of question %d: %w", r.ID, err)
	}
	return q, nil
}

func toEventRow(d store.LLMRequestEventData, now time.Time) llmEventRow {
	return llmEventRow{
		CreatedAt:    now,
		Provider:     d.Provider,
		Model:        d.Model,
		Purpose:      d.Purpose,
		InputTokens:  d.InputTokens,
		OutputTokens: d.OutputTokens,
		LatencyMs:    d.LatencyMs,
		Success:      d.Success,
		ErrorMessage: d.ErrorMessage,
		RequestBody:  d.RequestBody,
		ResponseBody: d.ResponseBody,
	}
}

func (r llmEventRow) toEvent() store.LLMRequestEvent {
	return store.LLMRequestEvent{
		ID:        int(r.ID),
		Timestamp: r.CreatedAt,
		LLMRequestEventData: store.LLMRequestEventData{
			Provider:     r.Provider,
			Model:        r.Model,
			Purpose:      r.Purpose,
			InputTokens:  r.InputTokens,
			OutputTokens: r.OutputTokens,
			LatencyMs:    r.LatencyMs,
			Success:      r.Success,
			ErrorMessage: r.ErrorMessage,
			RequestBody:  r.RequestBody,
			ResponseBody: r.ResponseBody,
		},
	}
}
