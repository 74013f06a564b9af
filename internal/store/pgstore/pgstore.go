// Package pgstore is the PostgreSQL storage backend, selected with
// QUIZGEN_DATABASE_URL. It mirrors the SQLite schema using gorm models.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/abhisek/quizgen/internal/quiz"
	"github.com/abhisek/quizgen/internal/store"
)

// Store is a PostgreSQL-backed store.Backend.
type Store struct {
	db *gorm.DB
}

var _ store.Backend = (*Store)(nil)

// Open connects to dsn and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(&generationRow{}, &questionRow{}, &llmEventRow{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) QuestionRepo() store.QuestionRepo { return &questionRepo{db: s.db} }
func (s *Store) EventRepo() store.EventRepo       { return &eventRepo{db: s.db} }

type questionRepo struct {
	db *gorm.DB
}

func (r *questionRepo) Append(ctx context.Context, questions []quiz.Question, meta store.GenerationMeta) error {
	if len(questions) == 0 {
		return nil
	}

	now := time.Now().UTC()
	gen := generationRow{
		CreatedAt:     now,
		Difficulty:    string(meta.Difficulty),
		Provider:      meta.Provider,
		Model:         meta.Model,
		QuestionCount: len(questions),
	}
	for _, q := range questions {
		row, err := toQuestionRow(q, now)
		if err != nil {
			return &store.Error{Op: "append questions", Err: err}
		}
		gen.Questions = append(gen.Questions, row)
	}

	// Create with associations runs in a single transaction.
	if err := r.db.WithContext(ctx).Create(&gen).Error; err != nil {
		return &store.Error{Op: "append questions", Err: err}
	}
	return nil
}

func (r *questionRepo) Recent(ctx context.Context, limit int) ([]quiz.Question, error) {
	if limit <= 0 {
		return nil, nil
	}

	var rows []questionRow
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, &store.Error{Op: "recent questions", Err: err}
	}

	out := make([]quiz.Question, 0, len(rows))
	for _, row := range rows {
		q, err := row.toQuestion()
		if err != nil {
			return nil, &store.Error{Op: "recent questions", Err: err}
		}
		out = append(out, q)
	}
	return out, nil
}

func (r *questionRepo) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&questionRow{}).Count(&n).Error; err != nil {
		return 0, &store.Error{Op: "count questions", Err: err}
	}
	return int(n), nil
}

type eventRepo struct {
	db *gorm.DB
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error {
	row := toEventRow(data, time.Now().UTC())
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return &store.Error{Op: "save LLM request event", Err: err}
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts store.QueryOpts) ([]store.LLMRequestEvent, error) {
	q := r.db.WithContext(ctx).Order("id DESC")
	if opts.After > 0 {
		q = q.Where("id > ?", opts.After)
	}
	if opts.Before > 0 {
		q = q.Where("id < ?", opts.Before)
	}
	if !opts.From.IsZero() {
		q = q.Where("created_at >= ?", opts.From)
	}
	if !opts.To.IsZero() {
		q = q.Where("created_at <= ?", opts.To)
	}
	if opts.Purpose != "" {
		q = q.Where("purpose = ?", opts.Purpose)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var rows []llmEventRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, &store.Error{Op: "query LLM events", Err: err}
	}
	out := make([]store.LLMRequestEvent, len(rows))
	for i, row := range rows {
		out[i] = row.toEvent()
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*store.LLMRequestEvent, error) {
	var row llmEventRow
	err := r.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &store.Error{Op: "get LLM event", Err: store.ErrNotFound}
	}
	if err != nil {
		return nil, &store.Error{Op: "get LLM event", Err: err}
	}
	e := row.toEvent()
	return &e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]store.LLMPurposeUsage, error) {
	var out []store.LLMPurposeUsage
	err := r.db.WithContext(ctx).Model(&llmEventRow{}).
		Select(`purpose,
			COUNT(*) AS calls,
			SUM(CASE WHEN success THEN 0 ELSE 1 END) AS failures,
			SUM(input_tokens) AS input_tokens,
			SUM(output_tokens) AS output_tokens,
			CAST(AVG(latency_ms) AS BIGINT) AS avg_latency_ms`).
		Group("purpose").
		Order("purpose").
		Scan(&out).Error
	if err != nil {
		return nil, &store.Error{Op: "LLM usage by purpose", Err: err}
	}
	return out, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]store.LLMModelUsage, error) {
	var out []store.LLMModelUsage
	err := r.db.WithContext(ctx).Model(&llmEventRow{}).
		Select("model, COUNT(*) AS calls, SUM(input_tokens) AS input_tokens, SUM(output_tokens) AS output_tokens").
		Group("model").
		Order("model").
		Scan(&out).Error
	if err != nil {
		return nil, &store.Error{Op: "LLM usage by model", Err: err}
	}
	return out, nil
}
