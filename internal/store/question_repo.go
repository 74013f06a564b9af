package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/quizgen/internal/quiz"
)

// questionRepo implements QuestionRepo on SQLite.
type questionRepo struct {
	db  *sql.DB
	now func() time.Time
}

func (r *questionRepo) clock() time.Time {
	if r.now != nil {
		return r.now().UTC()
	}
	return time.Now().UTC()
}

func (r *questionRepo) Append(ctx context.Context, questions []quiz.Question, meta GenerationMeta) error {
	if len(questions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("append questions", err)
	}
	defer tx.Rollback()

	now := r.clock()
	query, args := builder().Insert(generationsTable).
		Columns("created_at", "difficulty", "provider", "model", "question_count").
		Values(now, string(meta.Difficulty), meta.Provider, meta.Model, len(questions)).
		Query()
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return wrap("append questions", fmt.Errorf("insert generation: %w", err))
	}
	genID, err := res.LastInsertId()
	if err != nil {
		return wrap("append questions", err)
	}

	ins := builder().Insert(questionsTable).
		Columns("created_at", "question", "options", "correct_answer", "explanation",
			"difficulty", "bloom_level", "category", "generation_id")
	for _, q := range questions {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return wrap("append questions", err)
		}
		ins.Values(now, q.Question, string(opts), q.CorrectAnswer, q.Explanation,
			string(q.Difficulty), q.BloomLevel, q.Category, genID)
	}
	query, args = ins.Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return wrap("append questions", fmt.Errorf("insert questions: %w", err))
	}

	return wrap("append questions", tx.Commit())
}

func (r *questionRepo) Recent(ctx context.Context, limit int) ([]quiz.Question, error) {
	if limit <= 0 {
		return nil, nil
	}

	query, args := builder().
		Select("id", "created_at", "question", "options", "correct_answer",
			"explanation", "difficulty", "bloom_level", "category").
		From(entsql.Table(questionsTable)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Limit(limit).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("recent questions", err)
	}
	defer rows.Close()

	var out []quiz.Question
	for rows.Next() {
		var (
			q          quiz.Question
			opts       string
			difficulty string
		)
		if err := rows.Scan(&q.ID, &q.CreatedAt, &q.Question, &opts, &q.CorrectAnswer,
			&q.Explanation, &difficulty, &q.BloomLevel, &q.Category); err != nil {
			return nil, wrap("recent questions", err)
		}
		if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
			return nil, wrap("recent questions", fmt.Errorf("decode options of question %d: %w", q.ID, err))
		}
		q.Difficulty = quiz.Difficulty(difficulty)
		out = append(out, q)
	}
	return out, wrap("recent questions", rows.Err())
}

func (r *questionRepo) Count(ctx context.Context) (int, error) {
	query, args := builder().
		Select(entsql.Count("*")).
		From(entsql.Table(questionsTable)).
		Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, wrap("count questions", err)
	}
	return n, nil
}
