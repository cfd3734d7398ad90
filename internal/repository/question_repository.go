package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"paperforge/internal/domain"
	"paperforge/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// sqlxQuestionRepository implements domain.QuestionStore using sqlx over
// SQLite.
type sqlxQuestionRepository struct {
	db *sqlx.DB
}

// NewSQLXQuestionRepository creates a new question repository backed by
// the given database handle.
func NewSQLXQuestionRepository(db *sqlx.DB) domain.QuestionStore {
	return &sqlxQuestionRepository{db: db}
}

// Upsert inserts or refreshes questions keyed by their qid. Re-saving a
// stream is what keeps duplicates out of the bank.
func (r *sqlxQuestionRepository) Upsert(ctx context.Context, questions []domain.Question) error {
	if len(questions) == 0 {
		return nil
	}

	query := `INSERT INTO questions (qid, kind, stream, topic, prompt, option_a, option_b, option_c, option_d,
	            answer, explanation, source_type, source_name, source_ref, image_url, created_at, updated_at)
	          VALUES (:qid, :kind, :stream, :topic, :prompt, :option_a, :option_b, :option_c, :option_d,
	            :answer, :explanation, :source_type, :source_name, :source_ref, :image_url, :created_at, :updated_at)
	          ON CONFLICT(qid) DO UPDATE SET
	            kind = excluded.kind,
	            stream = excluded.stream,
	            topic = excluded.topic,
	            prompt = excluded.prompt,
	            option_a = excluded.option_a,
	            option_b = excluded.option_b,
	            option_c = excluded.option_c,
	            option_d = excluded.option_d,
	            answer = excluded.answer,
	            explanation = excluded.explanation,
	            source_type = excluded.source_type,
	            source_name = excluded.source_name,
	            source_ref = excluded.source_ref,
	            image_url = excluded.image_url,
	            updated_at = excluded.updated_at`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, q := range questions {
		m := models.FromDomain(q)
		m.CreatedAt = now
		m.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, m); err != nil {
			return fmt.Errorf("failed to upsert question %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert transaction: %w", err)
	}
	return nil
}

// FetchByStream returns all questions whose stream contains the query
// case-insensitively, oldest first. Substring matching lets "cse" pull in
// "GATE CSE" and "CSE 2024" alike.
func (r *sqlxQuestionRepository) FetchByStream(ctx context.Context, stream string) ([]domain.Question, error) {
	query := `SELECT * FROM questions WHERE stream LIKE '%' || ? || '%' COLLATE NOCASE ORDER BY created_at, qid`

	var rows []models.Question
	if err := r.db.SelectContext(ctx, &rows, query, strings.TrimSpace(stream)); err != nil {
		return nil, fmt.Errorf("failed to fetch questions for stream %q: %w", stream, err)
	}

	questions := make([]domain.Question, 0, len(rows))
	for _, m := range rows {
		questions = append(questions, m.ToDomain())
	}
	return questions, nil
}

// ListStreams returns the distinct stream names present in the bank.
func (r *sqlxQuestionRepository) ListStreams(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT stream FROM questions WHERE stream != '' ORDER BY stream`

	var streams []string
	if err := r.db.SelectContext(ctx, &streams, query); err != nil {
		return nil, fmt.Errorf("failed to list streams: %w", err)
	}
	return streams, nil
}
