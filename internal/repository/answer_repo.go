package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"brainwaves/internal/domain"
)

type AnswerRepository interface {
	Upsert(ctx context.Context, answer domain.Answer) (domain.Answer, bool, error)
	ListByProfile(ctx context.Context, profileID string) ([]domain.Answer, error)
	DeleteByProfile(ctx context.Context, profileID string) error
}

type PgAnswerRepository struct {
	pool *pgxpool.Pool
}

func NewPgAnswerRepository(pool *pgxpool.Pool) *PgAnswerRepository {
	return &PgAnswerRepository{pool: pool}
}

// Upsert writes an answer keyed by (profile, question); a resubmission
// overwrites the score. The bool result reports whether a row already
// existed.
func (r *PgAnswerRepository) Upsert(ctx context.Context, answer domain.Answer) (domain.Answer, bool, error) {
	const query = `
		INSERT INTO answers (id, profile_id, question, score, domain)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (profile_id, question)
		DO UPDATE SET score = EXCLUDED.score, domain = EXCLUDED.domain
		RETURNING id, (xmax <> 0) AS updated
	`
	var updated bool
	err := r.pool.QueryRow(ctx, query,
		answer.ID,
		answer.ProfileID,
		answer.Question,
		answer.Score,
		answer.Domain,
	).Scan(&answer.ID, &updated)
	if err != nil {
		return domain.Answer{}, false, err
	}
	return answer, updated, nil
}

func (r *PgAnswerRepository) ListByProfile(ctx context.Context, profileID string) ([]domain.Answer, error) {
	const query = `
		SELECT id, profile_id, question, score, domain
		FROM answers
		WHERE profile_id = $1
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []domain.Answer
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.ProfileID, &a.Question, &a.Score, &a.Domain); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (r *PgAnswerRepository) DeleteByProfile(ctx context.Context, profileID string) error {
	const query = `DELETE FROM answers WHERE profile_id = $1`
	_, err := r.pool.Exec(ctx, query, profileID)
	return err
}
