package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"brainwaves/internal/domain"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile domain.Profile) error
	GetByID(ctx context.Context, id string) (domain.Profile, error)
	GetByIDAndStatus(ctx context.Context, id, status string) (domain.Profile, error)
	ListByGroupAndStatus(ctx context.Context, groupName, status string) ([]domain.Profile, error)
	UpdateName(ctx context.Context, id, name string) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) Create(ctx context.Context, profile domain.Profile) error {
	const query = `
		INSERT INTO profiles (id, name, group_name, profiler_type_name, status)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.Name,
		profile.GroupName,
		profile.ProfilerTypeName,
		profile.Status,
	)
	return err
}

func (r *PgProfileRepository) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	const query = `
		SELECT id, name, group_name, profiler_type_name, status
		FROM profiles
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgProfileRepository) GetByIDAndStatus(ctx context.Context, id, status string) (domain.Profile, error) {
	const query = `
		SELECT id, name, group_name, profiler_type_name, status
		FROM profiles
		WHERE id = $1 AND status = $2
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id, status))
}

func (r *PgProfileRepository) ListByGroupAndStatus(ctx context.Context, groupName, status string) ([]domain.Profile, error) {
	const query = `
		SELECT id, name, group_name, profiler_type_name, status
		FROM profiles
		WHERE group_name = $1 AND status = $2
		ORDER BY name, id
	`
	rows, err := r.pool.Query(ctx, query, groupName, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.GroupName, &p.ProfilerTypeName, &p.Status); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *PgProfileRepository) UpdateName(ctx context.Context, id, name string) error {
	const query = `UPDATE profiles SET name = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgProfileRepository) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE profiles SET status = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgProfileRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM profiles WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgProfileRepository) scanOne(row pgx.Row) (domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.ID, &p.Name, &p.GroupName, &p.ProfilerTypeName, &p.Status)
	if err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}
