package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"brainwaves/internal/domain"
)

type ProfilerTypeRepository interface {
	ListNames(ctx context.Context) ([]string, error)
	GetByName(ctx context.Context, name string) (domain.ProfilerTypeRef, error)
	Create(ctx context.Context, ref domain.ProfilerTypeRef) error
}

type PgProfilerTypeRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfilerTypeRepository(pool *pgxpool.Pool) *PgProfilerTypeRepository {
	return &PgProfilerTypeRepository{pool: pool}
}

func (r *PgProfilerTypeRepository) ListNames(ctx context.Context) ([]string, error) {
	const query = `SELECT name FROM profiler_types ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *PgProfilerTypeRepository) GetByName(ctx context.Context, name string) (domain.ProfilerTypeRef, error) {
	const query = `SELECT name, filename FROM profiler_types WHERE name = $1`
	var ref domain.ProfilerTypeRef
	err := r.pool.QueryRow(ctx, query, name).Scan(&ref.Name, &ref.Filename)
	if err != nil {
		return domain.ProfilerTypeRef{}, err
	}
	return ref, nil
}

func (r *PgProfilerTypeRepository) Create(ctx context.Context, ref domain.ProfilerTypeRef) error {
	const query = `INSERT INTO profiler_types (name, filename) VALUES ($1, $2)`
	_, err := r.pool.Exec(ctx, query, ref.Name, ref.Filename)
	return err
}
