package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"brainwaves/internal/domain"
)

type ConfigRepository interface {
	Upsert(ctx context.Context, entry domain.ConfigEntry) error
	Get(ctx context.Context, key string) (domain.ConfigEntry, error)
}

type PgConfigRepository struct {
	pool *pgxpool.Pool
}

func NewPgConfigRepository(pool *pgxpool.Pool) *PgConfigRepository {
	return &PgConfigRepository{pool: pool}
}

func (r *PgConfigRepository) Upsert(ctx context.Context, entry domain.ConfigEntry) error {
	const query = `
		INSERT INTO configurations (key, value, write_only, superuser_only)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value,
			write_only = EXCLUDED.write_only,
			superuser_only = EXCLUDED.superuser_only
	`
	_, err := r.pool.Exec(ctx, query, entry.Key, entry.Value, entry.WriteOnly, entry.SuperuserOnly)
	return err
}

func (r *PgConfigRepository) Get(ctx context.Context, key string) (domain.ConfigEntry, error) {
	const query = `
		SELECT key, value, write_only, superuser_only
		FROM configurations
		WHERE key = $1
	`
	var entry domain.ConfigEntry
	err := r.pool.QueryRow(ctx, query, key).Scan(&entry.Key, &entry.Value, &entry.WriteOnly, &entry.SuperuserOnly)
	if err != nil {
		return domain.ConfigEntry{}, err
	}
	return entry, nil
}
