package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"brainwaves/internal/domain"
)

type GroupRepository interface {
	Create(ctx context.Context, group domain.Group) error
	GetByName(ctx context.Context, name string) (domain.Group, error)
	GetByToken(ctx context.Context, token string) (domain.Group, error)
	List(ctx context.Context, includeArchived bool) ([]domain.GroupSummary, error)
	Update(ctx context.Context, group domain.Group) error
	Rename(ctx context.Context, oldName, newName string) error
	UpdateToken(ctx context.Context, name, token string) error
	Delete(ctx context.Context, name string) error
}

type PgGroupRepository struct {
	pool *pgxpool.Pool
}

func NewPgGroupRepository(pool *pgxpool.Pool) *PgGroupRepository {
	return &PgGroupRepository{pool: pool}
}

func (r *PgGroupRepository) Create(ctx context.Context, group domain.Group) error {
	const query = `
		INSERT INTO groups (name, display_as, token, archived, profiler_type_name, emoji)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		group.Name,
		group.DisplayAs,
		group.Token,
		group.Archived,
		group.ProfilerTypeName,
		group.Emoji,
	)
	return err
}

func (r *PgGroupRepository) GetByName(ctx context.Context, name string) (domain.Group, error) {
	const query = `
		SELECT name, display_as, token, archived, profiler_type_name, emoji
		FROM groups
		WHERE name = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, name))
}

func (r *PgGroupRepository) GetByToken(ctx context.Context, token string) (domain.Group, error) {
	const query = `
		SELECT name, display_as, token, archived, profiler_type_name, emoji
		FROM groups
		WHERE token = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, token))
}

// List returns groups with their count of complete profiles, ordered by name.
// Archived groups are excluded unless requested.
func (r *PgGroupRepository) List(ctx context.Context, includeArchived bool) ([]domain.GroupSummary, error) {
	const query = `
		SELECT g.name, g.display_as, g.token, g.archived, g.profiler_type_name, g.emoji,
			COUNT(p.id) AS profile_count
		FROM groups g
		LEFT JOIN profiles p ON p.group_name = g.name AND p.status = 'Complete'
		WHERE ($1 OR NOT g.archived)
		GROUP BY g.name, g.display_as, g.token, g.archived, g.profiler_type_name, g.emoji
		ORDER BY g.name
	`
	rows, err := r.pool.Query(ctx, query, includeArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.GroupSummary
	for rows.Next() {
		var g domain.GroupSummary
		if err := rows.Scan(&g.Name, &g.DisplayAs, &g.Token, &g.Archived, &g.ProfilerTypeName, &g.Emoji, &g.ProfileCount); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *PgGroupRepository) Update(ctx context.Context, group domain.Group) error {
	const query = `
		UPDATE groups
		SET display_as = $2, archived = $3, emoji = $4
		WHERE name = $1
	`
	tag, err := r.pool.Exec(ctx, query, group.Name, group.DisplayAs, group.Archived, group.Emoji)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Rename updates the group key and cascades the change onto its profiles in
// one transaction.
func (r *PgGroupRepository) Rename(ctx context.Context, oldName, newName string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE groups SET name = $2 WHERE name = $1`, oldName, newName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	if _, err := tx.Exec(ctx, `UPDATE profiles SET group_name = $2 WHERE group_name = $1`, oldName, newName); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PgGroupRepository) UpdateToken(ctx context.Context, name, token string) error {
	const query = `UPDATE groups SET token = $2 WHERE name = $1`
	tag, err := r.pool.Exec(ctx, query, name, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgGroupRepository) Delete(ctx context.Context, name string) error {
	const query = `DELETE FROM groups WHERE name = $1`
	tag, err := r.pool.Exec(ctx, query, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgGroupRepository) scanOne(row pgx.Row) (domain.Group, error) {
	var g domain.Group
	err := row.Scan(&g.Name, &g.DisplayAs, &g.Token, &g.Archived, &g.ProfilerTypeName, &g.Emoji)
	if err != nil {
		return domain.Group{}, err
	}
	return g, nil
}
