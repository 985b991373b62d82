package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

type TagIntervalRepository struct {
	db *sql.DB
}

func NewTagIntervalRepository(db *sql.DB) *TagIntervalRepository {
	return &TagIntervalRepository{db: db}
}

const tagColumns = `id, user_id, name, kilometers, days, enabled, created_at, updated_at`

func scanTag(row interface{ Scan(...any) error }) (*domain.TagInterval, error) {
	tag := &domain.TagInterval{}
	err := row.Scan(
		&tag.ID,
		&tag.UserID,
		&tag.Name,
		&tag.Kilometers,
		&tag.Days,
		&tag.Enabled,
		&tag.CreatedAt,
		&tag.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (r *TagIntervalRepository) ListTagIntervals(ctx context.Context, userID string) ([]*domain.TagInterval, error) {
	query := `SELECT ` + tagColumns + `
		FROM tag_intervals WHERE user_id = $1
		ORDER BY name ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]*domain.TagInterval, 0)
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *TagIntervalRepository) GetTagInterval(ctx context.Context, id string) (*domain.TagInterval, error) {
	query := `SELECT ` + tagColumns + ` FROM tag_intervals WHERE id = $1`

	tag, err := scanTag(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return tag, nil
}

func (r *TagIntervalRepository) CreateTagInterval(ctx context.Context, interval *domain.TagInterval) (string, error) {
	query := `INSERT INTO tag_intervals (id, user_id, name, kilometers, days, enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		interval.UserID,
		interval.Name,
		interval.Kilometers,
		interval.Days,
		interval.Enabled,
	).Scan(
		&interval.ID,
		&interval.CreatedAt,
		&interval.UpdatedAt,
	)
	if err != nil {
		return "", mapError(err)
	}
	return interval.ID, nil
}

func (r *TagIntervalRepository) UpdateTagInterval(ctx context.Context, id string, patch domain.TagIntervalPatch) error {
	query := `UPDATE tag_intervals
		SET
			name = COALESCE($1, name),
			kilometers = COALESCE($2, kilometers),
			days = COALESCE($3, days),
			enabled = COALESCE($4, enabled),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		patch.Name,
		patch.Kilometers,
		patch.Days,
		patch.Enabled,
		id,
	)
	if err != nil {
		return fmt.Errorf("error updating tag: %w", mapError(err))
	}
	return checkAffected(result)
}

func (r *TagIntervalRepository) DeleteTagInterval(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tag_intervals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
