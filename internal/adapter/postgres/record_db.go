package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

type MaintenanceRecordRepository struct {
	db *sql.DB
}

func NewMaintenanceRecordRepository(db *sql.DB) *MaintenanceRecordRepository {
	return &MaintenanceRecordRepository{db: db}
}

const recordColumns = `id, user_id, date, kilometers, tag_ids, photo, notes, created_at, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (*domain.MaintenanceRecord, error) {
	rec := &domain.MaintenanceRecord{}
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Date,
		&rec.Kilometers,
		pq.Array(&rec.TagIDs),
		&rec.Photo,
		&rec.Notes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *MaintenanceRecordRepository) ListMaintenanceRecords(ctx context.Context, userID string) ([]*domain.MaintenanceRecord, error) {
	query := `SELECT ` + recordColumns + `
		FROM maintenance_records WHERE user_id = $1
		ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.MaintenanceRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *MaintenanceRecordRepository) GetMaintenanceRecord(ctx context.Context, id string) (*domain.MaintenanceRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM maintenance_records WHERE id = $1`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return rec, nil
}

func (r *MaintenanceRecordRepository) CreateMaintenanceRecord(ctx context.Context, record *domain.MaintenanceRecord) (string, error) {
	query := `INSERT INTO maintenance_records (id, user_id, date, kilometers, tag_ids, photo, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		record.UserID,
		record.Date,
		record.Kilometers,
		pq.Array(record.TagIDs),
		record.Photo,
		record.Notes,
	).Scan(
		&record.ID,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return "", mapError(err)
	}
	return record.ID, nil
}

// UpdateMaintenanceRecord leaves columns whose patch field is nil untouched.
func (r *MaintenanceRecordRepository) UpdateMaintenanceRecord(ctx context.Context, id string, patch domain.MaintenanceRecordPatch) error {
	query := `UPDATE maintenance_records
		SET
			date = COALESCE($1, date),
			kilometers = COALESCE($2, kilometers),
			tag_ids = COALESCE($3, tag_ids),
			photo = COALESCE($4, photo),
			notes = COALESCE($5, notes),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		patch.Date,
		patch.Kilometers,
		pq.Array(patch.TagIDs),
		patch.Photo,
		patch.Notes,
		id,
	)
	if err != nil {
		return fmt.Errorf("error updating record: %w", mapError(err))
	}
	return checkAffected(result)
}

func (r *MaintenanceRecordRepository) DeleteMaintenanceRecord(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM maintenance_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
