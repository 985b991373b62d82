package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

type OdoCheckRepository struct {
	db *sql.DB
}

func NewOdoCheckRepository(db *sql.DB) *OdoCheckRepository {
	return &OdoCheckRepository{db: db}
}

func (r *OdoCheckRepository) ListOdoChecks(ctx context.Context, userID string) ([]*domain.OdoCheckRecord, error) {
	query := `SELECT id, user_id, date, kilometers, results, created_at
		FROM odo_check_records WHERE user_id = $1
		ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	checks := make([]*domain.OdoCheckRecord, 0)
	for rows.Next() {
		check := &domain.OdoCheckRecord{}
		var results []byte
		if err := rows.Scan(
			&check.ID,
			&check.UserID,
			&check.Date,
			&check.Kilometers,
			&results,
			&check.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(results, &check.Results); err != nil {
			return nil, fmt.Errorf("decode results of check %s: %w", check.ID, err)
		}
		checks = append(checks, check)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return checks, nil
}

// CreateOdoCheck stores results as JSONB. Unset optional fields are omitted
// from the document, never written as null.
func (r *OdoCheckRepository) CreateOdoCheck(ctx context.Context, check *domain.OdoCheckRecord) (string, error) {
	results := check.Results
	if results == nil {
		results = []domain.OdoCheckResult{}
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("encode results: %w", err)
	}

	query := `INSERT INTO odo_check_records (id, user_id, date, kilometers, results)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		check.UserID,
		check.Date,
		check.Kilometers,
		payload,
	).Scan(
		&check.ID,
		&check.CreatedAt,
	)
	if err != nil {
		return "", mapError(err)
	}
	return check.ID, nil
}

func (r *OdoCheckRepository) ClearOdoChecks(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM odo_check_records WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
