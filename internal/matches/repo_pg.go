package matches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"resume-match/internal/analysis"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, owner_id, stored_file_name, original_file_name, job_description,
	analysis, match_score, feedback, analysis_status, created_at, updated_at`

// Create inserts a new record.
func (r *PGRepo) Create(ctx context.Context, rec MatchRecord) error {
	const query = `
INSERT INTO match_records (
	id, owner_id, stored_file_name, original_file_name, job_description,
	analysis, match_score, feedback, analysis_status, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	payload, err := json.Marshal(rec.Analysis.Normalize())
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.OwnerID,
		rec.StoredFileName,
		nullableString(rec.OriginalFileName),
		rec.JobDescription,
		payload,
		rec.MatchScore,
		rec.Feedback,
		string(rec.AnalysisStatus),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

// GetByID returns a record by its ID. Malformed IDs are reported as not found.
func (r *PGRepo) GetByID(ctx context.Context, id string) (MatchRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return MatchRecord{}, ErrNotFound
	}
	query := `SELECT ` + selectColumns + ` FROM match_records WHERE id = $1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return MatchRecord{}, ErrNotFound
		}
		return MatchRecord{}, err
	}
	return rec, nil
}

// ListByOwner returns the owner's records ordered by created_at descending.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]MatchRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM match_records WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a record.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM match_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (MatchRecord, error) {
	var (
		rec          MatchRecord
		originalName sql.NullString
		payload      []byte
		status       string
	)
	if err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.StoredFileName,
		&originalName,
		&rec.JobDescription,
		&payload,
		&rec.MatchScore,
		&rec.Feedback,
		&status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return MatchRecord{}, err
	}
	if originalName.Valid {
		name := originalName.String
		rec.OriginalFileName = &name
	}
	rec.AnalysisStatus = AnalysisStatus(status)

	var a analysis.Analysis
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &a); err != nil {
			return MatchRecord{}, fmt.Errorf("decode analysis for %s: %w", rec.ID, err)
		}
	}
	rec.Analysis = a.Normalize()
	return rec, nil
}

func nullableString(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}
