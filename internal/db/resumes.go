package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateResume registers an uploaded resume. Status starts as pending.
func (db *DB) CreateResume(ctx context.Context, input *ResumeCreateInput) (*Resume, error) {
	var r Resume
	err := db.pool.QueryRow(ctx,
		`INSERT INTO resumes (job_id, file_url, file_name, file_type, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, job_id, file_url, file_name, file_type, status, created_at, updated_at`,
		input.JobID, input.FileURL, input.FileName, input.FileType, ResumeStatusPending,
	).Scan(&r.ID, &r.JobID, &r.FileURL, &r.FileName, &r.FileType, &r.Status,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create resume: %w", err)
	}
	return &r, nil
}

// GetResumeByID retrieves a resume by its ID
func (db *DB) GetResumeByID(ctx context.Context, id uuid.UUID) (*Resume, error) {
	var r Resume
	err := db.pool.QueryRow(ctx,
		`SELECT id, job_id, file_url, file_name, file_type, status, created_at, updated_at
		 FROM resumes WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.JobID, &r.FileURL, &r.FileName, &r.FileType, &r.Status,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return &r, nil
}

// ListResumesByJobID retrieves all resumes associated with a job
func (db *DB) ListResumesByJobID(ctx context.Context, jobID uuid.UUID) ([]Resume, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, job_id, file_url, file_name, file_type, status, created_at, updated_at
		 FROM resumes WHERE job_id = $1 ORDER BY created_at`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	var resumes []Resume
	for rows.Next() {
		var r Resume
		if err := rows.Scan(&r.ID, &r.JobID, &r.FileURL, &r.FileName, &r.FileType, &r.Status,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		resumes = append(resumes, r)
	}
	return resumes, nil
}

// UpdateResumeStatus writes a resume's status unconditionally
func (db *DB) UpdateResumeStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE resumes SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update resume status: %w", err)
	}
	return nil
}

// ClaimResume transitions a resume to processing unless a run is already in
// flight. The compare-and-set on status fences concurrent runs for the same
// document. Returns false when the resume is already processing.
func (db *DB) ClaimResume(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`UPDATE resumes SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status <> $2`,
		id, ResumeStatusProcessing,
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim resume: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// AssociateResumes reassigns the given resumes to a job and resets their
// status to pending, restarting the analysis lifecycle. Returns the number
// of resumes updated.
func (db *DB) AssociateResumes(ctx context.Context, resumeIDs []uuid.UUID, jobID uuid.UUID) (int, error) {
	result, err := db.pool.Exec(ctx,
		`UPDATE resumes SET job_id = $2, status = $3, updated_at = NOW()
		 WHERE id = ANY($1)`,
		resumeIDs, jobID, ResumeStatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to associate resumes: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// ResetResumesToPending returns all of a job's resumes to the pending state
// so they are picked up by the next batch. Used when the job definition
// changes and existing analyses are invalidated.
func (db *DB) ResetResumesToPending(ctx context.Context, jobID uuid.UUID) (int, error) {
	result, err := db.pool.Exec(ctx,
		`UPDATE resumes SET status = $2, updated_at = NOW() WHERE job_id = $1`,
		jobID, ResumeStatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reset resumes: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// ListPendingResumeIDs retrieves the ids of a job's pending resumes in
// upload order. This order is the batch processing order.
func (db *DB) ListPendingResumeIDs(ctx context.Context, jobID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id FROM resumes WHERE job_id = $1 AND status = $2 ORDER BY created_at`,
		jobID, ResumeStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending resumes: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan resume id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// FilterPendingResumeIDs narrows an explicit id set to those currently
// pending, preserving upload order.
func (db *DB) FilterPendingResumeIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id FROM resumes WHERE id = ANY($1) AND status = $2 ORDER BY created_at`,
		ids, ResumeStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to filter pending resumes: %w", err)
	}
	defer rows.Close()

	var pending []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan resume id: %w", err)
		}
		pending = append(pending, id)
	}
	return pending, nil
}
