package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateJob creates a new job
func (db *DB) CreateJob(ctx context.Context, input *JobCreateInput) (*Job, error) {
	status := input.Status
	if status == "" {
		status = JobStatusActive
	}

	var j Job
	err := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (title, description, requirements, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, title, description, requirements, status, created_at, updated_at`,
		input.Title, input.Description, input.Requirements, status,
	).Scan(&j.ID, &j.Title, &j.Description, &j.Requirements, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return &j, nil
}

// GetJobByID retrieves a job by its ID
func (db *DB) GetJobByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	var j Job
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, description, requirements, status, created_at, updated_at
		 FROM jobs WHERE id = $1`,
		id,
	).Scan(&j.ID, &j.Title, &j.Description, &j.Requirements, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &j, nil
}

// ListJobs retrieves all jobs, newest first
func (db *DB) ListJobs(ctx context.Context) ([]Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, description, requirements, status, created_at, updated_at
		 FROM jobs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Description, &j.Requirements, &j.Status,
			&j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// UpdateJob updates a job's editable fields. Returns nil if the job does not exist.
func (db *DB) UpdateJob(ctx context.Context, id uuid.UUID, input *JobCreateInput) (*Job, error) {
	var j Job
	err := db.pool.QueryRow(ctx,
		`UPDATE jobs
		 SET title = $2, description = $3, requirements = $4, status = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, title, description, requirements, status, created_at, updated_at`,
		id, input.Title, input.Description, input.Requirements, input.Status,
	).Scan(&j.ID, &j.Title, &j.Description, &j.Requirements, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return &j, nil
}

// DeleteJob deletes a job and, via cascade, its criteria and analyses
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("job not found: %s", id)
	}
	return nil
}
