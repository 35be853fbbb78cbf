package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateCriterion adds an evaluation criterion to a job
func (db *DB) CreateCriterion(ctx context.Context, input *CriterionCreateInput) (*Criterion, error) {
	var c Criterion
	err := db.pool.QueryRow(ctx,
		`INSERT INTO job_criteria (job_id, criterion_name, criterion_type, weight, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, job_id, criterion_name, criterion_type, weight, description, created_at`,
		input.JobID, input.Name, input.Type, input.Weight, input.Description,
	).Scan(&c.ID, &c.JobID, &c.Name, &c.Type, &c.Weight, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create criterion: %w", err)
	}
	return &c, nil
}

// ListCriteriaByJobID retrieves a job's criteria in creation order
func (db *DB) ListCriteriaByJobID(ctx context.Context, jobID uuid.UUID) ([]Criterion, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, job_id, criterion_name, criterion_type, weight, description, created_at
		 FROM job_criteria WHERE job_id = $1 ORDER BY created_at`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}
	defer rows.Close()

	var criteria []Criterion
	for rows.Next() {
		var c Criterion
		if err := rows.Scan(&c.ID, &c.JobID, &c.Name, &c.Type, &c.Weight, &c.Description,
			&c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan criterion: %w", err)
		}
		criteria = append(criteria, c)
	}
	return criteria, nil
}

// DeleteCriterion removes a criterion
func (db *DB) DeleteCriterion(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM job_criteria WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete criterion: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("criterion not found: %s", id)
	}
	return nil
}
