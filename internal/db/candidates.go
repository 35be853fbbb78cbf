package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UpsertCandidate persists an extraction result. Re-running a resume
// replaces its candidate record rather than inserting a duplicate.
func (db *DB) UpsertCandidate(ctx context.Context, input *CandidateInput) (*Candidate, error) {
	var rawJSON []byte
	var err error
	if input.Raw != nil {
		rawJSON, err = json.Marshal(input.Raw)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal extracted data: %w", err)
		}
	}

	var c Candidate
	err = db.pool.QueryRow(ctx,
		`INSERT INTO candidates (resume_id, name, email, phone, education, experience,
		                         skills, languages, summary, extracted_data, is_validated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE)
		 ON CONFLICT (resume_id) DO UPDATE SET
		     name = $2,
		     email = $3,
		     phone = $4,
		     education = $5,
		     experience = $6,
		     skills = $7,
		     languages = $8,
		     summary = $9,
		     extracted_data = $10,
		     is_validated = FALSE
		 RETURNING id, resume_id, name, email, phone, education, experience,
		           skills, languages, summary, is_validated, created_at`,
		input.ResumeID, input.Name, input.Email, input.Phone, input.Education,
		input.Experience, input.Skills, input.Languages, input.Summary, rawJSON,
	).Scan(&c.ID, &c.ResumeID, &c.Name, &c.Email, &c.Phone, &c.Education,
		&c.Experience, &c.Skills, &c.Languages, &c.Summary, &c.IsValidated, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert candidate: %w", err)
	}

	c.Raw = input.Raw
	return &c, nil
}

// GetCandidateByResumeID retrieves the candidate extracted from a resume
func (db *DB) GetCandidateByResumeID(ctx context.Context, resumeID uuid.UUID) (*Candidate, error) {
	var c Candidate
	var rawJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, resume_id, name, email, phone, education, experience,
		        skills, languages, summary, extracted_data, is_validated, created_at
		 FROM candidates WHERE resume_id = $1`,
		resumeID,
	).Scan(&c.ID, &c.ResumeID, &c.Name, &c.Email, &c.Phone, &c.Education,
		&c.Experience, &c.Skills, &c.Languages, &c.Summary, &rawJSON,
		&c.IsValidated, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	if rawJSON != nil {
		var raw any
		if err := json.Unmarshal(rawJSON, &raw); err == nil {
			c.Raw = raw
		}
	}

	return &c, nil
}
