package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UpsertAnalysis persists a scoring result. Re-running a resume replaces its
// analysis record. IsPriority is derived from the overall score.
func (db *DB) UpsertAnalysis(ctx context.Context, input *AnalysisInput) (*Analysis, error) {
	scoresJSON, err := json.Marshal(input.CriteriaScores)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal criteria scores: %w", err)
	}

	var a Analysis
	var storedScores []byte
	err = db.pool.QueryRow(ctx,
		`INSERT INTO analyses (resume_id, job_id, overall_score, criteria_scores,
		                       strengths, weaknesses, observations, recommendation, is_priority)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (resume_id) DO UPDATE SET
		     job_id = $2,
		     overall_score = $3,
		     criteria_scores = $4,
		     strengths = $5,
		     weaknesses = $6,
		     observations = $7,
		     recommendation = $8,
		     is_priority = $9
		 RETURNING id, resume_id, job_id, overall_score, criteria_scores,
		           strengths, weaknesses, observations, recommendation, is_priority, created_at`,
		input.ResumeID, input.JobID, input.OverallScore, scoresJSON,
		input.Strengths, input.Weaknesses, input.Observations, input.Recommendation,
		IsPriorityScore(input.OverallScore),
	).Scan(&a.ID, &a.ResumeID, &a.JobID, &a.OverallScore, &storedScores,
		&a.Strengths, &a.Weaknesses, &a.Observations, &a.Recommendation,
		&a.IsPriority, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert analysis: %w", err)
	}

	if storedScores != nil {
		_ = json.Unmarshal(storedScores, &a.CriteriaScores)
	}

	return &a, nil
}

// GetAnalysisByResumeID retrieves the analysis for a resume
func (db *DB) GetAnalysisByResumeID(ctx context.Context, resumeID uuid.UUID) (*Analysis, error) {
	var a Analysis
	var scoresJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, resume_id, job_id, overall_score, criteria_scores,
		        strengths, weaknesses, observations, recommendation, is_priority, created_at
		 FROM analyses WHERE resume_id = $1`,
		resumeID,
	).Scan(&a.ID, &a.ResumeID, &a.JobID, &a.OverallScore, &scoresJSON,
		&a.Strengths, &a.Weaknesses, &a.Observations, &a.Recommendation,
		&a.IsPriority, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	if scoresJSON != nil {
		_ = json.Unmarshal(scoresJSON, &a.CriteriaScores)
	}

	return &a, nil
}

// DeleteAnalysesByJobID removes all analyses for a job. Called when a job is
// edited, since its criteria and requirements no longer match the stored
// scores. Returns the number of analyses removed.
func (db *DB) DeleteAnalysesByJobID(ctx context.Context, jobID uuid.UUID) (int, error) {
	result, err := db.pool.Exec(ctx, `DELETE FROM analyses WHERE job_id = $1`, jobID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete analyses: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// ListAnalysesForExport retrieves a job's analyses joined with candidate and
// resume data, ordered by overall score descending.
func (db *DB) ListAnalysesForExport(ctx context.Context, jobID uuid.UUID) ([]ExportRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT a.id, a.resume_id, a.job_id, a.overall_score, a.criteria_scores,
		        a.strengths, a.weaknesses, a.observations, a.recommendation,
		        a.is_priority, a.created_at,
		        c.name, c.email, c.phone, c.education, c.experience, c.skills, c.languages,
		        r.file_name
		 FROM analyses a
		 LEFT JOIN candidates c ON c.resume_id = a.resume_id
		 JOIN resumes r ON r.id = a.resume_id
		 WHERE a.job_id = $1
		 ORDER BY a.overall_score DESC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses for export: %w", err)
	}
	defer rows.Close()

	var out []ExportRow
	for rows.Next() {
		var row ExportRow
		var scoresJSON []byte
		if err := rows.Scan(&row.ID, &row.ResumeID, &row.JobID, &row.OverallScore, &scoresJSON,
			&row.Strengths, &row.Weaknesses, &row.Observations, &row.Recommendation,
			&row.IsPriority, &row.CreatedAt,
			&row.CandidateName, &row.CandidateEmail, &row.CandidatePhone,
			&row.CandidateEducation, &row.CandidateExperience, &row.CandidateSkills,
			&row.CandidateLanguages, &row.ResumeFileName); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		if scoresJSON != nil {
			_ = json.Unmarshal(scoresJSON, &row.CriteriaScores)
		}
		out = append(out, row)
	}
	return out, nil
}
