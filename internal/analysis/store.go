// Package analysis implements the resume analysis pipeline: AI extraction of
// candidate facts, criteria scoring, the per-resume status state machine,
// and the rate-limited batch orchestrator.
package analysis

import (
	"context"

	"github.com/google/uuid"

	"github.com/marcos/resume-screener/internal/db"
)

// Store is the persistence surface the pipeline depends on. *db.DB
// implements it; tests substitute a fake.
type Store interface {
	GetResumeByID(ctx context.Context, id uuid.UUID) (*db.Resume, error)
	GetJobByID(ctx context.Context, id uuid.UUID) (*db.Job, error)
	ListCriteriaByJobID(ctx context.Context, jobID uuid.UUID) ([]db.Criterion, error)

	// ClaimResume transitions a resume to processing unless a run is
	// already in flight. Returns false if the resume is already processing.
	ClaimResume(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateResumeStatus(ctx context.Context, id uuid.UUID, status string) error

	UpsertCandidate(ctx context.Context, input *db.CandidateInput) (*db.Candidate, error)
	UpsertAnalysis(ctx context.Context, input *db.AnalysisInput) (*db.Analysis, error)

	ListPendingResumeIDs(ctx context.Context, jobID uuid.UUID) ([]uuid.UUID, error)
	FilterPendingResumeIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

var _ Store = (*db.DB)(nil)
