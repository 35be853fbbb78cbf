package analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/marcos/resume-screener/internal/db"
)

// Result is the outcome of one successful pipeline run
type Result struct {
	Candidate *db.Candidate `json:"candidate"`
	Analysis  *db.Analysis  `json:"analysis"`
}

// Runner drives the per-resume pipeline: extraction, candidate persistence,
// scoring, analysis persistence, and the status state machine around them.
type Runner struct {
	store     Store
	extractor *Extractor
	scorer    *Scorer
	log       *zap.Logger

	// inflight collapses concurrent runs for the same resume id within
	// this process; the status compare-and-set in ClaimResume fences runs
	// across processes.
	inflight singleflight.Group
}

// NewRunner creates a pipeline runner
func NewRunner(store Store, extractor *Extractor, scorer *Scorer, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		store:     store,
		extractor: extractor,
		scorer:    scorer,
		log:       log,
	}
}

// Run executes the full pipeline for one resume. At most one run per resume
// is in flight at a time; a duplicate concurrent caller receives the shared
// result of the run already in progress.
func (r *Runner) Run(ctx context.Context, resumeID uuid.UUID) (*Result, error) {
	v, err, _ := r.inflight.Do(resumeID.String(), func() (any, error) {
		return r.run(ctx, resumeID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (r *Runner) run(ctx context.Context, resumeID uuid.UUID) (*Result, error) {
	resume, err := r.store.GetResumeByID(ctx, resumeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load resume: %w", err)
	}
	if resume == nil {
		return nil, &ErrResumeNotFound{ResumeID: resumeID}
	}
	if resume.JobID == nil {
		return nil, &ErrJobNotFound{ResumeID: resumeID}
	}

	job, err := r.store.GetJobByID(ctx, *resume.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return nil, &ErrJobNotFound{ResumeID: resumeID}
	}

	criteria, err := r.store.ListCriteriaByJobID(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load criteria: %w", err)
	}

	// Commit point A: the processing claim. Before it, failures leave the
	// resume untouched; after it, every failure path must end in an
	// explicit status write so no resume is stranded in processing.
	claimed, err := r.store.ClaimResume(ctx, resumeID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark resume processing: %w", err)
	}
	if !claimed {
		return nil, &ErrAlreadyProcessing{ResumeID: resumeID}
	}

	r.log.Info("analysis started",
		zap.String("resume_id", resumeID.String()),
		zap.String("job_id", job.ID.String()),
		zap.Int("criteria", len(criteria)))

	extraction, err := r.extractor.Extract(ctx, resume, job)
	if err != nil {
		return nil, r.fail(ctx, resumeID, err)
	}
	if extraction.Degraded {
		r.log.Warn("extraction degraded, storing raw response",
			zap.String("resume_id", resumeID.String()))
	}

	candidate, err := r.store.UpsertCandidate(ctx, extraction.CandidateInput(resumeID))
	if err != nil {
		return nil, r.fail(ctx, resumeID, err)
	}

	report, err := r.scorer.Score(ctx, candidate, job, criteria)
	if err != nil {
		return nil, r.fail(ctx, resumeID, err)
	}
	if report.Degraded {
		r.log.Warn("scoring degraded, storing neutral report",
			zap.String("resume_id", resumeID.String()))
	}

	analysisRecord, err := r.store.UpsertAnalysis(ctx, report.AnalysisInput(resumeID, job.ID))
	if err != nil {
		return nil, r.fail(ctx, resumeID, err)
	}

	// Commit point B
	if err := r.store.UpdateResumeStatus(ctx, resumeID, db.ResumeStatusCompleted); err != nil {
		return nil, r.fail(ctx, resumeID, err)
	}

	r.log.Info("analysis completed",
		zap.String("resume_id", resumeID.String()),
		zap.Int("overall_score", analysisRecord.OverallScore),
		zap.String("recommendation", analysisRecord.Recommendation),
		zap.Bool("priority", analysisRecord.IsPriority))

	return &Result{Candidate: candidate, Analysis: analysisRecord}, nil
}

// fail marks the resume as errored before propagating the failure. The
// cleanup is best-effort: its own failure is logged and swallowed so it
// cannot mask the original error. A fresh context is used because the
// original one may already be cancelled.
func (r *Runner) fail(ctx context.Context, resumeID uuid.UUID, cause error) error {
	r.log.Error("analysis failed",
		zap.String("resume_id", resumeID.String()),
		zap.Error(cause))

	cleanupCtx := context.WithoutCancel(ctx)
	if err := r.store.UpdateResumeStatus(cleanupCtx, resumeID, db.ResumeStatusError); err != nil {
		r.log.Warn("failed to mark resume as errored",
			zap.String("resume_id", resumeID.String()),
			zap.Error(err))
	}
	return cause
}
