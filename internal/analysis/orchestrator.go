package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcos/resume-screener/internal/ratelimit"
)

// BatchRequest selects the resumes for a batch run. When ResumeIDs is set,
// only the pending ones among them run; otherwise every pending resume of
// JobID runs.
type BatchRequest struct {
	JobID     *uuid.UUID
	ResumeIDs []uuid.UUID
}

// ItemOutcome records how one resume fared inside a batch
type ItemOutcome struct {
	ResumeID    uuid.UUID `json:"resume_id"`
	Success     bool      `json:"success"`
	Result      *Result   `json:"result,omitempty"`
	Error       string    `json:"error,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// BatchReport summarizes a batch run
type BatchReport struct {
	Total            int           `json:"total"`
	Succeeded        int           `json:"succeeded"`
	Failed           int           `json:"failed"`
	Outcomes         []ItemOutcome `json:"outcomes"`
	EstimatedSeconds float64       `json:"estimated_seconds"`

	EstimatedDuration time.Duration `json:"-"`
}

// Orchestrator runs batches of analyses sequentially, pacing run starts to
// stay inside the AI provider's request budget.
type Orchestrator struct {
	store  Store
	runner *Runner
	pacer  *ratelimit.Pacer
	log    *zap.Logger
}

// NewOrchestrator creates a batch orchestrator
func NewOrchestrator(store Store, runner *Runner, pacer *ratelimit.Pacer, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		store:  store,
		runner: runner,
		pacer:  pacer,
		log:    log,
	}
}

// RunBatch resolves the eligible resumes and analyzes them one at a time.
// A failed item is recorded and the batch moves on; only an empty eligible
// set, a selection query failure, or context cancellation stops the batch.
// An empty eligible set returns (nil, nil).
func (o *Orchestrator) RunBatch(ctx context.Context, req BatchRequest) (*BatchReport, error) {
	ids, err := o.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	report := &BatchReport{
		Total:             len(ids),
		Outcomes:          make([]ItemOutcome, 0, len(ids)),
		EstimatedDuration: o.pacer.EstimateDuration(len(ids)),
	}
	report.EstimatedSeconds = report.EstimatedDuration.Seconds()

	o.log.Info("batch started",
		zap.Int("total", report.Total),
		zap.Duration("estimated_duration", report.EstimatedDuration))

	for i, id := range ids {
		if i > 0 {
			if err := o.pacer.Wait(ctx); err != nil {
				return report, fmt.Errorf("batch interrupted: %w", err)
			}
		}

		outcome := ItemOutcome{ResumeID: id}
		result, err := o.runner.Run(ctx, id)
		outcome.ProcessedAt = time.Now().UTC()
		if err != nil {
			outcome.Error = err.Error()
			report.Failed++
			o.log.Warn("batch item failed",
				zap.String("resume_id", id.String()),
				zap.Error(err))
		} else {
			outcome.Success = true
			outcome.Result = result
			report.Succeeded++
		}
		report.Outcomes = append(report.Outcomes, outcome)

		if ctx.Err() != nil {
			return report, fmt.Errorf("batch interrupted: %w", ctx.Err())
		}
	}

	o.log.Info("batch completed",
		zap.Int("total", report.Total),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed))

	return report, nil
}

// resolve selects the pending resume ids the batch will run over
func (o *Orchestrator) resolve(ctx context.Context, req BatchRequest) ([]uuid.UUID, error) {
	if len(req.ResumeIDs) > 0 {
		ids, err := o.store.FilterPendingResumeIDs(ctx, req.ResumeIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to select pending resumes: %w", err)
		}
		return ids, nil
	}
	if req.JobID == nil {
		return nil, nil
	}
	ids, err := o.store.ListPendingResumeIDs(ctx, *req.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending resumes: %w", err)
	}
	return ids, nil
}
