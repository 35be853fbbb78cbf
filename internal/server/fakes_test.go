package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcos/resume-screener/internal/db"
)

// fakeStore is an in-memory store for handler tests
type fakeStore struct {
	mu         sync.Mutex
	jobs       map[uuid.UUID]*db.Job
	criteria   map[uuid.UUID][]db.Criterion
	resumes    map[uuid.UUID]*db.Resume
	candidates map[uuid.UUID]*db.Candidate
	analyses   map[uuid.UUID]*db.Analysis
	exportRows map[uuid.UUID][]db.ExportRow

	failNext error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:       make(map[uuid.UUID]*db.Job),
		criteria:   make(map[uuid.UUID][]db.Criterion),
		resumes:    make(map[uuid.UUID]*db.Resume),
		candidates: make(map[uuid.UUID]*db.Candidate),
		analyses:   make(map[uuid.UUID]*db.Analysis),
		exportRows: make(map[uuid.UUID][]db.ExportRow),
	}
}

func newTestServer(st store) *Server {
	if st == nil {
		st = newFakeStore()
	}
	return &Server{
		db:       st,
		validate: validator.New(),
		log:      zap.NewNop(),
	}
}

func (f *fakeStore) fail() error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	return nil
}

func (f *fakeStore) CreateJob(_ context.Context, input *db.JobCreateInput) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = db.JobStatusActive
	}
	job := &db.Job{
		ID:           uuid.New(),
		Title:        input.Title,
		Description:  input.Description,
		Requirements: input.Requirements,
		Status:       status,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeStore) GetJobByID(_ context.Context, id uuid.UUID) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	job, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *job
	return &cp, nil
}

func (f *fakeStore) ListJobs(_ context.Context) ([]db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	var jobs []db.Job
	for _, j := range f.jobs {
		jobs = append(jobs, *j)
	}
	return jobs, nil
}

func (f *fakeStore) UpdateJob(_ context.Context, id uuid.UUID, input *db.JobCreateInput) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	job, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	job.Title = input.Title
	job.Description = input.Description
	job.Requirements = input.Requirements
	if input.Status != "" {
		job.Status = input.Status
	}
	job.UpdatedAt = time.Now()
	cp := *job
	return &cp, nil
}

func (f *fakeStore) DeleteJob(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return err
	}
	if _, ok := f.jobs[id]; !ok {
		return fmt.Errorf("job not found: %s", id)
	}
	delete(f.jobs, id)
	return nil
}

func (f *fakeStore) CreateCriterion(_ context.Context, input *db.CriterionCreateInput) (*db.Criterion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	c := db.Criterion{
		ID:          uuid.New(),
		JobID:       input.JobID,
		Name:        input.Name,
		Type:        input.Type,
		Weight:      input.Weight,
		Description: input.Description,
		CreatedAt:   time.Now(),
	}
	f.criteria[input.JobID] = append(f.criteria[input.JobID], c)
	return &c, nil
}

func (f *fakeStore) ListCriteriaByJobID(_ context.Context, jobID uuid.UUID) ([]db.Criterion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	return append([]db.Criterion(nil), f.criteria[jobID]...), nil
}

func (f *fakeStore) DeleteCriterion(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return err
	}
	for jobID, list := range f.criteria {
		for i, c := range list {
			if c.ID == id {
				f.criteria[jobID] = append(list[:i], list[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("criterion not found: %s", id)
}

func (f *fakeStore) CreateResume(_ context.Context, input *db.ResumeCreateInput) (*db.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	r := &db.Resume{
		ID:        uuid.New(),
		JobID:     input.JobID,
		FileURL:   input.FileURL,
		FileName:  input.FileName,
		FileType:  input.FileType,
		Status:    db.ResumeStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.resumes[r.ID] = r
	return r, nil
}

func (f *fakeStore) GetResumeByID(_ context.Context, id uuid.UUID) (*db.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	r, ok := f.resumes[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) ListResumesByJobID(_ context.Context, jobID uuid.UUID) ([]db.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	var out []db.Resume
	for _, r := range f.resumes {
		if r.JobID != nil && *r.JobID == jobID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) AssociateResumes(_ context.Context, resumeIDs []uuid.UUID, jobID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return 0, err
	}
	updated := 0
	for _, id := range resumeIDs {
		if r, ok := f.resumes[id]; ok {
			r.JobID = &jobID
			r.Status = db.ResumeStatusPending
			updated++
		}
	}
	return updated, nil
}

func (f *fakeStore) ResetResumesToPending(_ context.Context, jobID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return 0, err
	}
	reset := 0
	for _, r := range f.resumes {
		if r.JobID != nil && *r.JobID == jobID {
			r.Status = db.ResumeStatusPending
			reset++
		}
	}
	return reset, nil
}

func (f *fakeStore) GetCandidateByResumeID(_ context.Context, resumeID uuid.UUID) (*db.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	c, ok := f.candidates[resumeID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) GetAnalysisByResumeID(_ context.Context, resumeID uuid.UUID) (*db.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	a, ok := f.analyses[resumeID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) DeleteAnalysesByJobID(_ context.Context, jobID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return 0, err
	}
	deleted := 0
	for resumeID, a := range f.analyses {
		if a.JobID == jobID {
			delete(f.analyses, resumeID)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeStore) ListAnalysesForExport(_ context.Context, jobID uuid.UUID) ([]db.ExportRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	return append([]db.ExportRow(nil), f.exportRows[jobID]...), nil
}

var _ store = (*fakeStore)(nil)
