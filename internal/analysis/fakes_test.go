package analysis

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marcos/resume-screener/internal/db"
	"github.com/marcos/resume-screener/internal/llm"
)

// scriptedClient returns canned responses in call order
type scriptedClient struct {
	mu        sync.Mutex
	responses []scriptedResponse
	calls     int
}

type scriptedResponse struct {
	text string
	err  error
}

func (c *scriptedClient) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls >= len(c.responses) {
		return "", fmt.Errorf("unexpected model call %d", c.calls)
	}
	resp := c.responses[c.calls]
	c.calls++
	return resp.text, resp.err
}

func (c *scriptedClient) GetModel(llm.ModelTier) string { return "scripted-model" }

func (c *scriptedClient) Close() error { return nil }

// fakeStore is an in-memory Store that records every status transition
type fakeStore struct {
	mu         sync.Mutex
	jobs       map[uuid.UUID]*db.Job
	resumes    map[uuid.UUID]*db.Resume
	criteria   map[uuid.UUID][]db.Criterion
	candidates map[uuid.UUID]*db.Candidate
	analyses   map[uuid.UUID]*db.Analysis
	statusLog  map[uuid.UUID][]string

	failCandidateUpsert bool
	failAnalysisUpsert  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:       make(map[uuid.UUID]*db.Job),
		resumes:    make(map[uuid.UUID]*db.Resume),
		criteria:   make(map[uuid.UUID][]db.Criterion),
		candidates: make(map[uuid.UUID]*db.Candidate),
		analyses:   make(map[uuid.UUID]*db.Analysis),
		statusLog:  make(map[uuid.UUID][]string),
	}
}

func (f *fakeStore) addJob(title string) *db.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := &db.Job{
		ID:          uuid.New(),
		Title:       title,
		Description: "description of " + title,
		Status:      db.JobStatusActive,
	}
	f.jobs[job.ID] = job
	return job
}

func (f *fakeStore) addResume(jobID *uuid.UUID, status string) *db.Resume {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &db.Resume{
		ID:        uuid.New(),
		JobID:     jobID,
		FileURL:   "https://files.example.com/resume.pdf",
		FileName:  "resume.pdf",
		FileType:  "application/pdf",
		Status:    status,
		CreatedAt: time.Now().Add(time.Duration(len(f.resumes)) * time.Millisecond),
	}
	f.resumes[r.ID] = r
	return r
}

func (f *fakeStore) addCriterion(jobID uuid.UUID, name, ctype string, weight int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.criteria[jobID] = append(f.criteria[jobID], db.Criterion{
		ID:          uuid.New(),
		JobID:       jobID,
		Name:        name,
		Type:        ctype,
		Weight:      weight,
		Description: name + " requirement",
	})
}

func (f *fakeStore) status(id uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.resumes[id]; ok {
		return r.Status
	}
	return ""
}

func (f *fakeStore) transitions(id uuid.UUID) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.statusLog[id]...)
}

func (f *fakeStore) GetResumeByID(_ context.Context, id uuid.UUID) (*db.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resumes[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) GetJobByID(_ context.Context, id uuid.UUID) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (f *fakeStore) ListCriteriaByJobID(_ context.Context, jobID uuid.UUID) ([]db.Criterion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]db.Criterion(nil), f.criteria[jobID]...), nil
}

func (f *fakeStore) ClaimResume(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resumes[id]
	if !ok {
		return false, nil
	}
	if r.Status == db.ResumeStatusProcessing {
		return false, nil
	}
	r.Status = db.ResumeStatusProcessing
	f.statusLog[id] = append(f.statusLog[id], db.ResumeStatusProcessing)
	return true, nil
}

func (f *fakeStore) UpdateResumeStatus(_ context.Context, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resumes[id]
	if !ok {
		return fmt.Errorf("resume not in store: %s", id)
	}
	r.Status = status
	f.statusLog[id] = append(f.statusLog[id], status)
	return nil
}

func (f *fakeStore) UpsertCandidate(_ context.Context, input *db.CandidateInput) (*db.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCandidateUpsert {
		return nil, fmt.Errorf("candidate write refused")
	}
	c := &db.Candidate{
		ID:         uuid.New(),
		ResumeID:   input.ResumeID,
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Education:  input.Education,
		Experience: input.Experience,
		Skills:     input.Skills,
		Languages:  input.Languages,
		Summary:    input.Summary,
		Raw:        input.Raw,
	}
	f.candidates[input.ResumeID] = c
	return c, nil
}

func (f *fakeStore) UpsertAnalysis(_ context.Context, input *db.AnalysisInput) (*db.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAnalysisUpsert {
		return nil, fmt.Errorf("analysis write refused")
	}
	a := &db.Analysis{
		ID:             uuid.New(),
		ResumeID:       input.ResumeID,
		JobID:          input.JobID,
		OverallScore:   input.OverallScore,
		CriteriaScores: input.CriteriaScores,
		Strengths:      input.Strengths,
		Weaknesses:     input.Weaknesses,
		Observations:   input.Observations,
		Recommendation: input.Recommendation,
		IsPriority:     db.IsPriorityScore(input.OverallScore),
	}
	f.analyses[input.ResumeID] = a
	return a, nil
}

func (f *fakeStore) ListPendingResumeIDs(_ context.Context, jobID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pending []*db.Resume
	for _, r := range f.resumes {
		if r.JobID != nil && *r.JobID == jobID && r.Status == db.ResumeStatusPending {
			pending = append(pending, r)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	ids := make([]uuid.UUID, len(pending))
	for i, r := range pending {
		ids[i] = r.ID
	}
	return ids, nil
}

func (f *fakeStore) FilterPendingResumeIDs(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pending []*db.Resume
	for _, id := range ids {
		if r, ok := f.resumes[id]; ok && r.Status == db.ResumeStatusPending {
			pending = append(pending, r)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	out := make([]uuid.UUID, len(pending))
	for i, r := range pending {
		out[i] = r.ID
	}
	return out, nil
}

// Canned model responses used across the pipeline tests

const validExtractionJSON = `{
  "name": "Ada Lovelace",
  "email": "ada@example.com",
  "phone": "+44 1234 567890",
  "education": "Mathematics, University of London",
  "experience": "10 years of analytical engine programming",
  "skills": "Algorithms, numerical analysis",
  "languages": "English, French",
  "summary": "Pioneering programmer with deep mathematical background"
}`

func validScoringJSON(score int) string {
	return fmt.Sprintf(`{
  "overall_score": %d,
  "criteria_scores": {"Experience": %d, "Skills": %d},
  "strengths": "Strong analytical background",
  "weaknesses": "Limited team leadership exposure",
  "observations": "Exceptional problem solver",
  "recommendation": "interview",
  "reasoning": "Scores well on the core criteria"
}`, score, score, score)
}
