package db

import (
	"time"

	"github.com/google/uuid"
)

// Job status constants
const (
	JobStatusActive   = "active"
	JobStatusInactive = "inactive"
)

// Resume status constants. A resume moves pending -> processing ->
// completed|error; bulk re-association resets it to pending.
const (
	ResumeStatusPending    = "pending"
	ResumeStatusProcessing = "processing"
	ResumeStatusCompleted  = "completed"
	ResumeStatusError      = "error"
)

// Criterion type constants
const (
	CriterionTypeExperience = "experience"
	CriterionTypeEducation  = "education"
	CriterionTypeSkills     = "skills"
	CriterionTypeLanguages  = "languages"
	CriterionTypeSoftSkills = "soft_skills"
	CriterionTypeCustom     = "custom"
)

// Recommendation constants
const (
	RecommendationHire      = "hire"
	RecommendationInterview = "interview"
	RecommendationReject    = "reject"
)

// PriorityThreshold is the overall score at or above which an analysis
// is flagged as priority.
const PriorityThreshold = 80

// Job represents an open position candidates are screened against
type Job struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Criterion is a weighted evaluation dimension defined per job.
// Weight is advisory input to the scoring prompt, not arithmetic.
type Criterion struct {
	ID          uuid.UUID `json:"id"`
	JobID       uuid.UUID `json:"job_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Weight      int       `json:"weight"` // 1-5
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Resume represents an uploaded applicant document reference
type Resume struct {
	ID        uuid.UUID  `json:"id"`
	JobID     *uuid.UUID `json:"job_id,omitempty"`
	FileURL   string     `json:"file_url"`
	FileName  string     `json:"file_name"`
	FileType  string     `json:"file_type"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Candidate holds the structured facts extracted from a resume.
// Every extracted field may be absent.
type Candidate struct {
	ID          uuid.UUID `json:"id"`
	ResumeID    uuid.UUID `json:"resume_id"`
	Name        *string   `json:"name,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Education   *string   `json:"education,omitempty"`
	Experience  *string   `json:"experience,omitempty"`
	Skills      *string   `json:"skills,omitempty"`
	Languages   *string   `json:"languages,omitempty"`
	Summary     *string   `json:"summary,omitempty"`
	Raw         any       `json:"extracted_data,omitempty"`
	IsValidated bool      `json:"is_validated"`
	CreatedAt   time.Time `json:"created_at"`
}

// Analysis is the scored evaluation of a candidate against a job
type Analysis struct {
	ID             uuid.UUID      `json:"id"`
	ResumeID       uuid.UUID      `json:"resume_id"`
	JobID          uuid.UUID      `json:"job_id"`
	OverallScore   int            `json:"overall_score"`
	CriteriaScores map[string]int `json:"criteria_scores"`
	Strengths      string         `json:"strengths"`
	Weaknesses     string         `json:"weaknesses"`
	Observations   string         `json:"observations"`
	Recommendation string         `json:"recommendation"`
	IsPriority     bool           `json:"is_priority"`
	CreatedAt      time.Time      `json:"created_at"`
}

// JobCreateInput is used when creating a job
type JobCreateInput struct {
	Title        string
	Description  string
	Requirements string
	Status       string
}

// CriterionCreateInput is used when adding a criterion to a job
type CriterionCreateInput struct {
	JobID       uuid.UUID
	Name        string
	Type        string
	Weight      int
	Description string
}

// ResumeCreateInput is used when registering an uploaded resume
type ResumeCreateInput struct {
	JobID    *uuid.UUID
	FileURL  string
	FileName string
	FileType string
}

// CandidateInput is used when persisting an extraction result
type CandidateInput struct {
	ResumeID   uuid.UUID
	Name       *string
	Email      *string
	Phone      *string
	Education  *string
	Experience *string
	Skills     *string
	Languages  *string
	Summary    *string
	Raw        any
}

// AnalysisInput is used when persisting a scoring result
type AnalysisInput struct {
	ResumeID       uuid.UUID
	JobID          uuid.UUID
	OverallScore   int
	CriteriaScores map[string]int
	Strengths      string
	Weaknesses     string
	Observations   string
	Recommendation string
}

// ExportRow is an analysis joined with its candidate and resume for CSV export
type ExportRow struct {
	Analysis
	CandidateName       *string
	CandidateEmail      *string
	CandidatePhone      *string
	CandidateEducation  *string
	CandidateExperience *string
	CandidateSkills     *string
	CandidateLanguages  *string
	ResumeFileName      string
}

// ValidResumeStatus reports whether s is one of the four resume states
func ValidResumeStatus(s string) bool {
	switch s {
	case ResumeStatusPending, ResumeStatusProcessing, ResumeStatusCompleted, ResumeStatusError:
		return true
	}
	return false
}

// ValidCriterionType reports whether t is a known criterion type
func ValidCriterionType(t string) bool {
	switch t {
	case CriterionTypeExperience, CriterionTypeEducation, CriterionTypeSkills,
		CriterionTypeLanguages, CriterionTypeSoftSkills, CriterionTypeCustom:
		return true
	}
	return false
}

// ValidRecommendation reports whether r is a known recommendation
func ValidRecommendation(r string) bool {
	switch r {
	case RecommendationHire, RecommendationInterview, RecommendationReject:
		return true
	}
	return false
}

// IsPriorityScore reports whether a score meets the priority threshold
func IsPriorityScore(score int) bool {
	return score >= PriorityThreshold
}
