package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcos/resume-screener/internal/db"
)

func testCandidate() *db.Candidate {
	name := "Ada Lovelace"
	skills := "Go, distributed systems"
	return &db.Candidate{
		ID:       uuid.New(),
		ResumeID: uuid.New(),
		Name:     &name,
		Skills:   &skills,
	}
}

func testCriteria(jobID uuid.UUID) []db.Criterion {
	return []db.Criterion{
		{JobID: jobID, Name: "Experience", Type: db.CriterionTypeExperience, Weight: 5, Description: "Years of backend work"},
		{JobID: jobID, Name: "Skills", Type: db.CriterionTypeSkills, Weight: 3, Description: "Go proficiency"},
	}
}

func newScorerWith(t *testing.T, responses ...scriptedResponse) *Scorer {
	t.Helper()
	scorer, err := NewScorer(&scriptedClient{responses: responses})
	require.NoError(t, err)
	return scorer
}

func TestScorer_ParsesValidReport(t *testing.T) {
	scorer := newScorerWith(t, scriptedResponse{text: validScoringJSON(85)})
	job := &db.Job{ID: uuid.New(), Title: "Backend Engineer"}

	report, err := scorer.Score(context.Background(), testCandidate(), job, testCriteria(job.ID))
	require.NoError(t, err)

	assert.False(t, report.Degraded)
	assert.Equal(t, 85, report.OverallScore)
	assert.True(t, report.IsPriority())
	assert.Equal(t, db.RecommendationInterview, report.Recommendation)
	assert.Equal(t, map[string]int{"Experience": 85, "Skills": 85}, report.CriteriaScores)
}

func TestScorer_RoundsFractionalScores(t *testing.T) {
	fractional := `{
		"overall_score": 87.6,
		"criteria_scores": {"Experience": 79.4},
		"strengths": "s", "weaknesses": "w", "observations": "o",
		"recommendation": "hire", "reasoning": "r"
	}`
	scorer := newScorerWith(t, scriptedResponse{text: fractional})
	job := &db.Job{ID: uuid.New(), Title: "Engineer"}

	report, err := scorer.Score(context.Background(), testCandidate(), job, nil)
	require.NoError(t, err)

	assert.Equal(t, 88, report.OverallScore)
	assert.Equal(t, 79, report.CriteriaScores["Experience"])
}

func TestScorer_DegradesOnMissingRequiredFields(t *testing.T) {
	missing := `{"strengths": "looks fine"}`
	scorer := newScorerWith(t, scriptedResponse{text: missing})
	job := &db.Job{ID: uuid.New(), Title: "Engineer"}

	report, err := scorer.Score(context.Background(), testCandidate(), job, nil)
	require.NoError(t, err)

	assert.True(t, report.Degraded)
	assert.Equal(t, DegradedOverallScore, report.OverallScore)
	assert.Equal(t, db.RecommendationInterview, report.Recommendation)
	assert.Equal(t, missing, report.Observations)
	assert.Equal(t, "Analysis needs manual review", report.Reasoning)
	assert.Empty(t, report.CriteriaScores)
	assert.False(t, report.IsPriority())
}

func TestScorer_DegradesOnOutOfRangeScore(t *testing.T) {
	outOfRange := `{"overall_score": 150, "recommendation": "hire"}`
	scorer := newScorerWith(t, scriptedResponse{text: outOfRange})
	job := &db.Job{ID: uuid.New(), Title: "Engineer"}

	report, err := scorer.Score(context.Background(), testCandidate(), job, nil)
	require.NoError(t, err)
	assert.True(t, report.Degraded)
}

func TestScorer_DegradesOnUnknownRecommendation(t *testing.T) {
	unknown := `{"overall_score": 70, "recommendation": "maybe"}`
	scorer := newScorerWith(t, scriptedResponse{text: unknown})
	job := &db.Job{ID: uuid.New(), Title: "Engineer"}

	report, err := scorer.Score(context.Background(), testCandidate(), job, nil)
	require.NoError(t, err)
	assert.True(t, report.Degraded)
}

func TestScorer_PromptListsEveryCriterion(t *testing.T) {
	job := &db.Job{ID: uuid.New(), Title: "Backend Engineer", Description: "Go services", Requirements: "5y Go"}
	criteria := testCriteria(job.ID)

	prompt := buildScoringPrompt(testCandidate(), job, criteria)

	assert.Contains(t, prompt, "Backend Engineer")
	assert.Contains(t, prompt, "- Experience (weight: 5/5): Years of backend work")
	assert.Contains(t, prompt, "- Skills (weight: 3/5): Go proficiency")
	assert.Contains(t, prompt, `"Experience": <number 0-100>`)
	assert.Contains(t, prompt, `"Skills": <number 0-100>`)
	assert.Contains(t, prompt, "Ada Lovelace")
}

func TestScorer_PromptRendersAbsentFields(t *testing.T) {
	job := &db.Job{ID: uuid.New(), Title: "Engineer"}
	candidate := &db.Candidate{ID: uuid.New(), ResumeID: uuid.New()}

	prompt := buildScoringPrompt(candidate, job, nil)
	assert.True(t, strings.Contains(prompt, "Not provided"))
}

func TestScoreReport_AnalysisInput(t *testing.T) {
	report := &ScoreReport{
		OverallScore:   91,
		CriteriaScores: map[string]int{"Skills": 90},
		Strengths:      "s",
		Recommendation: db.RecommendationHire,
	}
	resumeID, jobID := uuid.New(), uuid.New()

	input := report.AnalysisInput(resumeID, jobID)
	assert.Equal(t, resumeID, input.ResumeID)
	assert.Equal(t, jobID, input.JobID)
	assert.Equal(t, 91, input.OverallScore)
	assert.Equal(t, map[string]int{"Skills": 90}, input.CriteriaScores)
}
