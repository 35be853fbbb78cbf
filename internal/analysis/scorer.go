package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/marcos/resume-screener/internal/db"
	"github.com/marcos/resume-screener/internal/llm"
)

// DegradedOverallScore is the neutral score assigned when the scoring
// response cannot be parsed. Paired with the interview recommendation it
// signals "needs human review" rather than a pipeline error.
const DegradedOverallScore = 50

// ScoreReport is the output of the scoring stage
type ScoreReport struct {
	OverallScore   int            `json:"overall_score"`
	CriteriaScores map[string]int `json:"criteria_scores"`
	Strengths      string         `json:"strengths"`
	Weaknesses     string         `json:"weaknesses"`
	Observations   string         `json:"observations"`
	Recommendation string         `json:"recommendation"`
	Reasoning      string         `json:"reasoning"`

	Degraded bool   `json:"-"`
	RawText  string `json:"-"`
}

// IsPriority reports whether the overall score meets the priority threshold
func (r *ScoreReport) IsPriority() bool {
	return db.IsPriorityScore(r.OverallScore)
}

// AnalysisInput converts the report into a persistence input
func (r *ScoreReport) AnalysisInput(resumeID, jobID uuid.UUID) *db.AnalysisInput {
	return &db.AnalysisInput{
		ResumeID:       resumeID,
		JobID:          jobID,
		OverallScore:   r.OverallScore,
		CriteriaScores: r.CriteriaScores,
		Strengths:      r.Strengths,
		Weaknesses:     r.Weaknesses,
		Observations:   r.Observations,
		Recommendation: r.Recommendation,
	}
}

// scoreReportWire mirrors the model's JSON, tolerating fractional scores
type scoreReportWire struct {
	OverallScore   float64            `json:"overall_score"`
	CriteriaScores map[string]float64 `json:"criteria_scores"`
	Strengths      string             `json:"strengths"`
	Weaknesses     string             `json:"weaknesses"`
	Observations   string             `json:"observations"`
	Recommendation string             `json:"recommendation"`
	Reasoning      string             `json:"reasoning"`
}

// Scorer runs the scoring stage against the LLM
type Scorer struct {
	client llm.Client
	schema *gojsonschema.Schema
}

// NewScorer creates a scorer, compiling the response schema once
func NewScorer(client llm.Client) (*Scorer, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(scoreReportSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile score report schema: %w", err)
	}
	return &Scorer{client: client, schema: schema}, nil
}

// Score evaluates the extracted candidate against the job's requirements and
// weighted criteria. An unparseable response yields the neutral degraded
// report, never an error; only a failed model call is an error.
func (s *Scorer) Score(ctx context.Context, candidate *db.Candidate, job *db.Job, criteria []db.Criterion) (*ScoreReport, error) {
	prompt := buildScoringPrompt(candidate, job, criteria)

	raw, err := s.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("scoring call failed: %w", err)
	}

	return s.parse(raw), nil
}

// parse turns the model output into a ScoreReport, falling back to the
// neutral degraded report when the output is not the expected JSON shape.
func (s *Scorer) parse(raw string) *ScoreReport {
	cleaned := llm.CleanJSONBlock(raw)

	result, err := s.schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil || !result.Valid() {
		return degradedScoreReport(raw)
	}

	var wire scoreReportWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return degradedScoreReport(raw)
	}

	scores := make(map[string]int, len(wire.CriteriaScores))
	for name, score := range wire.CriteriaScores {
		scores[name] = clampScore(score)
	}

	return &ScoreReport{
		OverallScore:   clampScore(wire.OverallScore),
		CriteriaScores: scores,
		Strengths:      wire.Strengths,
		Weaknesses:     wire.Weaknesses,
		Observations:   wire.Observations,
		Recommendation: wire.Recommendation,
		Reasoning:      wire.Reasoning,
		RawText:        raw,
	}
}

// degradedScoreReport is the designed fallback for unparseable scoring
// output: a neutral score and an interview recommendation so the candidate
// is routed to human review instead of being rejected by a parse failure.
func degradedScoreReport(raw string) *ScoreReport {
	return &ScoreReport{
		OverallScore:   DegradedOverallScore,
		CriteriaScores: map[string]int{},
		Strengths:      "Unable to parse analysis",
		Weaknesses:     "Unable to parse analysis",
		Observations:   raw,
		Recommendation: db.RecommendationInterview,
		Reasoning:      "Analysis needs manual review",
		Degraded:       true,
		RawText:        raw,
	}
}

// clampScore rounds and bounds a model-supplied score into [0,100]
func clampScore(score float64) int {
	v := int(math.Round(score))
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// buildScoringPrompt enumerates every criterion by name so the model returns
// a score keyed by each one.
func buildScoringPrompt(candidate *db.Candidate, job *db.Job, criteria []db.Criterion) string {
	var criteriaLines strings.Builder
	var criteriaKeys strings.Builder
	for i, c := range criteria {
		fmt.Fprintf(&criteriaLines, "- %s (weight: %d/5): %s\n", c.Name, c.Weight, c.Description)
		if i > 0 {
			criteriaKeys.WriteString(",\n    ")
		}
		fmt.Fprintf(&criteriaKeys, "%q: <number 0-100>", c.Name)
	}

	return fmt.Sprintf(`You are an expert HR analyst. Analyze this candidate against the job requirements and criteria.

JOB INFORMATION:
Title: %s
Description: %s
Requirements: %s

EVALUATION CRITERIA:
%s
CANDIDATE DATA:
Name: %s
Education: %s
Experience: %s
Skills: %s
Languages: %s
Summary: %s

Provide a detailed analysis in JSON format:
{
  "overall_score": <number 0-100>,
  "criteria_scores": {
    %s
  },
  "strengths": "List of candidate's strengths",
  "weaknesses": "List of areas for improvement",
  "observations": "Detailed observations about the candidate",
  "recommendation": "hire" | "interview" | "reject",
  "reasoning": "Explanation of the recommendation"
}

Be objective and thorough in your analysis. Return ONLY valid JSON, no markdown.`,
		job.Title, job.Description, job.Requirements,
		criteriaLines.String(),
		orNotProvided(candidate.Name),
		orNotProvided(candidate.Education),
		orNotProvided(candidate.Experience),
		orNotProvided(candidate.Skills),
		orNotProvided(candidate.Languages),
		orNotProvided(candidate.Summary),
		criteriaKeys.String())
}

// orNotProvided renders an optional extracted field for the prompt
func orNotProvided(s *string) string {
	if s == nil || *s == "" {
		return "Not provided"
	}
	return *s
}
