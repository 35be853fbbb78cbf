package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/marcos/resume-screener/internal/db"
	"github.com/marcos/resume-screener/internal/llm"
)

// Extraction is the candidate-shaped record produced by the extraction
// stage. A Degraded extraction carries the unparseable model output in
// Summary so the run still produces a persisted record.
type Extraction struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Education  *string `json:"education"`
	Experience *string `json:"experience"`
	Skills     *string `json:"skills"`
	Languages  *string `json:"languages"`
	Summary    *string `json:"summary"`

	Degraded bool   `json:"-"`
	RawText  string `json:"-"`
}

// CandidateInput converts the extraction into a persistence input. The raw
// payload keeps the full extracted object alongside the typed columns.
func (x *Extraction) CandidateInput(resumeID uuid.UUID) *db.CandidateInput {
	return &db.CandidateInput{
		ResumeID:   resumeID,
		Name:       x.Name,
		Email:      x.Email,
		Phone:      x.Phone,
		Education:  x.Education,
		Experience: x.Experience,
		Skills:     x.Skills,
		Languages:  x.Languages,
		Summary:    x.Summary,
		Raw:        x,
	}
}

// Extractor runs the extraction stage against the LLM
type Extractor struct {
	client llm.Client
	schema *gojsonschema.Schema
}

// NewExtractor creates an extractor, compiling the response schema once
func NewExtractor(client llm.Client) (*Extractor, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(extractionSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile extraction schema: %w", err)
	}
	return &Extractor{client: client, schema: schema}, nil
}

// Extract sends the resume reference and job context to the model and parses
// the fixed 8-field record. An unparseable response yields a degraded
// extraction, never an error; only a failed model call is an error.
func (e *Extractor) Extract(ctx context.Context, resume *db.Resume, job *db.Job) (*Extraction, error) {
	prompt := buildExtractionPrompt(resume, job)

	raw, err := e.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	return e.parse(raw), nil
}

// parse turns the model output into an Extraction, falling back to the
// degraded record when the output is not the expected JSON shape.
func (e *Extractor) parse(raw string) *Extraction {
	cleaned := llm.CleanJSONBlock(raw)

	result, err := e.schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil || !result.Valid() {
		return degradedExtraction(raw)
	}

	var x Extraction
	if err := json.Unmarshal([]byte(cleaned), &x); err != nil {
		return degradedExtraction(raw)
	}
	x.RawText = raw
	return &x
}

// degradedExtraction is the designed fallback for unparseable model output:
// all typed fields absent, summary set to the raw response text.
func degradedExtraction(raw string) *Extraction {
	summary := raw
	return &Extraction{
		Summary:  &summary,
		Degraded: true,
		RawText:  raw,
	}
}

// buildExtractionPrompt constructs the single instruction for the fixed
// 8-field extraction record.
func buildExtractionPrompt(resume *db.Resume, job *db.Job) string {
	return fmt.Sprintf(`You are an expert HR assistant analyzing a resume. Extract the following information from the resume and return it as JSON:

{
  "name": "Full name of the candidate",
  "email": "Email address",
  "phone": "Phone number",
  "education": "Educational background summary",
  "experience": "Work experience summary",
  "skills": "Technical and professional skills",
  "languages": "Languages spoken",
  "summary": "Brief professional summary"
}

Resume file: %s
Job title: %s
Job description: %s

Extract the data accurately. If information is not available, use null.
Return ONLY valid JSON, no markdown and no explanation.`,
		resume.FileURL, job.Title, job.Description)
}
