package analysis

// JSON Schemas for the two model response shapes. A response that parses as
// JSON but fails its schema is treated the same as unparseable: it becomes a
// degraded result, never an error.

const extractionSchema = `{
  "type": "object",
  "properties": {
    "name":      {"type": ["string", "null"]},
    "email":     {"type": ["string", "null"]},
    "phone":     {"type": ["string", "null"]},
    "education": {"type": ["string", "null"]},
    "experience":{"type": ["string", "null"]},
    "skills":    {"type": ["string", "null"]},
    "languages": {"type": ["string", "null"]},
    "summary":   {"type": ["string", "null"]}
  },
  "additionalProperties": true
}`

const scoreReportSchema = `{
  "type": "object",
  "required": ["overall_score", "recommendation"],
  "properties": {
    "overall_score": {"type": "number", "minimum": 0, "maximum": 100},
    "criteria_scores": {
      "type": "object",
      "additionalProperties": {"type": "number", "minimum": 0, "maximum": 100}
    },
    "strengths":    {"type": "string"},
    "weaknesses":   {"type": "string"},
    "observations": {"type": "string"},
    "recommendation": {"enum": ["hire", "interview", "reject"]},
    "reasoning":    {"type": "string"}
  },
  "additionalProperties": true
}`
