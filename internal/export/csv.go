// Package export renders completed analyses as downloadable reports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/marcos/resume-screener/internal/db"
)

var csvHeader = []string{
	"Position",
	"Candidate Name",
	"Email",
	"Phone",
	"Overall Score",
	"Recommendation",
	"Priority",
	"Education",
	"Experience",
	"Skills",
	"Languages",
	"Strengths",
	"Weaknesses",
	"Observations",
}

// WriteCSV renders the rows as a CSV report. Rows are expected in ranking
// order; Position is their 1-based rank.
func WriteCSV(w io.Writer, rows []db.ExportRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i, row := range rows {
		record := []string{
			fmt.Sprintf("%d", i+1),
			candidateName(row),
			orEmpty(row.CandidateEmail),
			orEmpty(row.CandidatePhone),
			fmt.Sprintf("%d", row.OverallScore),
			row.Recommendation,
			priorityLabel(row.IsPriority),
			orEmpty(row.CandidateEducation),
			orEmpty(row.CandidateExperience),
			orEmpty(row.CandidateSkills),
			orEmpty(row.CandidateLanguages),
			row.Strengths,
			row.Weaknesses,
			row.Observations,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// FileName builds the attachment name for a job's export
func FileName(jobTitle string) string {
	if jobTitle == "" {
		return "analysis-export.csv"
	}
	return fmt.Sprintf("analysis-%s.csv", sanitize(jobTitle))
}

// candidateName prefers the extracted name, then the uploaded file name
func candidateName(row db.ExportRow) string {
	if row.CandidateName != nil && *row.CandidateName != "" {
		return *row.CandidateName
	}
	if row.ResumeFileName != "" {
		return row.ResumeFileName
	}
	return "N/A"
}

func priorityLabel(priority bool) string {
	if priority {
		return "High"
	}
	return "Normal"
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// sanitize keeps the attachment name shell and filesystem safe
func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == ' ' || r == '-' || r == '_':
			out = append(out, '-')
		}
	}
	if len(out) == 0 {
		return "export"
	}
	return string(out)
}
