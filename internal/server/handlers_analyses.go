package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/marcos/resume-screener/internal/analysis"
)

// ---------------------------------------------------------------------
// Analysis Handlers
// ---------------------------------------------------------------------

type AnalyzeRequest struct {
	ResumeID uuid.UUID `json:"resume_id" validate:"required"`
}

// handleAnalyze runs the full pipeline for one resume synchronously
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ResumeID == uuid.Nil {
		s.errorResponse(w, http.StatusBadRequest, "resume_id is required")
		return
	}

	result, err := s.runner.Run(r.Context(), req.ResumeID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

type AnalyzeBatchRequest struct {
	JobID     *uuid.UUID  `json:"job_id"`
	ResumeIDs []uuid.UUID `json:"resume_ids"`
}

// handleAnalyzeBatch analyzes the pending resumes of a job, or an explicit
// set, one at a time under the outbound rate budget. The response reports
// per-resume outcomes; individual failures do not fail the batch.
func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.JobID == nil && len(req.ResumeIDs) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "job_id or resume_ids is required")
		return
	}

	report, err := s.orchestrator.RunBatch(r.Context(), analysis.BatchRequest{
		JobID:     req.JobID,
		ResumeIDs: req.ResumeIDs,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report == nil {
		s.jsonResponse(w, http.StatusOK, map[string]string{
			"message": "no pending resumes to analyze",
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}

// handleGetAnalysis returns the stored analysis and candidate for a resume
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	resumeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid resume ID")
		return
	}

	resume, err := s.db.GetResumeByID(r.Context(), resumeID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if resume == nil {
		s.errorResponse(w, http.StatusNotFound, "Resume not found")
		return
	}

	candidate, err := s.db.GetCandidateByResumeID(r.Context(), resumeID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	record, err := s.db.GetAnalysisByResumeID(r.Context(), resumeID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if record == nil {
		s.errorResponse(w, http.StatusNotFound, "Analysis not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":    resume.Status,
		"candidate": candidate,
		"analysis":  record,
	})
}
