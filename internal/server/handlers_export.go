package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcos/resume-screener/internal/export"
)

// handleExportCSV streams the job's completed analyses as a CSV report,
// ranked by overall score.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := s.db.GetJobByID(r.Context(), jobID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	rows, err := s.db.ListAnalysesForExport(r.Context(), jobID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if len(rows) == 0 {
		s.errorResponse(w, http.StatusNotFound, "No data to export")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.FileName(job.Title)))
	w.WriteHeader(http.StatusOK)

	if err := export.WriteCSV(w, rows); err != nil {
		// Headers are already sent; the body is truncated
		s.log.Error("csv export failed",
			zap.String("job_id", jobID.String()),
			zap.Error(err))
	}
}
