package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcos/resume-screener/internal/db"
)

// ---------------------------------------------------------------------
// Resume Handlers
// ---------------------------------------------------------------------

type CreateResumeRequest struct {
	JobID    *uuid.UUID `json:"job_id"`
	FileURL  string     `json:"file_url" validate:"required,url"`
	FileName string     `json:"file_name" validate:"required,max=255"`
	FileType string     `json:"file_type" validate:"omitempty,max=50"`
}

func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	var req CreateResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if req.JobID != nil {
		job, err := s.db.GetJobByID(r.Context(), *req.JobID)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
			return
		}
		if job == nil {
			s.errorResponse(w, http.StatusNotFound, "Job not found")
			return
		}
	}

	resume, err := s.db.CreateResume(r.Context(), &db.ResumeCreateInput{
		JobID:    req.JobID,
		FileURL:  req.FileURL,
		FileName: req.FileName,
		FileType: req.FileType,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, resume)
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
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

	s.jsonResponse(w, http.StatusOK, resume)
}

func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	resumes, err := s.db.ListResumesByJobID(r.Context(), jobID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if resumes == nil {
		resumes = []db.Resume{}
	}
	s.jsonResponse(w, http.StatusOK, resumes)
}

type AssociateResumesRequest struct {
	JobID     uuid.UUID   `json:"job_id" validate:"required"`
	ResumeIDs []uuid.UUID `json:"resume_ids" validate:"required,min=1,dive,required"`
}

// handleAssociateResumes reassigns a set of resumes to a job. The resumes
// return to pending so the next batch re-analyzes them against the new job.
func (s *Server) handleAssociateResumes(w http.ResponseWriter, r *http.Request) {
	var req AssociateResumesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	job, err := s.db.GetJobByID(r.Context(), req.JobID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	updated, err := s.db.AssociateResumes(r.Context(), req.ResumeIDs, req.JobID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.log.Info("resumes associated",
		zap.String("job_id", req.JobID.String()),
		zap.Int("requested", len(req.ResumeIDs)),
		zap.Int("updated", updated))

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"job_id":  req.JobID,
		"updated": updated,
	})
}
