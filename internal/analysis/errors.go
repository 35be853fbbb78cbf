package analysis

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrResumeNotFound indicates the resume does not exist
type ErrResumeNotFound struct {
	ResumeID uuid.UUID
}

func (e *ErrResumeNotFound) Error() string {
	return fmt.Sprintf("resume not found: %s", e.ResumeID)
}

// ErrJobNotFound indicates the resume's job does not exist or the resume is
// not associated with any job
type ErrJobNotFound struct {
	ResumeID uuid.UUID
}

func (e *ErrJobNotFound) Error() string {
	return fmt.Sprintf("job not found for resume: %s", e.ResumeID)
}

// ErrAlreadyProcessing indicates a run is already in flight for the resume
type ErrAlreadyProcessing struct {
	ResumeID uuid.UUID
}

func (e *ErrAlreadyProcessing) Error() string {
	return fmt.Sprintf("analysis already in progress for resume: %s", e.ResumeID)
}
