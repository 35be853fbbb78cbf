package server

import (
	"fmt"
	"net/http"

	"github.com/marcos/resume-screener/internal/analysis"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *analysis.ErrResumeNotFound, *analysis.ErrJobNotFound:
		return http.StatusNotFound
	case *analysis.ErrAlreadyProcessing:
		return http.StatusConflict
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
