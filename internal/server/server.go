// Package server provides the HTTP REST API for the resume screener.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcos/resume-screener/internal/analysis"
	"github.com/marcos/resume-screener/internal/db"
	"github.com/marcos/resume-screener/internal/llm"
	"github.com/marcos/resume-screener/internal/ratelimit"
)

// store is the persistence surface the handlers depend on. *db.DB
// implements it; tests substitute a fake.
type store interface {
	CreateJob(ctx context.Context, input *db.JobCreateInput) (*db.Job, error)
	GetJobByID(ctx context.Context, id uuid.UUID) (*db.Job, error)
	ListJobs(ctx context.Context) ([]db.Job, error)
	UpdateJob(ctx context.Context, id uuid.UUID, input *db.JobCreateInput) (*db.Job, error)
	DeleteJob(ctx context.Context, id uuid.UUID) error

	CreateCriterion(ctx context.Context, input *db.CriterionCreateInput) (*db.Criterion, error)
	ListCriteriaByJobID(ctx context.Context, jobID uuid.UUID) ([]db.Criterion, error)
	DeleteCriterion(ctx context.Context, id uuid.UUID) error

	CreateResume(ctx context.Context, input *db.ResumeCreateInput) (*db.Resume, error)
	GetResumeByID(ctx context.Context, id uuid.UUID) (*db.Resume, error)
	ListResumesByJobID(ctx context.Context, jobID uuid.UUID) ([]db.Resume, error)
	AssociateResumes(ctx context.Context, resumeIDs []uuid.UUID, jobID uuid.UUID) (int, error)
	ResetResumesToPending(ctx context.Context, jobID uuid.UUID) (int, error)

	GetCandidateByResumeID(ctx context.Context, resumeID uuid.UUID) (*db.Candidate, error)
	GetAnalysisByResumeID(ctx context.Context, resumeID uuid.UUID) (*db.Analysis, error)
	DeleteAnalysesByJobID(ctx context.Context, jobID uuid.UUID) (int, error)
	ListAnalysesForExport(ctx context.Context, jobID uuid.UUID) ([]db.ExportRow, error)
}

var _ store = (*db.DB)(nil)

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	db           store
	dbConn       *db.DB
	llmClient    llm.Client
	runner       *analysis.Runner
	orchestrator *analysis.Orchestrator
	rateLimiter  *ratelimit.Limiter
	validate     *validator.Validate
	log          *zap.Logger
}

// Config holds server configuration
type Config struct {
	Port         int
	DatabaseURL  string
	Provider     string
	APIKey       string
	ExtractModel string
	ScoringModel string
	RateLimitRPM int
}

// New creates a new server instance
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	llmConfig := llm.ConfigForProvider(cfg.Provider)
	if cfg.ExtractModel != "" {
		llmConfig = llmConfig.WithModel(llm.TierLite, cfg.ExtractModel)
	}
	if cfg.ScoringModel != "" {
		llmConfig = llmConfig.WithModel(llm.TierStandard, cfg.ScoringModel)
	}
	client, err := llm.NewClient(ctx, llmConfig, cfg.APIKey)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	extractor, err := analysis.NewExtractor(client)
	if err != nil {
		database.Close()
		return nil, err
	}
	scorer, err := analysis.NewScorer(client)
	if err != nil {
		database.Close()
		return nil, err
	}

	runner := analysis.NewRunner(database, extractor, scorer, log)
	pacer := ratelimit.NewPacer(cfg.RateLimitRPM, time.Minute)

	s := &Server{
		db:           database,
		dbConn:       database,
		llmClient:    client,
		runner:       runner,
		orchestrator: analysis.NewOrchestrator(database, runner, pacer, log),
		rateLimiter:  ratelimit.NewLimiter(nil),
		validate:     validator.New(),
		log:          log,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 600 * time.Second, // Batch runs are paced and long-lived
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes wires the REST endpoints
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Job endpoints
	mux.HandleFunc("POST /jobs", s.handleCreateJob)
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("PUT /jobs/{id}", s.handleUpdateJob)
	mux.HandleFunc("DELETE /jobs/{id}", s.handleDeleteJob)

	// Criteria endpoints
	mux.HandleFunc("POST /jobs/{id}/criteria", s.handleCreateCriterion)
	mux.HandleFunc("GET /jobs/{id}/criteria", s.handleListCriteria)
	mux.HandleFunc("DELETE /criteria/{id}", s.handleDeleteCriterion)

	// Resume endpoints
	mux.HandleFunc("POST /resumes", s.handleCreateResume)
	mux.HandleFunc("GET /resumes/{id}", s.handleGetResume)
	mux.HandleFunc("GET /jobs/{id}/resumes", s.handleListResumes)
	mux.HandleFunc("POST /resumes/associate", s.handleAssociateResumes)

	// Analysis endpoints
	mux.HandleFunc("POST /analyses", s.handleAnalyze)
	mux.HandleFunc("POST /analyses/batch", s.handleAnalyzeBatch)
	mux.HandleFunc("GET /resumes/{id}/analysis", s.handleGetAnalysis)

	// Export endpoint
	mux.HandleFunc("GET /jobs/{id}/export.csv", s.handleExportCSV)

	return mux
}

// Start begins listening for requests and blocks until shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.llmClient != nil {
		if err := s.llmClient.Close(); err != nil {
			s.log.Warn("failed to close LLM client", zap.Error(err))
		}
	}
	if s.dbConn != nil {
		s.dbConn.Close()
	}

	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds inbound rate limiting
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// Uses the IP from RemoteAddr; trusted-proxy headers are not consulted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
