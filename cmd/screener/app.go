package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/marcos/resume-screener/internal/analysis"
	"github.com/marcos/resume-screener/internal/config"
	"github.com/marcos/resume-screener/internal/db"
	"github.com/marcos/resume-screener/internal/llm"
	"github.com/marcos/resume-screener/internal/logger"
	"github.com/marcos/resume-screener/internal/ratelimit"
)

var (
	configPath string
	verbose    bool
	logJSON    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log in JSON format")
}

// loadConfig resolves configuration: file values win over environment
// values, which win over built-in defaults.
func loadConfig() (config.Config, error) {
	cfg := config.Config{}
	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = *fileCfg
	}
	cfg = cfg.MergeWithDefaults(config.FromEnv())
	if verbose {
		cfg.Verbose = true
	}
	if logJSON {
		cfg.LogJSON = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logger.New(cfg.LogJSON, cfg.Verbose)
}

// app bundles the wiring the pipeline CLI commands share
type app struct {
	db           *db.DB
	llmClient    llm.Client
	runner       *analysis.Runner
	orchestrator *analysis.Orchestrator
	log          *zap.Logger
}

// newApp connects to the database and AI provider and builds the pipeline
func newApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("an API key is required (GEMINI_API_KEY or GROQ_API_KEY)")
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

	return &app{
		db:           database,
		llmClient:    client,
		runner:       runner,
		orchestrator: analysis.NewOrchestrator(database, runner, pacer, log),
		log:          log,
	}, nil
}

func (a *app) close() {
	if a.llmClient != nil {
		_ = a.llmClient.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
