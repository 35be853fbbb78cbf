package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcos/resume-screener/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for jobs, criteria, resumes, analyses, and CSV export.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("an API key is required (GEMINI_API_KEY or GROQ_API_KEY)")
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	srv, err := server.New(context.Background(), server.Config{
		Port:         cfg.Port,
		DatabaseURL:  cfg.DatabaseURL,
		Provider:     cfg.Provider,
		APIKey:       cfg.APIKey,
		ExtractModel: cfg.ExtractModel,
		ScoringModel: cfg.ScoringModel,
		RateLimitRPM: cfg.RateLimitRPM,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
