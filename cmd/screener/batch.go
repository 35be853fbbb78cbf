package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/marcos/resume-screener/internal/analysis"
)

var batchResumeIDs []string

var batchCmd = &cobra.Command{
	Use:   "batch <job-id>",
	Short: "Analyze a job's pending resumes",
	Long: `Analyze every pending resume of a job sequentially, pacing AI calls
to stay inside the provider's rate limit. Failed resumes are reported and
skipped; the batch continues.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringSliceVar(&batchResumeIDs, "resume", nil, "Restrict the batch to these resume ids (repeatable)")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	jobID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", args[0], err)
	}

	var resumeIDs []uuid.UUID
	for _, raw := range batchResumeIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid resume id %q: %w", raw, err)
		}
		resumeIDs = append(resumeIDs, id)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.orchestrator.RunBatch(ctx, analysis.BatchRequest{
		JobID:     &jobID,
		ResumeIDs: resumeIDs,
	})
	if err != nil {
		return err
	}
	if report == nil {
		fmt.Println("no pending resumes to analyze")
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
