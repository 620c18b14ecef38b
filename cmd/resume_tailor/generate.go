package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/artifacts"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/section"
	"github.com/jonathan/resume-tailor/internal/types"
)

var (
	generateConfig string
	generateJob    string
	generateJobID  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one tailoring pass and produce a PDF",
	Long: `Generate a tailored resume for one job description. The job comes
either from a text file (--job) or from a tracked job in the database
(--job-id). Output lands in a per-run folder under the configured output
directory.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateConfig, "config", "config.json", "Path to the tailoring configuration file")
	generateCmd.Flags().StringVar(&generateJob, "job", "", "Path to a job description text file")
	generateCmd.Flags().StringVar(&generateJobID, "job-id", "", "UUID of a tracked job in the database")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if (generateJob == "") == (generateJobID == "") {
		return fmt.Errorf("exactly one of --job or --job-id is required")
	}

	cfg, err := config.Load(generateConfig)
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or api_key config entry is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sections, err := cfg.LoadSections()
	if err != nil {
		return err
	}
	templateData, err := os.ReadFile(cfg.TemplatePath())
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}
	skills, err := cfg.LoadSkills()
	if err != nil {
		return err
	}

	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without persistence...\n")
		} else {
			defer database.Close()
		}
	}

	job, jobID, err := loadJob(ctx, database)
	if err != nil {
		return err
	}

	llmCfg := llm.DefaultConfig()
	if cfg.Models.Lite != "" {
		llmCfg = llmCfg.WithModel(llm.TierLite, cfg.Models.Lite)
	}
	if cfg.Models.Standard != "" {
		llmCfg = llmCfg.WithModel(llm.TierStandard, cfg.Models.Standard)
	}
	if cfg.Models.Advanced != "" {
		llmCfg = llmCfg.WithModel(llm.TierAdvanced, cfg.Models.Advanced)
	}
	client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	invoker := llm.NewInvoker(client)
	var store artifacts.Store
	if database != nil {
		store = database
	}
	orch := pipeline.New(invoker,
		section.NewWorker(invoker, section.DefaultTemplates()),
		rendering.PDFLaTeX{},
		artifacts.NewTracker(store))

	run, err := orch.Run(ctx, job, pipeline.RunOptions{
		Sections:        sections,
		Template:        string(templateData),
		SkillsInventory: skills,
		CandidateName:   cfg.CandidateName,
		OutputDir:       cfg.OutputPath(),
		JobID:           jobID,
		OnProgress: func(e pipeline.ProgressEvent) {
			fmt.Printf("[%s] %s\n", e.Type, e.Message)
		},
	})
	if err != nil {
		return fmt.Errorf("run %s failed: %w", run.ID, err)
	}

	if run.Artifact != nil {
		fmt.Printf("Done! %s\n", run.Artifact.PDFPath)
	}
	return nil
}

// loadJob reads the job description from the file flag or the database.
func loadJob(ctx context.Context, database *db.DB) (types.JobDescription, uuid.UUID, error) {
	if generateJob != "" {
		data, err := os.ReadFile(generateJob)
		if err != nil {
			return types.JobDescription{}, uuid.Nil, fmt.Errorf("failed to read job file: %w", err)
		}
		return types.JobDescription{RawText: string(data)}, uuid.Nil, nil
	}

	if database == nil {
		return types.JobDescription{}, uuid.Nil, fmt.Errorf("--job-id requires a database_url in the configuration")
	}
	jobID, err := uuid.Parse(generateJobID)
	if err != nil {
		return types.JobDescription{}, uuid.Nil, fmt.Errorf("invalid --job-id: %w", err)
	}
	job, err := database.GetJob(ctx, jobID)
	if err != nil {
		return types.JobDescription{}, uuid.Nil, err
	}
	if job == nil {
		return types.JobDescription{}, uuid.Nil, fmt.Errorf("job not found: %s", jobID)
	}
	return job.Description, jobID, nil
}
