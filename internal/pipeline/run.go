// Package pipeline orchestrates a tailoring run through its stages:
// global filtering, naming, parallel section generation, assembly,
// compilation, and artifact finalization.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/artifacts"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Invoker is the prompt-invocation capability the orchestrator's own
// stages use (global filter, naming).
type Invoker interface {
	Invoke(ctx context.Context, template string, vars map[string]string, tier llm.ModelTier) (string, error)
}

// SectionWorker generates the content for one experience section.
type SectionWorker interface {
	Process(ctx context.Context, sec types.ExperienceSection, jobText, company, role string) *types.SectionResult
}

// Prompts holds the two orchestrator-level prompt templates.
type Prompts struct {
	GlobalFilter string
	Naming       string
}

// DefaultPrompts loads the orchestrator prompts from the embedded file.
func DefaultPrompts() Prompts {
	return Prompts{
		GlobalFilter: prompts.MustGet("converter.json", "global-filter"),
		Naming:       prompts.MustGet("converter.json", "skills-and-filename"),
	}
}

// Orchestrator drives generation runs. It owns no per-run state, so one
// orchestrator serves concurrent runs.
type Orchestrator struct {
	invoker  Invoker
	worker   SectionWorker
	compiler rendering.Compiler
	tracker  *artifacts.Tracker
	prompts  Prompts
}

// New creates an orchestrator with the default embedded prompts.
func New(invoker Invoker, worker SectionWorker, compiler rendering.Compiler, tracker *artifacts.Tracker) *Orchestrator {
	return &Orchestrator{
		invoker:  invoker,
		worker:   worker,
		compiler: compiler,
		tracker:  tracker,
		prompts:  DefaultPrompts(),
	}
}

// RunOptions holds the per-run inputs.
type RunOptions struct {
	Sections        []types.ExperienceSection
	Template        string // raw LaTeX template content
	SkillsInventory string
	CandidateName   string
	OutputDir       string
	JobID           uuid.UUID
	OnProgress      ProgressCallback
}

// Run executes one generation run to completion. The returned run is
// always non-nil so callers can inspect its state and progress log; the
// error is non-nil exactly when the run ended in the failed state.
func (o *Orchestrator) Run(ctx context.Context, job types.JobDescription, opts RunOptions) (*types.GenerationRun, error) {
	run := types.NewGenerationRun(job, opts.CandidateName)

	emit := func(eventType, message string, data any) {
		run.AddProgress(message)
		if opts.OnProgress != nil {
			opts.OnProgress(ProgressEvent{
				Type:    eventType,
				Message: message,
				RunID:   run.ID.String(),
				Data:    data,
			})
		}
	}
	fail := func(reason string) (*types.GenerationRun, error) {
		_ = advance(run, types.StateFailed)
		run.FailReason = reason
		emit(EventError, reason, nil)
		return run, errors.New(reason)
	}

	// Stage 1: condense the job description.
	if err := advance(run, types.StateFilteringGlobal); err != nil {
		return fail(err.Error())
	}
	log.Printf("run %s: filtering job description", run.ID)
	emit(EventProgress, "Filtering job description...", nil)

	jobText, err := o.filterGlobal(ctx, run)
	if err != nil {
		// Degrade to the raw text rather than aborting; the per-section
		// prompts still work, just with more noise.
		log.Printf("run %s: global filter failed, using raw job description: %v", run.ID, err)
		emit(EventProgress, "Job description filtering failed; continuing with raw text", nil)
		jobText = run.Job.Text()
	}

	// Stage 2: skills block and output naming.
	if err := advance(run, types.StateNaming); err != nil {
		return fail(err.Error())
	}
	emit(EventProgress, "Selecting skills and naming the resume...", nil)

	if err := o.runNaming(ctx, run, jobText, opts.SkillsInventory); err != nil {
		return fail(err.Error())
	}
	emit(EventProgress, fmt.Sprintf("Targeting %s at %s (%s)", run.Role, run.Company, run.ResumeName), nil)

	// Stage 3: per-section generation, one worker per section.
	if err := advance(run, types.StateGeneratingSections); err != nil {
		return fail(err.Error())
	}
	if len(opts.Sections) == 0 {
		return fail("no experience sections configured")
	}
	emit(EventProgress, fmt.Sprintf("Generating %d sections...", len(opts.Sections)), nil)

	g, gCtx := errgroup.WithContext(ctx)
	for _, sec := range opts.Sections {
		g.Go(func() error {
			result := o.worker.Process(gCtx, sec, jobText, run.Company, run.Role)
			run.SetResult(sec.ID, result)
			switch result.Status {
			case types.SectionOK:
				emit(EventProgress, fmt.Sprintf("Section %q: %d bullets", sec.ID, len(result.Bullets)), nil)
			case types.SectionSkipped:
				emit(EventProgress, fmt.Sprintf("Section %q: no relevant experience, skipped", sec.ID), nil)
			case types.SectionFailed:
				emit(EventProgress, fmt.Sprintf("Section %q failed: %s", sec.ID, result.FailReason), nil)
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	usable := 0
	for _, res := range run.Results() {
		if res.Usable() {
			usable++
		}
	}
	if usable == 0 {
		return fail("no section produced any content")
	}

	// Stage 4: substitute fragments into the template.
	if err := advance(run, types.StateAssembling); err != nil {
		return fail(err.Error())
	}
	emit(EventProgress, "Assembling document...", nil)

	document, err := rendering.Assemble(opts.Template, run.SkillsBlock, opts.Sections, run.Results())
	if err != nil {
		return fail(fmt.Sprintf("document assembly failed: %v", err))
	}
	run.Document = document

	// Stage 5: write the run folder and compile.
	if err := advance(run, types.StateCompiling); err != nil {
		return fail(err.Error())
	}
	emit(EventProgress, "Compiling PDF...", nil)

	outDir := filepath.Join(opts.OutputDir, run.ResumeName)
	texPath, err := o.writeRunFolder(run, outDir)
	if err != nil {
		return fail(err.Error())
	}

	pdfPath, logOutput, err := o.compiler.Compile(ctx, texPath, outDir)
	if err != nil {
		var compErr *rendering.CompilationError
		if errors.As(err, &compErr) {
			emit(EventProgress, "Compiler diagnostics captured", compErr.LogOutput)
		}
		return fail(fmt.Sprintf("compilation failed: %v", err))
	}
	if logOutput != "" {
		log.Printf("run %s: pdflatex finished with warnings", run.ID)
	}
	rendering.CleanupAuxFiles(outDir, map[string]bool{
		filepath.Base(pdfPath):           true,
		filepath.Base(texPath):           true,
		run.ResumeName + "_jd.txt":       true,
		run.ResumeName + "_bullets.json": true,
	})

	// Stage 6: finalize the artifact and complete.
	artifact, err := o.tracker.Finalize(ctx, run, opts.JobID, pdfPath, texPath)
	if err != nil {
		var perr *artifacts.PersistenceError
		if errors.As(err, &perr) {
			// The files exist; losing the DB row is not worth failing over.
			log.Printf("run %s: %v", run.ID, perr)
			emit(EventProgress, "Artifact persistence failed; files kept on disk", nil)
		} else {
			return fail(fmt.Sprintf("artifact finalization failed: %v", err))
		}
	}

	if err := advance(run, types.StateComplete); err != nil {
		return fail(err.Error())
	}
	log.Printf("run %s: complete (%s)", run.ID, pdfPath)
	emit(EventResult, "Run complete", artifact)
	return run, nil
}

// writeRunFolder creates the per-run output directory and writes the
// assembled LaTeX source, the job description text, and the raw bullets
// alongside where the PDF will land.
func (o *Orchestrator) writeRunFolder(run *types.GenerationRun, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %v", err)
	}

	texPath := filepath.Join(outDir, run.ResumeName+".tex")
	if err := os.WriteFile(texPath, []byte(run.Document), 0644); err != nil {
		return "", fmt.Errorf("failed to write LaTeX source: %v", err)
	}

	jdPath := filepath.Join(outDir, run.ResumeName+"_jd.txt")
	if err := os.WriteFile(jdPath, []byte(run.Job.Text()), 0644); err != nil {
		return "", fmt.Errorf("failed to write job description: %v", err)
	}

	bullets := make(map[string][]string)
	for id, res := range run.Results() {
		if res.Usable() {
			bullets[id] = res.Bullets
		}
	}
	bulletsJSON, err := json.MarshalIndent(bullets, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal bullets: %v", err)
	}
	bulletsPath := filepath.Join(outDir, run.ResumeName+"_bullets.json")
	if err := os.WriteFile(bulletsPath, bulletsJSON, 0644); err != nil {
		return "", fmt.Errorf("failed to write bullets: %v", err)
	}
	return texPath, nil
}
