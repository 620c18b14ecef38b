// Package cover generates application cover letters and short-answer
// responses for tracked jobs.
package cover

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Invoker executes one templated prompt against the model provider.
type Invoker interface {
	Invoke(ctx context.Context, template string, vars map[string]string, tier llm.ModelTier) (string, error)
}

// Generator produces cover letters from a job's context and the
// candidate's background notes.
type Generator struct {
	invoker  Invoker
	template string
}

// NewGenerator creates a cover letter generator using the embedded
// cover-letter prompt.
func NewGenerator(invoker Invoker) (*Generator, error) {
	tmpl, err := prompts.Get("converter.json", "cover-letter")
	if err != nil {
		return nil, err
	}
	return &Generator{invoker: invoker, template: tmpl}, nil
}

// Request carries the inputs for one cover letter. Question is optional;
// when set, the letter answers that specific application question instead
// of being a general introduction.
type Request struct {
	Job        types.JobDescription
	Question   string
	Background string
}

// Generate writes a cover letter for the given job. The advanced model
// tier is used since letter quality matters more than latency here.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if req.Background == "" {
		return "", fmt.Errorf("cover letter generation requires candidate background notes")
	}

	question := req.Question
	if question == "" {
		question = "Why are you interested in this role and what makes you a strong fit?"
	}

	letter, err := g.invoker.Invoke(ctx, g.template, map[string]string{
		"Company":    req.Job.Company,
		"Role":       req.Job.Role,
		"JobContext": req.Job.Text(),
		"Question":   question,
		"Background": req.Background,
	}, llm.TierAdvanced)
	if err != nil {
		return "", fmt.Errorf("cover letter generation failed: %w", err)
	}
	return strings.TrimSpace(llm.CleanCodeBlock(letter)), nil
}
