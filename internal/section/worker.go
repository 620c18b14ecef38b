// Package section implements the per-section generation worker: facts
// filtering, bullet drafting, and LaTeX conversion for one experience block.
package section

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// MaxBullets caps how many bullets a section contributes.
	MaxBullets = 4
	// jdSnippetLimit bounds how much job description text each per-section
	// prompt carries.
	jdSnippetLimit = 4000
	// noneSentinel is what the facts-filter prompt returns for an
	// irrelevant section.
	noneSentinel = "NONE"
)

// Invoker is the prompt-invocation capability workers depend on.
type Invoker interface {
	Invoke(ctx context.Context, template string, vars map[string]string, tier llm.ModelTier) (string, error)
}

// Templates holds the three prompt templates a worker runs in order.
type Templates struct {
	FactsFilter string
	Content     string
	Markup      string
}

// DefaultTemplates loads the worker prompts from the embedded prompt file.
func DefaultTemplates() Templates {
	return Templates{
		FactsFilter: prompts.MustGet("converter.json", "facts-filter"),
		Content:     prompts.MustGet("converter.json", "bullets-content"),
		Markup:      prompts.MustGet("converter.json", "bullets-latex"),
	}
}

// Worker generates content for one configured experience section. Workers
// for different sections share no state and run concurrently.
type Worker struct {
	invoker Invoker
	tmpl    Templates
}

// NewWorker creates a worker around an invoker and its prompt templates.
func NewWorker(invoker Invoker, tmpl Templates) *Worker {
	return &Worker{invoker: invoker, tmpl: tmpl}
}

// Process runs the three sub-steps for one section: filter the fact corpus
// against the job, draft bullets from the surviving facts, and convert the
// bullets to LaTeX. An empty filter result short-circuits to a skipped
// result; any unrecoverable invoker failure produces a failed result.
// Process never returns a Go error — sibling sections must not be affected.
func (w *Worker) Process(ctx context.Context, sec types.ExperienceSection, jobText, company, role string) *types.SectionResult {
	result := &types.SectionResult{SectionID: sec.ID}

	filtered, err := w.filterFacts(ctx, sec, jobText)
	if err != nil {
		result.Status = types.SectionFailed
		result.FailReason = fmt.Sprintf("facts filter failed: %v", err)
		return result
	}
	if len(filtered) == 0 {
		result.Status = types.SectionSkipped
		return result
	}
	result.FilteredFacts = filtered

	bullets, err := w.draftBullets(ctx, sec, jobText, company, role, filtered)
	if err != nil {
		result.Status = types.SectionFailed
		result.FailReason = fmt.Sprintf("bullet drafting failed: %v", err)
		return result
	}
	if len(bullets) == 0 {
		result.Status = types.SectionFailed
		result.FailReason = "bullet drafting returned no content"
		return result
	}
	result.Bullets = bullets

	fragment, err := w.convertToLaTeX(ctx, bullets)
	if err != nil {
		// The bullets exist; a conversion failure degrades to a plain wrap
		// rather than discarding the section.
		fragment = fallbackFragment(bullets)
	}
	result.Fragment = IndentFragment(fragment)
	result.Status = types.SectionOK
	return result
}

func (w *Worker) filterFacts(ctx context.Context, sec types.ExperienceSection, jobText string) ([]string, error) {
	out, err := w.invoker.Invoke(ctx, w.tmpl.FactsFilter, map[string]string{
		"JobRequirements": snippet(jobText),
		"Facts":           strings.Join(sec.Facts, "\n"),
	}, llm.TierLite)
	if err != nil {
		return nil, err
	}

	out = strings.TrimSpace(out)
	if out == "" || strings.EqualFold(out, noneSentinel) {
		return nil, nil
	}

	var facts []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" && !strings.EqualFold(line, noneSentinel) {
			facts = append(facts, line)
		}
	}
	return facts, nil
}

func (w *Worker) draftBullets(ctx context.Context, sec types.ExperienceSection, jobText, company, role string, facts []string) ([]string, error) {
	out, err := w.invoker.Invoke(ctx, w.tmpl.Content, map[string]string{
		"Role":           role,
		"Company":        company,
		"Header":         sec.Header,
		"JobDescription": snippet(jobText),
		"Facts":          strings.Join(facts, "\n"),
	}, llm.TierAdvanced)
	if err != nil {
		return nil, err
	}
	return CleanBulletLines(out), nil
}

func (w *Worker) convertToLaTeX(ctx context.Context, bullets []string) (string, error) {
	out, err := w.invoker.Invoke(ctx, w.tmpl.Markup, map[string]string{
		"Bullets": strings.Join(bullets, "\n"),
	}, llm.TierStandard)
	if err != nil {
		return "", err
	}
	return llm.CleanCodeBlock(out), nil
}

// fallbackFragment wraps bullets in a bare itemize block when the LaTeX
// conversion step fails after content was already drafted.
func fallbackFragment(bullets []string) string {
	var sb strings.Builder
	sb.WriteString("\\begin{itemize}\n")
	for _, b := range bullets {
		sb.WriteString("\\item " + b + "\n")
	}
	sb.WriteString("\\end{itemize}")
	return sb.String()
}

func snippet(text string) string {
	if len(text) <= jdSnippetLimit {
		return text
	}
	cut := jdSnippetLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
