package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/types"
)

// filterGlobal runs the job description through the global relevance
// filter and returns the condensed text the per-section prompts consume.
// The model responds with a JSON object; gjson plucks the fields so a
// slightly malformed wrapper (stray prose, code fences) does not sink the
// stage as long as the object itself is findable.
func (o *Orchestrator) filterGlobal(ctx context.Context, run *types.GenerationRun) (string, error) {
	out, err := o.invoker.Invoke(ctx, o.prompts.GlobalFilter, map[string]string{
		"JobDescription": run.Job.Text(),
	}, llm.TierStandard)
	if err != nil {
		return "", err
	}

	out = llm.CleanCodeBlock(out)
	if !gjson.Valid(out) {
		// Try to pluck the first JSON object out of surrounding prose.
		start := strings.Index(out, "{")
		end := strings.LastIndex(out, "}")
		if start < 0 || end <= start {
			return "", fmt.Errorf("global filter returned no JSON object")
		}
		out = out[start : end+1]
		if !gjson.Valid(out) {
			return "", fmt.Errorf("global filter returned malformed JSON")
		}
	}

	filtered := types.JobDescription{
		Company:            gjson.Get(out, "company").String(),
		Role:               gjson.Get(out, "role").String(),
		TechnicalStack:     gjson.Get(out, "technical_stack").String(),
		Responsibilities:   gjson.Get(out, "key_responsibilities").String(),
		RequiredExperience: gjson.Get(out, "required_experience").String(),
		SalaryRange:        gjson.Get(out, "salary_range").String(),
	}
	if filtered.Company == "" && filtered.Role == "" && filtered.TechnicalStack == "" {
		return "", fmt.Errorf("global filter returned an empty extraction")
	}

	if run.Job.Company == "" {
		run.Job.Company = filtered.Company
	}
	if run.Job.Role == "" {
		run.Job.Role = filtered.Role
	}
	return filtered.Text(), nil
}
