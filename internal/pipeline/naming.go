package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	skillsDelimiter   = "===== Skills Section ====="
	filenameDelimiter = "===== Resume Filename ====="
)

// runNaming asks the model for the tailored skills block and the target
// resume filename in a single call, then parses and sanitizes the result.
// This stage is fatal on failure: without a name there is nowhere to put
// the output, and without skills the template cannot be filled.
func (o *Orchestrator) runNaming(ctx context.Context, run *types.GenerationRun, jobText, skillsInventory string) error {
	out, err := o.invoker.Invoke(ctx, o.prompts.Naming, map[string]string{
		"Year":            strconv.Itoa(time.Now().Year()),
		"SkillsInventory": skillsInventory,
		"JobDescription":  jobText,
	}, llm.TierAdvanced)
	if err != nil {
		return fmt.Errorf("skills and filename generation failed: %w", err)
	}

	skills, filename, err := parseNamingOutput(out)
	if err != nil {
		return err
	}

	run.SkillsBlock = skills
	run.ResumeName = buildResumeName(run.CandidateName, filename)

	company, role := targetInfoFromFilename(filename)
	run.Company = run.Job.Company
	if run.Company == "" {
		run.Company = company
	}
	run.Role = run.Job.Role
	if run.Role == "" {
		run.Role = role
	}
	return nil
}

// parseNamingOutput splits the delimited model response into the skills
// block and the proposed filename.
func parseNamingOutput(out string) (skills, filename string, err error) {
	skillsIdx := strings.Index(out, skillsDelimiter)
	fileIdx := strings.Index(out, filenameDelimiter)
	if skillsIdx < 0 || fileIdx < 0 || fileIdx < skillsIdx {
		return "", "", fmt.Errorf("naming response missing expected delimiters")
	}

	skills = strings.TrimSpace(out[skillsIdx+len(skillsDelimiter) : fileIdx])
	filename = strings.TrimSpace(out[fileIdx+len(filenameDelimiter):])
	if idx := strings.IndexByte(filename, '\n'); idx >= 0 {
		filename = strings.TrimSpace(filename[:idx])
	}

	if skills == "" {
		return "", "", fmt.Errorf("naming response contained an empty skills block")
	}
	if filename == "" {
		return "", "", fmt.Errorf("naming response contained an empty filename")
	}
	return skills, sanitizeFilename(filename), nil
}

// sanitizeFilename strips the extension and any character that is not
// safe in a filesystem path.
func sanitizeFilename(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, " ", "_")

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
		}
	}
	out := strings.Trim(sb.String(), "_-")
	if out == "" {
		return "Resume"
	}
	return out
}

// buildResumeName prefixes the candidate's name onto the model-proposed
// filename so generated files are attributable at a glance.
func buildResumeName(candidateName, filename string) string {
	prefix := sanitizeFilename(candidateName)
	if prefix == "" || prefix == "Resume" {
		return filename
	}
	return prefix + "_" + filename
}

// targetInfoFromFilename recovers company and role from a filename of the
// Company_Role_Year form. A trailing numeric segment is treated as the
// year and dropped; the role segments are de-camelcased into words.
func targetInfoFromFilename(filename string) (company, role string) {
	parts := strings.Split(filename, "_")
	if len(parts) == 0 {
		return "", ""
	}
	if last := parts[len(parts)-1]; len(parts) > 1 {
		if _, err := strconv.Atoi(last); err == nil {
			parts = parts[:len(parts)-1]
		}
	}

	company = splitCamelCase(parts[0])
	if len(parts) > 1 {
		words := make([]string, 0, len(parts)-1)
		for _, p := range parts[1:] {
			words = append(words, splitCamelCase(p))
		}
		role = strings.Join(words, " ")
	}
	return company, role
}

func splitCamelCase(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := rune(s[i-1])
			if prev >= 'a' && prev <= 'z' {
				sb.WriteByte(' ')
			}
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
