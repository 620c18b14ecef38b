// Package types defines the shared data structures passed between pipeline stages.
package types

import (
	"fmt"
	"strings"
)

// JobDescription is the job input for one generation run. It carries the
// free-text description plus whatever structured fields upstream screening
// extracted. Once a run accepts it, it is never mutated.
type JobDescription struct {
	RawText            string `json:"raw_text"`
	Company            string `json:"company,omitempty"`
	Role               string `json:"role,omitempty"`
	TechnicalStack     string `json:"technical_stack,omitempty"`
	Responsibilities   string `json:"key_responsibilities,omitempty"`
	RequiredExperience string `json:"required_experience,omitempty"`
	SalaryRange        string `json:"salary_range,omitempty"`
}

// Text returns the best available textual form of the job description.
// When no raw text was stored, a pseudo-JD is reconstructed from the
// structured fields so the prompts still have something to work with.
func (jd *JobDescription) Text() string {
	if len(jd.RawText) > 100 {
		return jd.RawText
	}

	company := jd.Company
	if company == "" {
		company = "Unknown Company"
	}
	role := jd.Role
	if role == "" {
		role = "Unknown Role"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "JOB TITLE: %s\nCOMPANY: %s\n", role, company)
	sb.WriteString("\n[TECHNICAL STACK]\n" + orNA(jd.TechnicalStack))
	sb.WriteString("\n\n[KEY RESPONSIBILITIES]\n" + orNA(jd.Responsibilities))
	sb.WriteString("\n\n[REQUIRED EXPERIENCE]\n" + orNA(jd.RequiredExperience))
	if jd.SalaryRange != "" {
		sb.WriteString("\n\n[SALARY RANGE]\n" + jd.SalaryRange)
	}
	sb.WriteString("\n")
	return sb.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
