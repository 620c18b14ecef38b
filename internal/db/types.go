package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Job statuses tracked for each posting.
const (
	StatusNotApplied = "not_applied"
	StatusApplied    = "applied"
	StatusSkipped    = "skipped"
	StatusStarred    = "starred"
)

// ValidStatus reports whether s is one of the tracked job statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusNotApplied, StatusApplied, StatusSkipped, StatusStarred:
		return true
	}
	return false
}

// Job is one tracked job posting.
type Job struct {
	ID          uuid.UUID            `json:"id"`
	Company     string               `json:"company"`
	Role        string               `json:"role"`
	Location    string               `json:"location,omitempty"`
	URL         string               `json:"url,omitempty"`
	Status      string               `json:"status"`
	MatchScore  int                  `json:"match_score"`
	Description types.JobDescription `json:"description"`
	CreatedAt   time.Time            `json:"created_at"`
}

// JobFilters narrows ListJobs results.
type JobFilters struct {
	Status string
	Limit  int
}

// ResumeVersion is one persisted generation artifact for a job.
type ResumeVersion struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	RunID     uuid.UUID `json:"run_id"`
	PDFPath   string    `json:"pdf_path"`
	TextPath  string    `json:"text_path"`
	VersionID string    `json:"version_id"`
	Bullets   map[string][]string `json:"bullets,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
