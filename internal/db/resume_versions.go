package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/types"
)

// NextVersionNumber returns the next monotonic version number for a job's
// generated resumes (1 for the first generation).
func (db *DB) NextVersionNumber(ctx context.Context, jobID uuid.UUID) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM resume_versions WHERE job_id = $1`,
		jobID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count resume versions: %w", err)
	}
	return count + 1, nil
}

// SaveResumeVersion persists a generation artifact for a job.
func (db *DB) SaveResumeVersion(ctx context.Context, jobID, runID uuid.UUID, artifact *types.Artifact) error {
	bulletsJSON, err := json.Marshal(artifact.Bullets)
	if err != nil {
		return fmt.Errorf("failed to marshal bullets: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO resume_versions (job_id, run_id, pdf_path, text_path, version_id, bullets, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		jobID, runID, artifact.PDFPath, artifact.TextPath, artifact.VersionID,
		bulletsJSON, artifact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save resume version %s: %w", artifact.VersionID, err)
	}
	return nil
}

// ListResumeVersions retrieves all generated resume versions for a job,
// newest first.
func (db *DB) ListResumeVersions(ctx context.Context, jobID uuid.UUID) ([]ResumeVersion, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, job_id, run_id, pdf_path, text_path, version_id, bullets, created_at
		 FROM resume_versions
		 WHERE job_id = $1
		 ORDER BY created_at DESC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resume versions: %w", err)
	}
	defer rows.Close()

	var versions []ResumeVersion
	for rows.Next() {
		var v ResumeVersion
		var bulletsJSON []byte
		if err := rows.Scan(&v.ID, &v.JobID, &v.RunID, &v.PDFPath, &v.TextPath,
			&v.VersionID, &bulletsJSON, &v.CreatedAt); err != nil {
			return nil, err
		}
		if bulletsJSON != nil {
			_ = json.Unmarshal(bulletsJSON, &v.Bullets)
		}
		versions = append(versions, v)
	}
	return versions, nil
}
