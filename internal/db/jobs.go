package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateJob inserts a new tracked job and returns its ID.
func (db *DB) CreateJob(ctx context.Context, job *Job) (uuid.UUID, error) {
	structuredJSON, err := json.Marshal(job.Description)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal job description: %w", err)
	}

	status := job.Status
	if status == "" {
		status = StatusNotApplied
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO jobs (company, role, location, url, status, match_score, jd_raw, jd_structured)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		job.Company, job.Role, job.Location, job.URL, status, job.MatchScore,
		job.Description.RawText, structuredJSON,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create job: %w", err)
	}
	return id, nil
}

// GetJob retrieves a tracked job by ID. Returns nil when not found.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	var job Job
	var structuredJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, company, role, location, url, status, match_score, jd_raw, jd_structured, created_at
		 FROM jobs
		 WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.Company, &job.Role, &job.Location, &job.URL, &job.Status,
		&job.MatchScore, &job.Description.RawText, &structuredJSON, &job.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	rawText := job.Description.RawText
	if structuredJSON != nil {
		_ = json.Unmarshal(structuredJSON, &job.Description)
		job.Description.RawText = rawText
	}
	if job.Description.Company == "" {
		job.Description.Company = job.Company
	}
	if job.Description.Role == "" {
		job.Description.Role = job.Role
	}
	return &job, nil
}

// ListJobs retrieves tracked jobs, optionally filtered by status.
func (db *DB) ListJobs(ctx context.Context, filters JobFilters) ([]Job, error) {
	query := `SELECT id, company, role, location, url, status, match_score, created_at
	          FROM jobs`
	args := []any{}
	if filters.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, filters.Status)
	}
	query += ` ORDER BY created_at DESC`
	if filters.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, filters.Limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var job Job
		if err := rows.Scan(&job.ID, &job.Company, &job.Role, &job.Location, &job.URL,
			&job.Status, &job.MatchScore, &job.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// UpdateJobStatus changes a job's tracking status (applied, starred, ...).
func (db *DB) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid job status %q", status)
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs SET status = $1 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job not found: %s", id)
	}
	return nil
}

// DeleteJob removes a tracked job and its resume versions.
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job not found: %s", id)
	}
	return nil
}
