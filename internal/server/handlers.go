package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/cover"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/types"
)

var validate = validator.New()

// decodeAndValidate parses a JSON request body into v and runs struct
// validation on it.
func decodeAndValidate(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	if err := validate.Struct(v); err != nil {
		return err
	}
	return nil
}

func (s *Server) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.deps.Store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "job tracking requires a database")
		return false
	}
	return true
}

// generateRequest starts a run either from a tracked job or from inline
// job description text.
type generateRequest struct {
	JobID   string `json:"job_id,omitempty" validate:"omitempty,uuid4"`
	JobText string `json:"job_text,omitempty" validate:"required_without=JobID"`
	Company string `json:"company,omitempty"`
	Role    string `json:"role,omitempty"`
}

// resolveJob turns a generate request into the job description the
// pipeline consumes, plus the tracked job id when one was referenced.
func (s *Server) resolveJob(r *http.Request, req generateRequest) (types.JobDescription, uuid.UUID, error) {
	if req.JobID == "" {
		return types.JobDescription{
			RawText: req.JobText,
			Company: req.Company,
			Role:    req.Role,
		}, uuid.Nil, nil
	}

	if s.deps.Store == nil {
		return types.JobDescription{}, uuid.Nil, fmt.Errorf("job_id requires a database")
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return types.JobDescription{}, uuid.Nil, fmt.Errorf("invalid job_id")
	}
	job, err := s.deps.Store.GetJob(r.Context(), jobID)
	if err != nil {
		return types.JobDescription{}, uuid.Nil, err
	}
	if job == nil {
		return types.JobDescription{}, uuid.Nil, fmt.Errorf("job not found: %s", jobID)
	}
	return job.Description, jobID, nil
}

func (s *Server) runOptions(jobID uuid.UUID, onProgress pipeline.ProgressCallback) pipeline.RunOptions {
	return pipeline.RunOptions{
		Sections:        s.deps.Sections,
		Template:        s.deps.Template,
		SkillsInventory: s.deps.Skills,
		CandidateName:   s.deps.CandidateName,
		OutputDir:       s.deps.OutputDir,
		JobID:           jobID,
		OnProgress:      onProgress,
	}
}

// handleGenerate runs the full pipeline synchronously and returns the
// final state and artifact as one JSON document.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	job, jobID, err := s.resolveJob(r, req)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.deps.Run.Run(r.Context(), job, s.runOptions(jobID, nil))
	if err != nil {
		s.jsonResponse(w, http.StatusUnprocessableEntity, map[string]any{
			"run_id": run.ID,
			"state":  run.State,
			"error":  run.FailReason,
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"run_id":   run.ID,
		"state":    run.State,
		"company":  run.Company,
		"role":     run.Role,
		"artifact": run.Artifact,
	})
}

// handleGenerateStream runs the pipeline while streaming progress events
// over SSE. The stream carries exactly one terminal event: result or error.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	job, jobID, err := s.resolveJob(r, req)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts := s.runOptions(jobID, func(e pipeline.ProgressEvent) {
		sse.WriteEvent(e.Type, e) //nolint:errcheck
	})
	// The terminal event has already been streamed; the return values only
	// matter for the access log.
	if _, err := s.deps.Run.Run(r.Context(), job, opts); err != nil {
		return
	}
}

type createJobRequest struct {
	Company            string `json:"company" validate:"required"`
	Role               string `json:"role" validate:"required"`
	Location           string `json:"location,omitempty"`
	URL                string `json:"url,omitempty" validate:"omitempty,url"`
	Status             string `json:"status,omitempty" validate:"omitempty,oneof=not_applied applied skipped starred"`
	MatchScore         int    `json:"match_score,omitempty" validate:"omitempty,min=0,max=100"`
	Description        string `json:"description,omitempty"`
	TechnicalStack     string `json:"technical_stack,omitempty"`
	Responsibilities   string `json:"key_responsibilities,omitempty"`
	RequiredExperience string `json:"required_experience,omitempty"`
	SalaryRange        string `json:"salary_range,omitempty"`
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	var req createJobRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &db.Job{
		Company:    req.Company,
		Role:       req.Role,
		Location:   req.Location,
		URL:        req.URL,
		Status:     req.Status,
		MatchScore: req.MatchScore,
		Description: types.JobDescription{
			RawText:            req.Description,
			Company:            req.Company,
			Role:               req.Role,
			TechnicalStack:     req.TechnicalStack,
			Responsibilities:   req.Responsibilities,
			RequiredExperience: req.RequiredExperience,
			SalaryRange:        req.SalaryRange,
		},
	}
	id, err := s.deps.Store.CreateJob(r.Context(), job)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	filters := db.JobFilters{Status: r.URL.Query().Get("status")}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			s.errorResponse(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filters.Limit = limit
	}

	jobs, err := s.deps.Store.ListJobs(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if jobs == nil {
		jobs = []db.Job{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	job, err := s.deps.Store.GetJob(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "job not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=not_applied applied skipped starred"`
}

func (s *Server) handleUpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.deps.Store.UpdateJobStatus(r.Context(), id, req.Status); err != nil {
		if strings.Contains(err.Error(), "not found") {
			s.errorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"id": id.String(), "status": req.Status})
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	if err := s.deps.Store.DeleteJob(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			s.errorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListResumeVersions(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	versions, err := s.deps.Store.ListResumeVersions(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if versions == nil {
		versions = []db.ResumeVersion{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"versions": versions})
}

type coverLetterRequest struct {
	Question string `json:"question,omitempty"`
}

func (s *Server) handleCoverLetter(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	var req coverLetterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.deps.Background == "" {
		s.errorResponse(w, http.StatusBadRequest, "cover letters require background notes in the configuration")
		return
	}

	job, err := s.deps.Store.GetJob(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "job not found")
		return
	}

	letter, err := s.deps.Cover.Generate(r.Context(), cover.Request{
		Job:        job.Description,
		Question:   req.Question,
		Background: s.deps.Background,
	})
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"cover_letter": letter})
}
