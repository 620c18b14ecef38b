// Package server provides the HTTP REST API for the resume tailor.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/artifacts"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/cover"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/section"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Runner executes generation runs. The pipeline orchestrator satisfies it;
// tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, job types.JobDescription, opts pipeline.RunOptions) (*types.GenerationRun, error)
}

// CoverGenerator writes cover letters for tracked jobs.
type CoverGenerator interface {
	Generate(ctx context.Context, req cover.Request) (string, error)
}

// JobStore is the persistence surface the handlers use. *db.DB satisfies
// it; handler tests use an in-memory fake.
type JobStore interface {
	CreateJob(ctx context.Context, job *db.Job) (uuid.UUID, error)
	GetJob(ctx context.Context, id uuid.UUID) (*db.Job, error)
	ListJobs(ctx context.Context, filters db.JobFilters) ([]db.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string) error
	DeleteJob(ctx context.Context, id uuid.UUID) error
	ListResumeVersions(ctx context.Context, jobID uuid.UUID) ([]db.ResumeVersion, error)
}

// Deps carries everything the handlers need, preloaded at startup so a
// request never re-reads configuration from disk.
type Deps struct {
	Store JobStore // nil disables job tracking endpoints
	Run   Runner
	Cover CoverGenerator

	Sections      []types.ExperienceSection
	Template      string
	Skills        string
	Background    string
	CandidateName string
	OutputDir     string
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	deps       Deps
	closeDB    func()
}

// New creates a server around prepared dependencies.
func New(port int, deps Deps) *Server {
	s := &Server{deps: deps}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("POST /generate/stream", s.handleGenerateStream)

	mux.HandleFunc("POST /jobs", s.handleCreateJob)
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("PATCH /jobs/{id}/status", s.handleUpdateJobStatus)
	mux.HandleFunc("DELETE /jobs/{id}", s.handleDeleteJob)
	mux.HandleFunc("GET /jobs/{id}/resume-versions", s.handleListResumeVersions)
	mux.HandleFunc("POST /jobs/{id}/cover-letter", s.handleCoverLetter)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // generation runs are slow
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// NewFromConfig wires the production dependency graph: database, Gemini
// client, section worker, pdflatex compiler, and the orchestrator.
func NewFromConfig(ctx context.Context, cfg *config.Config, port int) (*Server, error) {
	sections, err := cfg.LoadSections()
	if err != nil {
		return nil, err
	}
	templateData, err := os.ReadFile(cfg.TemplatePath())
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	skills, err := cfg.LoadSkills()
	if err != nil {
		return nil, err
	}
	background, err := cfg.LoadBackground()
	if err != nil {
		return nil, err
	}

	llmCfg := llm.DefaultConfig()
	if cfg.Models.Lite != "" {
		llmCfg = llmCfg.WithModel(llm.TierLite, cfg.Models.Lite)
	}
	if cfg.Models.Standard != "" {
		llmCfg = llmCfg.WithModel(llm.TierStandard, cfg.Models.Standard)
	}
	if cfg.Models.Advanced != "" {
		llmCfg = llmCfg.WithModel(llm.TierAdvanced, cfg.Models.Advanced)
	}
	client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey)
	if err != nil {
		return nil, err
	}
	invoker := llm.NewInvoker(client)

	deps := Deps{
		Run: pipeline.New(invoker,
			section.NewWorker(invoker, section.DefaultTemplates()),
			rendering.PDFLaTeX{},
			artifacts.NewTracker(nil)),
		Sections:      sections,
		Template:      string(templateData),
		Skills:        skills,
		Background:    background,
		CandidateName: cfg.CandidateName,
		OutputDir:     cfg.OutputPath(),
	}

	coverGen, err := cover.NewGenerator(invoker)
	if err != nil {
		return nil, err
	}
	deps.Cover = coverGen

	var closeDB func()
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		deps.Store = database
		deps.Run = pipeline.New(invoker,
			section.NewWorker(invoker, section.DefaultTemplates()),
			rendering.PDFLaTeX{},
			artifacts.NewTracker(database))
		closeDB = database.Close
	}

	s := New(port, deps)
	s.closeDB = closeDB
	return s, nil
}

// Start begins listening and blocks until an interrupt, then shuts down
// gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if s.closeDB != nil {
		s.closeDB()
	}
	log.Println("Server stopped")
	return nil
}

// Handler exposes the configured routes for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
