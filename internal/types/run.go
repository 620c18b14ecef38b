package types

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunState is the lifecycle stage of a generation run.
type RunState string

const (
	StateInitiated          RunState = "initiated"
	StateFilteringGlobal    RunState = "filtering_global"
	StateNaming             RunState = "naming"
	StateGeneratingSections RunState = "generating_sections"
	StateAssembling         RunState = "assembling"
	StateCompiling          RunState = "compiling"
	StateComplete           RunState = "complete"
	StateFailed             RunState = "failed"
)

// Terminal reports whether the run can make no further progress.
func (s RunState) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// GenerationRun holds all mutable state for one tailoring run. It is
// created by the orchestrator and mutated only through its methods, so
// section workers running concurrently never race on the results map.
type GenerationRun struct {
	ID            uuid.UUID
	Job           JobDescription
	CandidateName string

	// Populated during the naming stage.
	Company    string
	Role       string
	ResumeName string

	SkillsBlock string

	// Filled in during assembly; the compiled document source.
	Document string

	State      RunState
	FailReason string
	StartedAt  time.Time

	Artifact *Artifact

	mu       sync.Mutex
	results  map[string]*SectionResult
	progress []string
}

// NewGenerationRun creates a run in the initiated state.
func NewGenerationRun(job JobDescription, candidateName string) *GenerationRun {
	return &GenerationRun{
		ID:            uuid.New(),
		Job:           job,
		CandidateName: candidateName,
		State:         StateInitiated,
		StartedAt:     time.Now(),
		results:       make(map[string]*SectionResult),
	}
}

// SetResult records the outcome for one section.
func (r *GenerationRun) SetResult(sectionID string, result *SectionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[sectionID] = result
}

// Result returns the recorded outcome for one section, or nil.
func (r *GenerationRun) Result(sectionID string) *SectionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results[sectionID]
}

// Results returns a copy of the per-section outcomes.
func (r *GenerationRun) Results() map[string]*SectionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*SectionResult, len(r.results))
	for id, res := range r.results {
		out[id] = res
	}
	return out
}

// AddProgress appends a line to the run's progress log.
func (r *GenerationRun) AddProgress(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, msg)
}

// Progress returns a copy of the progress log.
func (r *GenerationRun) Progress() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.progress))
	copy(out, r.progress)
	return out
}
