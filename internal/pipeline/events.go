package pipeline

// Event types emitted over a run's progress stream. Every run ends with
// exactly one terminal event: result on success, error on failure.
const (
	EventProgress = "progress"
	EventResult   = "result"
	EventError    = "error"
)

// ProgressEvent is one update from a running generation.
type ProgressEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ProgressCallback receives events as the pipeline advances.
type ProgressCallback func(event ProgressEvent)
