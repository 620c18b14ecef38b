package types

import "time"

// Artifact is the durable output record of a successful run: where the
// compiled PDF and intermediate LaTeX source live, a version id that
// distinguishes repeated generations for the same job, and the generated
// bullet content for caller inspection.
type Artifact struct {
	PDFPath   string              `json:"pdf_path"`
	TextPath  string              `json:"text_path"`
	VersionID string              `json:"version_id"`
	CreatedAt time.Time           `json:"created_at"`
	Bullets   map[string][]string `json:"bullets"`
}
