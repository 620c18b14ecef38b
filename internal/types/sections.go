package types

// ExperienceSection is one configured block of the candidate's experience:
// a fact corpus plus the template marker its generated content replaces.
// The section set is fixed per candidate configuration and read-only
// during a run.
type ExperienceSection struct {
	ID     string   `json:"id"`
	Header string   `json:"header"`
	Marker string   `json:"marker"`
	Facts  []string `json:"facts"`
}

// SectionStatus is the final disposition of one section within a run.
type SectionStatus string

const (
	// SectionOK means the section produced bullets and a LaTeX fragment.
	SectionOK SectionStatus = "ok"
	// SectionSkipped means the facts filter found nothing relevant to the
	// job, so no content was generated for the section.
	SectionSkipped SectionStatus = "skipped"
	// SectionFailed means generation failed after retries; the section is
	// dropped from the document but the run continues.
	SectionFailed SectionStatus = "failed"
)

// SectionResult is the per-section output of one run. It is created by the
// section's worker and never mutated after the worker returns.
type SectionResult struct {
	SectionID     string        `json:"section_id"`
	Status        SectionStatus `json:"status"`
	FilteredFacts []string      `json:"filtered_facts,omitempty"`
	Bullets       []string      `json:"bullets,omitempty"`
	Fragment      string        `json:"fragment,omitempty"`
	FailReason    string        `json:"fail_reason,omitempty"`
}

// Usable reports whether the result carries content for the final document.
func (r *SectionResult) Usable() bool {
	return r != nil && r.Status == SectionOK && r.Fragment != ""
}
