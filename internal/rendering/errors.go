// Package rendering merges generated LaTeX fragments into the resume
// template and drives the external pdflatex compiler.
package rendering

import "fmt"

// TemplateMismatchError means a configured section's marker token was not
// found in the template. This is a configuration defect, not a content
// problem, so it aborts the run before any compile attempt.
type TemplateMismatchError struct {
	Marker    string
	SectionID string
}

func (e *TemplateMismatchError) Error() string {
	if e.SectionID != "" {
		return fmt.Sprintf("template mismatch: marker %q for section %q not found in template", e.Marker, e.SectionID)
	}
	return fmt.Sprintf("template mismatch: marker %q not found in template", e.Marker)
}

// CompilationError represents a pdflatex failure, carrying the compiler's
// log output for the error report.
type CompilationError struct {
	Message   string
	LogOutput string
	Cause     error
}

func (e *CompilationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("compilation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("compilation error: %s", e.Message)
}

func (e *CompilationError) Unwrap() error {
	return e.Cause
}
