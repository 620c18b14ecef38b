package artifacts

import "fmt"

// PersistenceError indicates the artifact was produced but could not be
// saved to the store. The generated files still exist on disk, so callers
// receive the artifact alongside this error.
type PersistenceError struct {
	Message string
	Cause   error
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("artifact persistence failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("artifact persistence failed: %s", e.Message)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}
