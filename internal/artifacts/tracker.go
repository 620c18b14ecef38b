// Package artifacts finalizes generation runs into persisted resume
// artifacts.
package artifacts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Store persists finished artifacts and hands out version numbers.
// Implemented by the db package; fakes stand in for tests and for runs
// without a database.
type Store interface {
	NextVersionNumber(ctx context.Context, jobID uuid.UUID) (int, error)
	SaveResumeVersion(ctx context.Context, jobID, runID uuid.UUID, artifact *types.Artifact) error
}

// Tracker builds and persists the artifact for a completed run.
type Tracker struct {
	store Store
	now   func() time.Time
}

// NewTracker creates a tracker. A nil store is allowed for one-shot CLI
// runs; the artifact is then built but not persisted.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Finalize turns a run that has compiled successfully into an artifact.
// It is only legal while the run is in the compiling state with a
// non-empty assembled document, and at most once per run. The bullets map
// carries only sections that produced content.
//
// When the store fails, for the version counter or the save, the
// artifact is still returned together with a *PersistenceError, since
// the files already exist on disk. A counter failure degrades the
// version id to v1.
func (t *Tracker) Finalize(ctx context.Context, run *types.GenerationRun, jobID uuid.UUID, pdfPath, textPath string) (*types.Artifact, error) {
	if run.State != types.StateCompiling {
		return nil, fmt.Errorf("cannot finalize run %s in state %q", run.ID, run.State)
	}
	if run.Document == "" {
		return nil, fmt.Errorf("cannot finalize run %s without an assembled document", run.ID)
	}
	if run.Artifact != nil {
		return nil, fmt.Errorf("run %s already has an artifact", run.ID)
	}

	version := 1
	var persistErr *PersistenceError
	if t.store != nil && jobID != uuid.Nil {
		n, err := t.store.NextVersionNumber(ctx, jobID)
		if err != nil {
			// The counter is only cosmetic; keep v1 and report the
			// failure alongside the artifact.
			persistErr = &PersistenceError{Message: "failed to allocate version number", Cause: err}
		} else {
			version = n
		}
	}

	bullets := make(map[string][]string)
	for id, res := range run.Results() {
		if res != nil && res.Status == types.SectionOK && len(res.Bullets) > 0 {
			bullets[id] = res.Bullets
		}
	}

	artifact := &types.Artifact{
		PDFPath:   pdfPath,
		TextPath:  textPath,
		VersionID: fmt.Sprintf("v%d", version),
		CreatedAt: t.now(),
		Bullets:   bullets,
	}
	run.Artifact = artifact

	if t.store != nil && jobID != uuid.Nil && persistErr == nil {
		if err := t.store.SaveResumeVersion(ctx, jobID, run.ID, artifact); err != nil {
			return artifact, &PersistenceError{Message: "failed to save resume version", Cause: err}
		}
	}
	if persistErr != nil {
		return artifact, persistErr
	}
	return artifact, nil
}
