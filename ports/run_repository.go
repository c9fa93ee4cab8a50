// Package ports declares the interfaces the application core depends on,
// implemented by adapters.
package ports

import (
	"context"
	"errors"

	"gosem/domain/core"
	"gosem/domain/sem"
)

// ErrRunNotFound reports that no run exists for the requested id. Every
// RunRepository implementation returns it (wrapped or bare) from GetRun so
// callers can test with errors.Is without knowing the backing store.
var ErrRunNotFound = errors.New("analysis run not found")

// RunRepository persists completed analysis runs for later retrieval.
type RunRepository interface {
	SaveRun(ctx context.Context, run *sem.AnalysisRun) error
	GetRun(ctx context.Context, id core.RunID) (*sem.AnalysisRun, error)
	ListRuns(ctx context.Context, limit int) ([]sem.AnalysisRun, error)
}
