// Package postgres persists analysis runs. Undefined statistics (NaN) are
// stored as JSON nulls and restored as NaN on read, so the degenerate-data
// markers survive a round trip.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"gosem/domain/core"
	"gosem/domain/sem"
	"gosem/ports"
)

// RunRepositoryImpl implements ports.RunRepository for PostgreSQL.
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository.
func NewRunRepository(db *sqlx.DB) *RunRepositoryImpl {
	return &RunRepositoryImpl{db: db}
}

var _ ports.RunRepository = (*RunRepositoryImpl)(nil)

// EnsureSchema creates the storage table when it does not exist yet.
func (r *RunRepositoryImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			method TEXT NOT NULL,
			sites INT NOT NULL,
			outer_model JSONB NOT NULL,
			paths JSONB NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure analysis_runs schema: %w", err)
	}
	return nil
}

// SaveRun stores a run, replacing any previous row with the same id.
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, run *sem.AnalysisRun) error {
	outerJSON, err := json.Marshal(encodeOuter(run.OuterModel))
	if err != nil {
		return fmt.Errorf("failed to encode outer model results: %w", err)
	}
	pathsJSON, err := json.Marshal(encodePaths(run.Paths))
	if err != nil {
		return fmt.Errorf("failed to encode path results: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (id, created_at, method, sites, outer_model, paths)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			created_at = EXCLUDED.created_at,
			method = EXCLUDED.method,
			sites = EXCLUDED.sites,
			outer_model = EXCLUDED.outer_model,
			paths = EXCLUDED.paths`,
		run.ID.String(), run.CreatedAt, string(run.Method), run.Sites, outerJSON, pathsJSON)
	return err
}

// GetRun retrieves a run by id. A missing row yields ports.ErrRunNotFound.
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*sem.AnalysisRun, error) {
	var (
		createdAt time.Time
		method    string
		sites     int
		outerJSON []byte
		pathsJSON []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT created_at, method, sites, outer_model, paths
		FROM analysis_runs
		WHERE id = $1`, id.String()).
		Scan(&createdAt, &method, &sites, &outerJSON, &pathsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ports.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return decodeRun(id, createdAt, method, sites, outerJSON, pathsJSON)
}

// ListRuns returns the most recent runs, newest first.
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]sem.AnalysisRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, method, sites, outer_model, paths
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []sem.AnalysisRun
	for rows.Next() {
		var (
			idStr     string
			createdAt time.Time
			method    string
			sites     int
			outerJSON []byte
			pathsJSON []byte
		)
		if err := rows.Scan(&idStr, &createdAt, &method, &sites, &outerJSON, &pathsJSON); err != nil {
			return nil, err
		}
		run, err := decodeRun(core.RunID(idStr), createdAt, method, sites, outerJSON, pathsJSON)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Storage shapes: NaN is not representable in JSON, so floats that may be
// undefined become pointers (nil = NULL) on the way in and NaN on the way out.

type storedOuterRow struct {
	Construct    string              `json:"construct"`
	Name         string              `json:"name"`
	Indicators   []string            `json:"indicators"`
	Observations int                 `json:"n_obs"`
	Alpha        *float64            `json:"alpha"`
	CR           *float64            `json:"cr"`
	AVE          *float64            `json:"ave"`
	Loadings     map[string]*float64 `json:"loadings"`
}

type storedPathRow struct {
	Target       string             `json:"target"`
	Predictors   []string           `json:"predictors"`
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
	R2           *float64           `json:"r2"`
	Observations int                `json:"n_obs"`
}

func encodeOuter(results []sem.OuterModelResult) []storedOuterRow {
	out := make([]storedOuterRow, len(results))
	for i, r := range results {
		loadings := make(map[string]*float64, len(r.Loadings))
		for k, v := range r.Loadings {
			loadings[k] = nullable(v)
		}
		out[i] = storedOuterRow{
			Construct:    r.Construct,
			Name:         r.Name,
			Indicators:   r.Indicators,
			Observations: r.Observations,
			Alpha:        nullable(r.Alpha),
			CR:           nullable(r.CR),
			AVE:          nullable(r.AVE),
			Loadings:     loadings,
		}
	}
	return out
}

func encodePaths(results []sem.PathResult) []storedPathRow {
	out := make([]storedPathRow, len(results))
	for i, r := range results {
		out[i] = storedPathRow{
			Target:       r.Target,
			Predictors:   r.Predictors,
			Intercept:    r.Intercept,
			Coefficients: r.Coefficients,
			R2:           nullable(r.R2),
			Observations: r.Observations,
		}
	}
	return out
}

func decodeRun(id core.RunID, createdAt time.Time, method string, sites int, outerJSON, pathsJSON []byte) (*sem.AnalysisRun, error) {
	var storedOuter []storedOuterRow
	if err := json.Unmarshal(outerJSON, &storedOuter); err != nil {
		return nil, fmt.Errorf("failed to decode outer model results: %w", err)
	}
	var storedPaths []storedPathRow
	if err := json.Unmarshal(pathsJSON, &storedPaths); err != nil {
		return nil, fmt.Errorf("failed to decode path results: %w", err)
	}

	outer := make([]sem.OuterModelResult, len(storedOuter))
	for i, r := range storedOuter {
		loadings := make(map[string]float64, len(r.Loadings))
		for k, v := range r.Loadings {
			loadings[k] = deref(v)
		}
		outer[i] = sem.OuterModelResult{
			Construct:    r.Construct,
			Name:         r.Name,
			Indicators:   r.Indicators,
			Observations: r.Observations,
			Alpha:        deref(r.Alpha),
			CR:           deref(r.CR),
			AVE:          deref(r.AVE),
			Loadings:     loadings,
		}
	}
	paths := make([]sem.PathResult, len(storedPaths))
	for i, r := range storedPaths {
		paths[i] = sem.PathResult{
			Target:       r.Target,
			Predictors:   r.Predictors,
			Intercept:    r.Intercept,
			Coefficients: r.Coefficients,
			R2:           deref(r.R2),
			Observations: r.Observations,
		}
	}

	return &sem.AnalysisRun{
		ID:         id,
		CreatedAt:  createdAt,
		Method:     sem.Method(method),
		Sites:      sites,
		OuterModel: outer,
		Paths:      paths,
	}, nil
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func deref(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
