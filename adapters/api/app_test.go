package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosem/adapters/csvio"
	"gosem/app"
	"gosem/domain/core"
	"gosem/domain/model"
	"gosem/domain/sem"
	"gosem/internal/testkit"
	"gosem/ports"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	spec := model.Default()
	return NewApp(spec, app.NewPipeline(spec, nil), nil, Config{})
}

// stubRunRepository keeps runs in memory for handler tests.
type stubRunRepository struct {
	runs map[core.RunID]*sem.AnalysisRun
}

func newStubRunRepository() *stubRunRepository {
	return &stubRunRepository{runs: make(map[core.RunID]*sem.AnalysisRun)}
}

func (s *stubRunRepository) SaveRun(ctx context.Context, run *sem.AnalysisRun) error {
	s.runs[run.ID] = run
	return nil
}

func (s *stubRunRepository) GetRun(ctx context.Context, id core.RunID) (*sem.AnalysisRun, error) {
	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrRunNotFound, id)
	}
	return run, nil
}

func (s *stubRunRepository) ListRuns(ctx context.Context, limit int) ([]sem.AnalysisRun, error) {
	out := make([]sem.AnalysisRun, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, *r)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// writeInputFiles generates a matched synthetic survey and KPI CSV pair.
func writeInputFiles(t *testing.T, dir string) (surveyPath, kpiPath string) {
	t.Helper()
	spec := model.Default()

	sites := testkit.NewSiteGenerator(testkit.SiteGeneratorConfig{Sites: 15, Seed: 42}).Generate()
	survey, err := testkit.NewSurveyGenerator(spec, testkit.DefaultSurveyConfig()).Generate(sites)
	require.NoError(t, err)
	kpis, err := sites.Select(spec.RequiredKPIs()...)
	require.NoError(t, err)

	surveyPath = filepath.Join(dir, "survey.csv")
	kpiPath = filepath.Join(dir, "kpis.csv")
	require.NoError(t, csvio.WriteTable(survey, surveyPath))
	require.NoError(t, csvio.WriteTable(kpis, kpiPath))
	return surveyPath, kpiPath
}

func doRequest(a *App, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(newTestApp(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetModel(t *testing.T) {
	rec := doRequest(newTestApp(t), http.MethodGet, "/api/model", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Constructs []model.Construct `json:"constructs"`
		Paths      []model.Path      `json:"paths"`
		PathSpecs  []model.PathSpec  `json:"path_specs"`
		Indices    []model.IndexSpec `json:"indices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	assert.Len(t, payload.Constructs, 10)
	assert.Equal(t, "GPUR", payload.Constructs[0].Code)
	assert.Len(t, payload.Paths, 13)
	assert.Len(t, payload.PathSpecs, 4)
	assert.Len(t, payload.Indices, 2)
}

func TestCreateRun(t *testing.T) {
	a := newTestApp(t)
	surveyPath, kpiPath := writeInputFiles(t, t.TempDir())

	body, _ := json.Marshal(map[string]string{
		"survey_path": surveyPath,
		"kpi_path":    kpiPath,
		"method":      "weighted",
	})
	rec := doRequest(a, http.MethodPost, "/api/runs", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var run runResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "weighted", run.Method)
	assert.Equal(t, 15, run.Sites)
	assert.Len(t, run.OuterModel, 10)
	assert.Len(t, run.Paths, 4)
}

func TestCreateRun_DefaultsToSimpleMethod(t *testing.T) {
	a := newTestApp(t)
	surveyPath, kpiPath := writeInputFiles(t, t.TempDir())

	body, _ := json.Marshal(map[string]string{
		"survey_path": surveyPath,
		"kpi_path":    kpiPath,
	})
	rec := doRequest(a, http.MethodPost, "/api/runs", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var run runResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, "simple", run.Method)
}

func TestCreateRun_UsesConfiguredDefaults(t *testing.T) {
	dir := t.TempDir()
	surveyPath, kpiPath := writeInputFiles(t, dir)
	outDir := filepath.Join(dir, "out")

	spec := model.Default()
	a := NewApp(spec, app.NewPipeline(spec, nil), nil, Config{
		SurveyFile: surveyPath,
		KPIFile:    kpiPath,
		OutputDir:  outDir,
		Method:     sem.MethodWeighted,
	})

	rec := doRequest(a, http.MethodPost, "/api/runs", []byte("{}"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var run runResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, "weighted", run.Method)
	assert.Equal(t, 15, run.Sites)

	for _, name := range []string{"site_level_merged.csv", "outer_model.csv"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("Expected exported %s: %v", name, err)
		}
	}
}

func TestCreateRun_BadRequests(t *testing.T) {
	a := newTestApp(t)

	rec := doRequest(a, http.MethodPost, "/api/runs", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, _ := json.Marshal(map[string]string{"survey_path": "only-one.csv"})
	rec = doRequest(a, http.MethodPost, "/api/runs", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, _ = json.Marshal(map[string]string{
		"survey_path": "s.csv", "kpi_path": "k.csv", "method": "median",
	})
	rec = doRequest(a, http.MethodPost, "/api/runs", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRun_MissingFileIsUnprocessable(t *testing.T) {
	a := newTestApp(t)

	body, _ := json.Marshal(map[string]string{
		"survey_path": "/nonexistent/survey.csv",
		"kpi_path":    "/nonexistent/kpis.csv",
	})
	rec := doRequest(a, http.MethodPost, "/api/runs", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateRun_MissingKPIColumnIsUnprocessable(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()
	surveyPath, _ := writeInputFiles(t, dir)

	// KPI table missing every safety column.
	spec := model.Default()
	sites := testkit.NewSiteGenerator(testkit.SiteGeneratorConfig{Sites: 15, Seed: 42}).Generate()
	partial, err := sites.Select(spec.Indices()[0].Components()...)
	require.NoError(t, err)
	kpiPath := filepath.Join(dir, "partial_kpis.csv")
	require.NoError(t, csvio.WriteTable(partial, kpiPath))

	body, _ := json.Marshal(map[string]string{
		"survey_path": surveyPath,
		"kpi_path":    kpiPath,
	})
	rec := doRequest(a, http.MethodPost, "/api/runs", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "ltifr")
}

func TestRunEndpoints_WithoutRepository(t *testing.T) {
	a := newTestApp(t)

	rec := doRequest(a, http.MethodGet, "/api/runs", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = doRequest(a, http.MethodGet, "/api/runs/some-id", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestGetRun_WithRepository(t *testing.T) {
	spec := model.Default()
	repo := newStubRunRepository()
	a := NewApp(spec, app.NewPipeline(spec, repo), repo, Config{})

	stored := &sem.AnalysisRun{ID: core.NewRunID(), Method: sem.MethodSimple, Sites: 3}
	require.NoError(t, repo.SaveRun(context.Background(), stored))

	rec := doRequest(a, http.MethodGet, "/api/runs/"+stored.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var run runResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, stored.ID.String(), run.ID)

	rec = doRequest(a, http.MethodGet, "/api/runs/"+core.NewRunID().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRuns_HonorsConfiguredLimit(t *testing.T) {
	spec := model.Default()
	repo := newStubRunRepository()
	a := NewApp(spec, app.NewPipeline(spec, repo), repo, Config{RunHistoryLimit: 1})

	for i := 0; i < 3; i++ {
		run := &sem.AnalysisRun{ID: core.NewRunID(), Method: sem.MethodSimple, Sites: i}
		require.NoError(t, repo.SaveRun(context.Background(), run))
	}

	rec := doRequest(a, http.MethodGet, "/api/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []runResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	assert.Len(t, runs, 1)
}
