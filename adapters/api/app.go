// Package api exposes the analysis pipeline over HTTP: the model
// configuration, run submission, and stored run retrieval.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gosem/adapters/csvio"
	"gosem/app"
	"gosem/domain/core"
	"gosem/domain/model"
	"gosem/domain/sem"
	"gosem/domain/table"
	"gosem/internal/scores"
	"gosem/ports"
)

// App represents the HTTP application
type App struct {
	router   *chi.Mux
	spec     *model.Spec
	pipeline *app.Pipeline
	repo     ports.RunRepository // nil when persistence is disabled
	config   Config
}

// Config holds HTTP application configuration. SurveyFile, KPIFile, and
// Method fill in request fields the caller leaves empty; OutputDir, when
// set, makes every run export its merged dataset and outer-model CSVs.
type Config struct {
	Port            string
	SurveyFile      string
	KPIFile         string
	OutputDir       string
	Method          sem.Method
	RunHistoryLimit int
}

// NewApp creates the HTTP application around a pipeline.
func NewApp(spec *model.Spec, pipeline *app.Pipeline, repo ports.RunRepository, config Config) *App {
	a := &App{
		router:   chi.NewRouter(),
		spec:     spec,
		pipeline: pipeline,
		repo:     repo,
		config:   config,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// Start runs the HTTP server on the configured port, blocking until it exits.
func (a *App) Start() error {
	addr := ":" + a.config.Port
	log.Printf("[API] listening on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// Router returns the configured handler, for tests and embedding.
func (a *App) Router() http.Handler { return a.router }

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
}

func (a *App) setupRoutes() {
	a.router.Get("/health", a.handleHealth)
	a.router.Get("/api/model", a.handleModel)
	a.router.Post("/api/runs", a.handleCreateRun)
	a.router.Get("/api/runs", a.handleListRuns)
	a.router.Get("/api/runs/{id}", a.handleGetRun)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleModel returns the static model configuration: constructs in stable
// order, structural paths, default path specs, and index definitions.
func (a *App) handleModel(w http.ResponseWriter, r *http.Request) {
	constructs := make([]model.Construct, 0, len(a.spec.ConstructCodes()))
	for _, code := range a.spec.ConstructCodes() {
		c, err := a.spec.Construct(code)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		constructs = append(constructs, c)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"constructs": constructs,
		"paths":      a.spec.StructuralPaths(),
		"path_specs": a.spec.DefaultPathSpecs(),
		"indices":    a.spec.Indices(),
	})
}

type createRunRequest struct {
	SurveyPath string `json:"survey_path"`
	KPIPath    string `json:"kpi_path"`
	Method     string `json:"method"`
}

// handleCreateRun loads the referenced survey and KPI files, executes the
// pipeline, and returns the run. Fields missing from the request fall back
// to the configured defaults. Schema problems map to 422, bad requests
// to 400.
func (a *App) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.SurveyPath == "" {
		req.SurveyPath = a.config.SurveyFile
	}
	if req.KPIPath == "" {
		req.KPIPath = a.config.KPIFile
	}
	if req.SurveyPath == "" || req.KPIPath == "" {
		writeError(w, http.StatusBadRequest, "survey_path and kpi_path are required")
		return
	}
	if req.Method == "" {
		req.Method = string(a.config.Method)
	}
	if req.Method == "" {
		req.Method = string(sem.MethodSimple)
	}
	method, err := sem.ParseMethod(req.Method)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	survey, err := csvio.NewDataReader(req.SurveyPath).ReadTable(scores.SiteIDColumn)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "survey: "+err.Error())
		return
	}
	kpis, err := csvio.NewDataReader(req.KPIPath).ReadTable(scores.SiteIDColumn)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "kpis: "+err.Error())
		return
	}

	run, merged, err := a.pipeline.Run(r.Context(), survey, kpis, method)
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsSchemaError(err) || core.IsMissingColumnError(err) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	if err := a.exportRun(run, merged); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, runPayload(run))
}

// exportRun writes the merged site-level dataset and outer-model statistics
// to the configured output directory. A blank OutputDir disables the export.
func (a *App) exportRun(run *sem.AnalysisRun, merged *table.Table) error {
	if a.config.OutputDir == "" {
		return nil
	}
	if err := csvio.WriteTable(merged, filepath.Join(a.config.OutputDir, "site_level_merged.csv")); err != nil {
		return err
	}
	return csvio.WriteOuterModel(run.OuterModel, filepath.Join(a.config.OutputDir, "outer_model.csv"))
}

func (a *App) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if a.repo == nil {
		writeError(w, http.StatusNotImplemented, "run persistence is not configured")
		return
	}
	limit := a.config.RunHistoryLimit
	if limit <= 0 {
		limit = 50
	}
	runs, err := a.repo.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payloads := make([]*runResponse, len(runs))
	for i := range runs {
		payloads[i] = runPayload(&runs[i])
	}
	writeJSON(w, http.StatusOK, payloads)
}

func (a *App) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if a.repo == nil {
		writeError(w, http.StatusNotImplemented, "run persistence is not configured")
		return
	}
	id := core.RunID(chi.URLParam(r, "id"))
	run, err := a.repo.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runPayload(run))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
