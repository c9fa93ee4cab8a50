// Package app wires the score builders and estimators into the site-level
// analysis pipeline: survey and KPI tables in, one AnalysisRun out.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"gosem/domain/core"
	"gosem/domain/model"
	"gosem/domain/sem"
	"gosem/domain/table"
	"gosem/internal/analysis"
	"gosem/internal/scores"
	"gosem/ports"
)

// Pipeline orchestrates a full analysis run. Inputs are immutable tables;
// every step produces fresh values, so a pipeline value is safe to reuse
// across runs.
type Pipeline struct {
	spec       *model.Spec
	constructs *scores.ConstructScorer
	kpis       *scores.KPIIndexBuilder
	outer      *analysis.OuterModelEstimator
	paths      *analysis.PathEstimator
	repo       ports.RunRepository // optional; nil disables persistence
}

// NewPipeline creates a pipeline for the given model configuration. Pass a
// nil repository to skip persistence.
func NewPipeline(spec *model.Spec, repo ports.RunRepository) *Pipeline {
	return &Pipeline{
		spec:       spec,
		constructs: scores.NewConstructScorer(spec),
		kpis:       scores.NewKPIIndexBuilder(spec),
		outer:      analysis.NewOuterModelEstimator(spec),
		paths:      analysis.NewPathEstimator(),
		repo:       repo,
	}
}

// Run executes the full pipeline on respondent-level survey data and raw KPI
// data:
//
//  1. site-level construct scores (reflective),
//  2. site-level KPI table with composite indices (formative),
//  3. inner-join merge on the site identifier (sites absent from either
//     side are dropped),
//  4. outer-model statistics over the respondent-level indicators,
//  5. structural path regressions over the merged table,
//  6. correlation table over the merged table.
//
// It returns the run record and the merged site-level table. When a
// repository is wired the run is persisted before returning.
func (p *Pipeline) Run(ctx context.Context, survey, kpis *table.Table, method sem.Method) (*sem.AnalysisRun, *table.Table, error) {
	if _, err := sem.ParseMethod(string(method)); err != nil {
		return nil, nil, err
	}

	log.Printf("[Pipeline] computing site-level construct scores from %d survey rows", survey.Len())
	siteConstructs, err := p.constructs.BuildSiteConstructTable(survey)
	if err != nil {
		return nil, nil, fmt.Errorf("construct scores: %w", err)
	}

	log.Printf("[Pipeline] computing site-level KPI indices (method=%s) from %d KPI rows", method, kpis.Len())
	siteKPIs, err := p.kpis.BuildSiteKPITable(kpis, method)
	if err != nil {
		return nil, nil, fmt.Errorf("kpi indices: %w", err)
	}

	merged, err := siteConstructs.InnerJoin(siteKPIs)
	if err != nil {
		return nil, nil, fmt.Errorf("merge on %s: %w", scores.SiteIDColumn, err)
	}
	log.Printf("[Pipeline] merged site-level table: %d sites, %d columns", merged.Len(), len(merged.Columns()))

	outerResults, err := p.outer.Compute(ctx, survey, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("outer model: %w", err)
	}

	pathResults, err := p.paths.RunStructuralPaths(merged, p.spec.DefaultPathSpecs())
	if err != nil {
		return nil, nil, fmt.Errorf("structural paths: %w", err)
	}

	run := &sem.AnalysisRun{
		ID:           core.NewRunID(),
		CreatedAt:    time.Now().UTC(),
		Method:       method,
		Sites:        merged.Len(),
		OuterModel:   outerResults,
		Paths:        pathResults,
		Correlations: analysis.CorrelationTable(merged),
	}

	if p.repo != nil {
		if err := p.repo.SaveRun(ctx, run); err != nil {
			return nil, nil, fmt.Errorf("persist run %s: %w", run.ID, err)
		}
		log.Printf("[Pipeline] persisted run %s", run.ID)
	}
	return run, merged, nil
}

// AnalyzeSiteTable runs the structural estimators directly on an existing
// site-level table (e.g. a synthetic dataset), skipping the aggregation
// steps. The outer model needs respondent-level rows and is not computed.
func (p *Pipeline) AnalyzeSiteTable(ctx context.Context, sites *table.Table, specs []model.PathSpec) (*sem.AnalysisRun, error) {
	if specs == nil {
		specs = p.spec.DefaultPathSpecs()
	}
	pathResults, err := p.paths.RunStructuralPaths(sites, specs)
	if err != nil {
		return nil, fmt.Errorf("structural paths: %w", err)
	}

	run := &sem.AnalysisRun{
		ID:           core.NewRunID(),
		CreatedAt:    time.Now().UTC(),
		Method:       sem.MethodSimple,
		Sites:        sites.Len(),
		Paths:        pathResults,
		Correlations: analysis.CorrelationTable(sites),
	}
	if p.repo != nil {
		if err := p.repo.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("persist run %s: %w", run.ID, err)
		}
	}
	return run, nil
}
