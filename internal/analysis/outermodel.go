// Package analysis implements the measurement and structural estimators:
// reflective outer-model statistics per construct, OLS path regressions over
// the merged site-level table, and the correlation table.
package analysis

import (
	"context"
	"log"
	"math"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"gosem/domain/model"
	"gosem/domain/sem"
	"gosem/domain/table"
)

// OuterModelEstimator computes reliability/validity statistics (Cronbach's
// alpha, composite reliability, AVE) and indicator loadings for reflective
// constructs.
type OuterModelEstimator struct {
	spec *model.Spec
}

// NewOuterModelEstimator creates an estimator bound to a model configuration.
func NewOuterModelEstimator(spec *model.Spec) *OuterModelEstimator {
	return &OuterModelEstimator{spec: spec}
}

// Compute estimates outer-model statistics for the requested constructs
// (default: all configured, in stable order) over respondent- or site-level
// indicator data. Constructs are estimated concurrently; results keep request
// order.
//
// A construct with fewer than two indicator columns present, or with zero
// complete-case rows, is excluded from the output rather than failing:
// reflective internal-consistency statistics need at least two items and one
// observation. An unknown construct code fails the whole call.
func (e *OuterModelEstimator) Compute(ctx context.Context, tbl *table.Table, codes []string) ([]sem.OuterModelResult, error) {
	if codes == nil {
		codes = e.spec.ConstructCodes()
	}

	slots := make([]*sem.OuterModelResult, len(codes))
	g, ctx := errgroup.WithContext(ctx)
	for i, code := range codes {
		cfg, err := e.spec.Construct(code)
		if err != nil {
			return nil, err
		}
		i, cfg := i, cfg
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			slots[i] = e.estimateConstruct(cfg, tbl)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]sem.OuterModelResult, 0, len(codes))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, nil
}

// estimateConstruct returns nil when the construct is excluded (too few
// items or no complete observations).
func (e *OuterModelEstimator) estimateConstruct(cfg model.Construct, tbl *table.Table) *sem.OuterModelResult {
	var indicators []string
	for _, ind := range cfg.Indicators {
		if tbl.HasColumn(ind) {
			indicators = append(indicators, ind)
		}
	}
	if len(indicators) < 2 {
		log.Printf("[OuterModel] %s: %d indicator column(s) present, need 2+, excluding construct", cfg.Code, len(indicators))
		return nil
	}

	rows, err := tbl.CompleteRows(indicators)
	if err != nil {
		// Columns were checked above; CompleteRows cannot miss them.
		return nil
	}
	if len(rows) == 0 {
		log.Printf("[OuterModel] %s: no complete-case observations, excluding construct", cfg.Code)
		return nil
	}

	items := make([][]float64, len(indicators))
	for j, ind := range indicators {
		col, _ := tbl.Column(ind)
		vals := make([]float64, len(rows))
		for i, r := range rows {
			vals[i] = col[r]
		}
		items[j] = vals
	}

	alpha := cronbachAlpha(items)
	loadings, cr, ave := loadingsCRAVE(indicators, items)

	return &sem.OuterModelResult{
		Construct:    cfg.Code,
		Name:         cfg.Name,
		Indicators:   indicators,
		Observations: len(rows),
		Alpha:        alpha,
		CR:           cr,
		AVE:          ave,
		Loadings:     loadings,
	}
}

// cronbachAlpha computes k/(k-1) * (1 - sum(item variances)/variance(total
// score)) with sample (ddof=1) variances. NaN when k < 2 or the summed-score
// variance is zero or undefined.
func cronbachAlpha(items [][]float64) float64 {
	k := len(items)
	if k < 2 {
		return math.NaN()
	}
	n := len(items[0])

	sumItemVar := 0.0
	for _, item := range items {
		v, err := stats.SampleVariance(item)
		if err != nil {
			return math.NaN()
		}
		sumItemVar += v
	}

	total := make([]float64, n)
	for i := range total {
		for _, item := range items {
			total[i] += item[i]
		}
	}
	totalVar, err := stats.SampleVariance(total)
	if err != nil || totalVar == 0 || math.IsNaN(totalVar) {
		return math.NaN()
	}

	return (float64(k) / float64(k-1)) * (1.0 - sumItemVar/totalVar)
}

// loadingsCRAVE standardizes the items (population variance; zero-variance
// items become all zeros), forms the construct composite as the row mean of
// the standardized items, and derives loadings, composite reliability, and
// AVE. Indicators without a defined loading are skipped when combining into
// CR and AVE; if none is defined, both are NaN.
func loadingsCRAVE(indicators []string, items [][]float64) (map[string]float64, float64, float64) {
	k := len(items)
	n := len(items[0])

	standardized := make([][]float64, k)
	for j, item := range items {
		standardized[j] = zscoresPopulation(item)
	}

	composite := make([]float64, n)
	for i := range composite {
		sum := 0.0
		for j := range standardized {
			sum += standardized[j][i]
		}
		composite[i] = sum / float64(k)
	}
	compositeStd, _ := stats.StandardDeviationPopulation(composite)

	loadings := make(map[string]float64, k)
	var defined []float64
	for j, ind := range indicators {
		itemStd, _ := stats.StandardDeviationPopulation(standardized[j])
		if itemStd == 0 || compositeStd == 0 || math.IsNaN(compositeStd) {
			loadings[ind] = math.NaN()
			continue
		}
		r, err := stats.Pearson(standardized[j], composite)
		if err != nil || math.IsNaN(r) {
			loadings[ind] = math.NaN()
			continue
		}
		loadings[ind] = r
		defined = append(defined, r)
	}

	if len(defined) == 0 {
		return loadings, math.NaN(), math.NaN()
	}

	sumLambda, sumTheta, sumLambdaSq := 0.0, 0.0, 0.0
	for _, l := range defined {
		sumLambda += l
		sumLambdaSq += l * l
		sumTheta += 1.0 - l*l // error variance of a standardized indicator
	}

	num := sumLambda * sumLambda
	den := num + sumTheta
	cr := math.NaN()
	if den != 0 {
		cr = num / den
	}
	ave := sumLambdaSq / float64(len(defined))

	return loadings, cr, ave
}

// zscoresPopulation standardizes to zero mean, unit population variance.
// Zero-variance input maps to all zeros rather than dividing by zero.
func zscoresPopulation(vals []float64) []float64 {
	out := make([]float64, len(vals))
	mean, err := stats.Mean(vals)
	if err != nil {
		return out
	}
	std, err := stats.StandardDeviationPopulation(vals)
	if err != nil || std == 0 || math.IsNaN(std) {
		return out
	}
	for i, v := range vals {
		out[i] = (v - mean) / std
	}
	return out
}
