package scores

import (
	"math"

	"github.com/montanaflynn/stats"

	"gosem/domain/core"
	"gosem/domain/model"
	"gosem/domain/sem"
	"gosem/domain/table"
)

// KPIIndexBuilder aggregates raw KPI records to site level and computes the
// formative composite indices (operational efficiency, safety performance)
// from standardized KPI components.
type KPIIndexBuilder struct {
	spec *model.Spec
}

// NewKPIIndexBuilder creates a builder bound to a model configuration.
func NewKPIIndexBuilder(spec *model.Spec) *KPIIndexBuilder {
	return &KPIIndexBuilder{spec: spec}
}

// ValidateKPIColumns checks that the KPI table carries the site identifier
// and every KPI referenced by either index, reporting all absences in a
// single SchemaError.
func (b *KPIIndexBuilder) ValidateKPIColumns(kpis *table.Table) error {
	var missing []string
	if kpis.Key() != SiteIDColumn {
		missing = append(missing, SiteIDColumn)
	}
	missing = append(missing, kpis.MissingColumns(b.spec.RequiredKPIs())...)
	if len(missing) > 0 {
		return core.NewSchemaError(missing)
	}
	return nil
}

// AggregateKPIsPerSite collapses KPI records to one row per site, averaging
// every numeric column. Multiple time-period rows per site are handled
// transparently.
func (b *KPIIndexBuilder) AggregateKPIsPerSite(kpis *table.Table) (*table.Table, error) {
	if err := b.ValidateKPIColumns(kpis); err != nil {
		return nil, err
	}
	return kpis.GroupMean(), nil
}

// ComputeIndex computes one composite index over an aggregated site table.
// Each high-is-better KPI enters as its cross-site z-score, each
// low-is-better KPI as the negated z-score. Under MethodSimple the index is
// the unweighted row mean of the components; under MethodWeighted it is the
// weighted sum normalized by the total weight actually applied. A total
// applied weight of zero falls back to the raw weighted sum instead of
// failing (degenerate-input tolerance carried over from the reference
// behavior).
func (b *KPIIndexBuilder) ComputeIndex(siteTable *table.Table, idx model.IndexSpec, method sem.Method) ([]float64, error) {
	if missing := siteTable.MissingColumns(idx.Components()); len(missing) > 0 {
		return nil, core.NewSchemaError(missing)
	}

	n := siteTable.Len()
	componentOrder := idx.Components()
	components := make(map[string][]float64, len(componentOrder))
	for _, kpi := range idx.HighIsBetter {
		col, _ := siteTable.Column(kpi)
		components[kpi] = standardize(col)
	}
	for _, kpi := range idx.LowIsBetter {
		col, _ := siteTable.Column(kpi)
		components[kpi] = negate(standardize(col))
	}

	switch method {
	case sem.MethodSimple:
		out := make([]float64, n)
		for i := range out {
			sum, k := 0.0, 0
			for _, kpi := range componentOrder {
				if v := components[kpi][i]; !math.IsNaN(v) {
					sum += v
					k++
				}
			}
			if k == 0 {
				out[i] = math.NaN()
			} else {
				out[i] = sum / float64(k)
			}
		}
		return out, nil

	case sem.MethodWeighted:
		out := make([]float64, n)
		totalWeight := 0.0
		for _, kpi := range componentOrder {
			w := idx.Weights[kpi]
			if w == 0 {
				continue
			}
			for i := range out {
				out[i] += w * components[kpi][i]
			}
			totalWeight += w
		}
		if totalWeight != 0 {
			for i := range out {
				out[i] /= totalWeight
			}
		}
		return out, nil

	default:
		return nil, core.NewUnknownMethodError(string(method))
	}
}

// BuildSiteKPITable aggregates the raw KPI table and appends the two derived
// index columns (OE_HARD, SAFETY_PERF).
func (b *KPIIndexBuilder) BuildSiteKPITable(kpis *table.Table, method sem.Method) (*table.Table, error) {
	siteKPIs, err := b.AggregateKPIsPerSite(kpis)
	if err != nil {
		return nil, err
	}
	for _, idx := range b.spec.Indices() {
		values, err := b.ComputeIndex(siteKPIs, idx, method)
		if err != nil {
			return nil, err
		}
		if err := siteKPIs.AddColumn(idx.Name, values); err != nil {
			return nil, err
		}
	}
	return siteKPIs, nil
}

// standardize maps a column to cross-site z-scores using the population
// standard deviation over its finite values. A zero or undefined deviation
// maps the whole column to zeros so degenerate KPIs never divide by zero.
// Missing cells stay missing when the deviation is positive.
func standardize(col []float64) []float64 {
	finite := make([]float64, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	out := make([]float64, len(col))
	if len(finite) == 0 {
		return out
	}
	mean, err := stats.Mean(finite)
	if err != nil {
		return out
	}
	std, err := stats.StandardDeviationPopulation(finite)
	if err != nil || std == 0 || math.IsNaN(std) {
		return out
	}
	for i, v := range col {
		if math.IsNaN(v) {
			out[i] = math.NaN()
		} else {
			out[i] = (v - mean) / std
		}
	}
	return out
}

func negate(col []float64) []float64 {
	out := make([]float64, len(col))
	for i, v := range col {
		out[i] = -v
	}
	return out
}
