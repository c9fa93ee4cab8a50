// Package sem defines the result records produced by the measurement and
// structural estimators. Undefined statistics are math.NaN markers, never
// zeros: a NaN means "the data does not support this statistic" while the
// surrounding computation carried on.
package sem

import (
	"time"

	"gosem/domain/core"
)

// Method selects how formative index components are combined.
type Method string

const (
	MethodSimple   Method = "simple"   // unweighted mean of standardized components
	MethodWeighted Method = "weighted" // weight-map combination, normalized by applied weight
)

// ParseMethod validates a method string.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodSimple, MethodWeighted:
		return Method(s), nil
	default:
		return "", core.NewUnknownMethodError(s)
	}
}

// OuterModelResult holds the reliability/validity statistics for one
// reflective construct.
type OuterModelResult struct {
	Construct    string             `json:"construct"`
	Name         string             `json:"name"`
	Indicators   []string           `json:"indicators"`    // indicator columns used, in config order
	Observations int                `json:"n_obs"`         // complete-case rows
	Alpha        float64            `json:"alpha"`         // Cronbach's alpha, NaN when undefined
	CR           float64            `json:"cr"`            // composite reliability, NaN when undefined
	AVE          float64            `json:"ave"`           // average variance extracted, NaN when undefined
	Loadings     map[string]float64 `json:"loadings"`      // indicator -> loading, NaN when undefined
}

// NIndicators returns the number of indicator columns used.
func (r OuterModelResult) NIndicators() int { return len(r.Indicators) }

// PathResult holds one fitted OLS path model.
type PathResult struct {
	Target       string             `json:"target"`
	Predictors   []string           `json:"predictors"` // design order
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
	R2           float64            `json:"r2"` // NaN when the target is constant
	Observations int                `json:"n_obs"`
}

// CorrelationMatrix is a square Pearson correlation table over the numeric
// columns of a site-level dataset.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"` // Values[i][j] = corr(Columns[i], Columns[j])
}

// AnalysisRun bundles the outputs of one full pipeline invocation.
type AnalysisRun struct {
	ID           core.RunID         `json:"id"`
	CreatedAt    time.Time          `json:"created_at"`
	Method       Method             `json:"method"`
	Sites        int                `json:"sites"` // rows in the merged site-level table
	OuterModel   []OuterModelResult `json:"outer_model"`
	Paths        []PathResult       `json:"paths"`
	Correlations *CorrelationMatrix `json:"correlations,omitempty"`
}
