// Package scores turns raw respondent and KPI tables into site-level score
// tables: reflective construct scores from Likert indicators, and formative
// composite indices from objective KPIs.
package scores

import (
	"log"
	"math"

	"gosem/domain/core"
	"gosem/domain/model"
	"gosem/domain/table"
)

// SiteIDColumn is the identifier column shared by every input table.
const SiteIDColumn = "site_id"

// ConstructScorer aggregates respondent-level indicator values to site level
// and composes them into one score per construct per site.
type ConstructScorer struct {
	spec *model.Spec
}

// NewConstructScorer creates a scorer bound to a model configuration.
func NewConstructScorer(spec *model.Spec) *ConstructScorer {
	return &ConstructScorer{spec: spec}
}

// ValidateSurveyColumns checks that the survey table carries the site
// identifier and every configured indicator column, reporting all absences
// in a single SchemaError.
func (s *ConstructScorer) ValidateSurveyColumns(survey *table.Table) error {
	var missing []string
	if survey.Key() != SiteIDColumn {
		missing = append(missing, SiteIDColumn)
	}
	missing = append(missing, survey.MissingColumns(s.spec.AllIndicators())...)
	if len(missing) > 0 {
		return core.NewSchemaError(missing)
	}
	return nil
}

// ComputeIndicatorMeans aggregates respondent rows to per-site indicator
// means. Missing responses are excluded per indicator, per site. The output
// has one row per distinct site and only the configured indicator columns.
func (s *ConstructScorer) ComputeIndicatorMeans(survey *table.Table) (*table.Table, error) {
	if err := s.ValidateSurveyColumns(survey); err != nil {
		return nil, err
	}
	grouped := survey.GroupMean()
	return grouped.Select(s.spec.AllIndicators()...)
}

// ComputeConstructScores composes site-level indicator means into one score
// per construct: the row-wise mean across the construct's available
// indicator columns. Constructs appear in the configured stable order
// (drivers, mediators, outcomes); a construct with none of its indicators
// present is skipped entirely rather than failing.
func (s *ConstructScorer) ComputeConstructScores(indicatorMeans *table.Table) (*table.Table, error) {
	out := table.New(indicatorMeans.Key(), indicatorMeans.IDs())

	for _, code := range s.spec.ConstructCodes() {
		cfg, err := s.spec.Construct(code)
		if err != nil {
			return nil, err
		}
		var present [][]float64
		for _, ind := range cfg.Indicators {
			if col, ok := indicatorMeans.Column(ind); ok {
				present = append(present, col)
			}
		}
		if len(present) == 0 {
			log.Printf("[ConstructScorer] no indicators present for %s, skipping construct", code)
			continue
		}

		score := make([]float64, indicatorMeans.Len())
		for i := range score {
			score[i] = rowMean(present, i)
		}
		if err := out.AddColumn(code, score); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// BuildSiteConstructTable validates the survey, aggregates indicators to
// site level, and computes construct scores in one call.
func (s *ConstructScorer) BuildSiteConstructTable(survey *table.Table) (*table.Table, error) {
	means, err := s.ComputeIndicatorMeans(survey)
	if err != nil {
		return nil, err
	}
	return s.ComputeConstructScores(means)
}

// rowMean is the mean of the finite values at row i across cols, NaN when
// every value is missing.
func rowMean(cols [][]float64, i int) float64 {
	sum, n := 0.0, 0
	for _, col := range cols {
		if v := col[i]; !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
