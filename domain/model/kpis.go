package model

// Names of the two derived index columns appended to the site KPI table.
const (
	IndexOperational = "OE_HARD"
	IndexSafety      = "SAFETY_PERF"
)

// IndexSpec configures one formative composite index. HighIsBetter KPIs enter
// as standardized z-scores; LowIsBetter KPIs enter negated, so "better" is
// always positive. Weights apply only under the weighted combination method;
// KPIs absent from the map get weight 0 and are excluded.
type IndexSpec struct {
	Name         string             `json:"name"`
	HighIsBetter []string           `json:"high_is_better"`
	LowIsBetter  []string           `json:"low_is_better"`
	Weights      map[string]float64 `json:"weights"`
}

// Components returns the KPI names feeding the index, high-is-better first,
// in configuration order.
func (x IndexSpec) Components() []string {
	out := make([]string, 0, len(x.HighIsBetter)+len(x.LowIsBetter))
	out = append(out, x.HighIsBetter...)
	out = append(out, x.LowIsBetter...)
	return out
}

// Indices returns the configured composite index specs (operational, safety).
func (s *Spec) Indices() []IndexSpec {
	return s.indices
}

// RequiredKPIs returns every KPI column referenced by any index, in
// configuration order, deduplicated.
func (s *Spec) RequiredKPIs() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, idx := range s.indices {
		for _, kpi := range idx.Components() {
			if _, ok := seen[kpi]; ok {
				continue
			}
			seen[kpi] = struct{}{}
			out = append(out, kpi)
		}
	}
	return out
}
