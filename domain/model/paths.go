package model

// Path is one hypothesized directed influence between two constructs.
// The full set forms a DAG over construct codes; the regression layer never
// walks the graph, it consumes explicit PathSpec entries instead.
type Path struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// PathSpec names one regression: target construct column regressed on an
// ordered list of predictor columns.
type PathSpec struct {
	Target     string   `json:"target"`
	Predictors []string `json:"predictors"`
}

// StructuralPaths returns the hypothesized construct-to-construct edges.
func (s *Spec) StructuralPaths() []Path {
	return s.paths
}

// DefaultPathSpecs returns the stock regression specifications, evaluated
// independently per target.
func (s *Spec) DefaultPathSpecs() []PathSpec {
	return s.pathSpecs
}

// DownstreamTargets returns all constructs the given construct points to.
func (s *Spec) DownstreamTargets(source string) []string {
	var targets []string
	for _, p := range s.paths {
		if p.Source == source {
			targets = append(targets, p.Target)
		}
	}
	return targets
}

// UpstreamSources returns all constructs that point into the given construct.
func (s *Spec) UpstreamSources(target string) []string {
	var sources []string
	for _, p := range s.paths {
		if p.Target == target {
			sources = append(sources, p.Source)
		}
	}
	return sources
}
