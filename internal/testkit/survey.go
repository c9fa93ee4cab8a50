package testkit

import (
	"math"
	"math/rand"

	"gosem/domain/model"
	"gosem/domain/table"
)

// SurveyGeneratorConfig configures the respondent-level survey generator.
type SurveyGeneratorConfig struct {
	RespondentsPerSite int     `json:"respondents_per_site"`
	LatentSigma        float64 `json:"latent_sigma"`    // respondent latent spread around the site score
	IndicatorSigma     float64 `json:"indicator_sigma"` // item noise around the respondent latent
	Seed               int64   `json:"seed"`
}

// DefaultSurveyConfig returns sensible defaults for survey generation.
func DefaultSurveyConfig() SurveyGeneratorConfig {
	return SurveyGeneratorConfig{
		RespondentsPerSite: 8,
		LatentSigma:        0.4,
		IndicatorSigma:     0.5,
		Seed:               42,
	}
}

// SurveyGenerator produces respondent-level Likert survey rows around
// site-level construct scores: items within a construct share a respondent
// latent, respondents at one site cluster around the site mean, and sites
// differ.
type SurveyGenerator struct {
	config SurveyGeneratorConfig
	spec   *model.Spec
	rng    *rand.Rand
}

// NewSurveyGenerator creates a generator for the given model configuration.
func NewSurveyGenerator(spec *model.Spec, config SurveyGeneratorConfig) *SurveyGenerator {
	return &SurveyGenerator{
		config: config,
		spec:   spec,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds a respondent-level survey table from a site-level table:
// RespondentsPerSite rows per site, one column per configured indicator.
// A site without a usable construct score falls back to a plausible
// mid-high Likert draw.
func (g *SurveyGenerator) Generate(sites *table.Table) (*table.Table, error) {
	perSite := g.config.RespondentsPerSite
	siteIDs := sites.IDs()

	ids := make([]string, 0, len(siteIDs)*perSite)
	for _, id := range siteIDs {
		for r := 0; r < perSite; r++ {
			ids = append(ids, id)
		}
	}
	out := table.New(sites.Key(), ids)

	indicators := g.spec.AllIndicators()
	columns := make(map[string][]float64, len(indicators))
	for _, ind := range indicators {
		columns[ind] = make([]float64, 0, len(ids))
	}

	for row := range siteIDs {
		for r := 0; r < perSite; r++ {
			for _, code := range g.spec.ConstructCodes() {
				cfg, err := g.spec.Construct(code)
				if err != nil {
					return nil, err
				}

				siteScore := math.NaN()
				if col, ok := sites.Column(code); ok {
					siteScore = col[row]
				}
				if math.IsNaN(siteScore) || math.IsInf(siteScore, 0) {
					// Plausible mid-high Likert region when the site has no score.
					siteScore = 2.5 + g.rng.Float64()*1.5
				}

				latent := clip(siteScore+g.rng.NormFloat64()*g.config.LatentSigma,
					model.LikertMin, model.LikertMax)
				for _, ind := range cfg.Indicators {
					columns[ind] = append(columns[ind], g.likertItem(latent))
				}
			}
		}
	}

	for _, ind := range indicators {
		if err := out.AddColumn(ind, columns[ind]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// likertItem draws one observed item around a respondent latent: add item
// noise, clamp to the scale, round to the nearest integer score.
func (g *SurveyGenerator) likertItem(latent float64) float64 {
	v := latent + g.rng.NormFloat64()*g.config.IndicatorSigma
	v = clip(v, model.LikertMin, model.LikertMax)
	return math.Round(v)
}
