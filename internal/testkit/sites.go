// Package testkit generates plausible synthetic datasets for exercising the
// pipeline without real survey or KPI data. Generation is pure simulation;
// a fixed seed reproduces the same tables bit for bit.
package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"gosem/domain/table"
)

// SiteGeneratorConfig configures the synthetic site-level generator.
type SiteGeneratorConfig struct {
	Sites int   `json:"sites"`
	Seed  int64 `json:"seed"`
}

// DefaultSiteConfig returns sensible defaults for site generation.
func DefaultSiteConfig() SiteGeneratorConfig {
	return SiteGeneratorConfig{Sites: 100, Seed: 42}
}

// SiteGenerator produces a synthetic site-level dataset with construct
// scores, objective KPIs, and the two composite indices, driven by a simple
// SEM-inspired generative process: shared latent factors feed the GSCM
// constructs, constructs feed mediators, mediators feed outcomes and KPIs.
type SiteGenerator struct {
	config SiteGeneratorConfig
	rng    *rand.Rand
}

// NewSiteGenerator creates a generator with the given configuration.
func NewSiteGenerator(config SiteGeneratorConfig) *SiteGenerator {
	return &SiteGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the synthetic site-level table: one row per site with
// construct columns (Likert 1-5 scale), KPI columns, and OE_HARD /
// SAFETY_PERF index columns.
func (g *SiteGenerator) Generate() *table.Table {
	n := g.config.Sites

	// Shared latent drivers.
	zGSCM := g.normal(n, 1.0)
	zPressure := g.normal(n, 1.0)
	zMgmt := g.normal(n, 1.0)
	zSafetyCulture := g.normal(n, 1.0)

	// GSCM constructs: correlated through the shared factors but not identical.
	gpurZ := combine(n, term{0.6, zGSCM}, term{0.3, zPressure}, g.noise(n, 0.4))
	gopsZ := combine(n, term{0.7, zGSCM}, term{0.2, zMgmt}, g.noise(n, 0.4))
	glogZ := combine(n, term{0.6, zGSCM}, term{0.3, zPressure}, g.noise(n, 0.5))
	gtrnZ := combine(n, term{0.5, zGSCM}, term{0.3, zMgmt}, term{0.3, zSafetyCulture}, g.noise(n, 0.4))
	gcolZ := combine(n, term{0.6, zGSCM}, term{0.3, zPressure}, g.noise(n, 0.4))

	// Mediators.
	supintZ := combine(n, term{0.5, gpurZ}, term{0.3, gcolZ}, g.noise(n, 0.4))
	maintZ := combine(n, term{0.5, gopsZ}, term{0.3, gtrnZ}, term{0.2, zMgmt}, g.noise(n, 0.4))
	compZ := combine(n, term{0.6, gtrnZ}, term{0.2, zMgmt}, g.noise(n, 0.4))

	// Perceived outcomes.
	oeLatent := combine(n, term{0.5, maintZ}, term{0.3, compZ}, term{0.2, supintZ}, g.noise(n, 0.3))
	epLatent := combine(n, term{0.6, oeLatent}, term{0.2, zPressure}, g.noise(n, 0.3))

	safetyLatent := combine(n,
		term{0.4, maintZ}, term{0.4, compZ}, term{0.2, gtrnZ}, term{0.3, zSafetyCulture},
		g.noise(n, 0.3))

	oeNorm := zscores(oeLatent)
	safNorm := zscores(safetyLatent)
	greenFactor := zscores(combine(n, term{1, gpurZ}, term{1, gopsZ}, term{1, glogZ}))
	supplyMaint := zscores(combine(n, term{1, supintZ}, term{1, maintZ}))

	// Objective KPIs.
	uptime := g.kpi(n, 85, term{7, oeNorm}, 2.0, 70, 99)
	downtime := g.kpi(n, 180, term{-35, oeNorm}, 10.0, 40, 260)
	tons := g.kpi(n, 260, term{45, oeNorm}, 15.0, 150, 420)
	rework := g.kpi(n, 3.0, term{-0.5, oeNorm}, 0.3, 0.2, 6.0, term{-0.4, zscores(maintZ)})
	energy := g.kpi(n, 52, term{-3.0, greenFactor}, 1.5, 38, 60, term{-1.5, oeNorm})
	water := g.kpi(n, 1.0, term{-0.12, greenFactor}, 0.05, 0.4, 1.5, term{-0.08, oeNorm})
	costPerTon := g.kpi(n, 640, term{-45, oeNorm}, 20.0, 450, 800, term{-20, supplyMaint})
	maintCost := g.kpi(n, 160, term{-25, supplyMaint}, 10.0, 80, 260)
	onTime := g.kpi(n, 85, term{6, supplyMaint}, 3.0, 60, 99)
	supplierDefect := g.kpi(n, 3.0, term{-0.6, greenFactor}, 0.4, 0.1, 8.0, term{-0.4, supplyMaint})

	// Safety KPIs.
	ltifr := g.kpi(n, 0.6, term{-0.12, safNorm}, 0.05, 0.05, 1.2)
	trifr := g.kpi(n, 1.0, term{-0.18, safNorm}, 0.08, 0.1, 2.0)
	sifr := g.kpi(n, 0.4, term{-0.10, safNorm}, 0.04, 0.02, 0.9)
	fifr := g.kpi(n, 0.08, term{-0.03, safNorm}, 0.02, 0.0, 0.2)
	audits := g.kpi(n, 80, term{8, safNorm}, 4.0, 50, 100)
	competent := g.kpi(n, 75, term{7, safNorm}, 4.0, 50, 100)
	stoppages := g.kpi(n, 30, term{-5, safNorm}, 3.0, 5, 60)

	// Composite indices over the generated KPI layer.
	oeHard := rowMeans(
		zscores(uptime), zscores(tons), zscores(onTime),
		negated(zscores(downtime)), negated(zscores(rework)),
		negated(zscores(energy)), negated(zscores(water)),
		negated(zscores(costPerTon)), negated(zscores(maintCost)),
	)
	safetyPerf := rowMeans(
		zscores(audits), zscores(competent),
		negated(zscores(ltifr)), negated(zscores(trifr)),
		negated(zscores(sifr)), negated(zscores(fifr)),
		negated(zscores(stoppages)), negated(zscores(supplierDefect)),
	)

	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("SYN_%03d", i+1)
	}
	t := table.New("site_id", ids)

	addAll(t, []namedColumn{
		{"GPUR", likertFromZ(gpurZ)},
		{"GOPS", likertFromZ(gopsZ)},
		{"GLOG", likertFromZ(glogZ)},
		{"GTRN", likertFromZ(gtrnZ)},
		{"GCOL", likertFromZ(gcolZ)},
		{"SUPINT", likertFromZ(supintZ)},
		{"MAINT", likertFromZ(maintZ)},
		{"COMP", likertFromZ(compZ)},
		{"OE", likertFromZ(oeLatent)},
		{"EP", likertFromZ(epLatent)},
		{"uptime_percent", uptime},
		{"unplanned_downtime_hours", downtime},
		{"tons_per_hour", tons},
		{"rework_rate_percent", rework},
		{"energy_kwh_per_ton", energy},
		{"water_m3_per_ton", water},
		{"cost_per_ton", costPerTon},
		{"maintenance_cost_per_ton", maintCost},
		{"on_time_delivery_percent", onTime},
		{"supplier_defect_percent", supplierDefect},
		{"ltifr", ltifr},
		{"trifr", trifr},
		{"sifr", sifr},
		{"fifr", fifr},
		{"safety_audits_passed_percent", audits},
		{"employees_competent_percent", competent},
		{"frontline_stoppages_percent", stoppages},
		{"OE_HARD", oeHard},
		{"SAFETY_PERF", safetyPerf},
	})
	return t
}

type namedColumn struct {
	name   string
	values []float64
}

func addAll(t *table.Table, cols []namedColumn) {
	for _, c := range cols {
		// Generated columns are unique and length-matched; errors cannot occur.
		_ = t.AddColumn(c.name, c.values)
	}
}

// term is one weighted component of a latent combination.
type term struct {
	weight float64
	values []float64
}

func combine(n int, terms ...term) []float64 {
	out := make([]float64, n)
	for _, t := range terms {
		for i := range out {
			out[i] += t.weight * t.values[i]
		}
	}
	return out
}

func (g *SiteGenerator) normal(n int, sigma float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = g.rng.NormFloat64() * sigma
	}
	return out
}

func (g *SiteGenerator) noise(n int, sigma float64) term {
	return term{1.0, g.normal(n, sigma)}
}

// kpi builds base + effects + N(0, noise), clipped to [lo, hi].
func (g *SiteGenerator) kpi(n int, base float64, effect term, noise, lo, hi float64, extra ...term) []float64 {
	out := make([]float64, n)
	for i := range out {
		v := base + effect.weight*effect.values[i]
		for _, t := range extra {
			v += t.weight * t.values[i]
		}
		v += g.rng.NormFloat64() * noise
		out[i] = clip(v, lo, hi)
	}
	return out
}

// likertFromZ maps latent z-scores to a 1-5 Likert-style score.
func likertFromZ(z []float64) []float64 {
	out := make([]float64, len(z))
	for i, v := range z {
		out[i] = clip(3.5+0.7*v, 1.0, 5.0)
	}
	return out
}

func clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// zscores standardizes a slice with the population standard deviation;
// constant input maps to zeros.
func zscores(vals []float64) []float64 {
	n := float64(len(vals))
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= n
	variance := 0.0
	for _, v := range vals {
		variance += (v - mean) * (v - mean)
	}
	variance /= n
	out := make([]float64, len(vals))
	if variance == 0 {
		return out
	}
	std := math.Sqrt(variance)
	for i, v := range vals {
		out[i] = (v - mean) / std
	}
	return out
}

func negated(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = -v
	}
	return out
}

func rowMeans(cols ...[]float64) []float64 {
	out := make([]float64, len(cols[0]))
	for i := range out {
		sum := 0.0
		for _, c := range cols {
			sum += c[i]
		}
		out[i] = sum / float64(len(cols))
	}
	return out
}
