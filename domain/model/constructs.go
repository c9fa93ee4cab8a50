// Package model holds the static model configuration: latent constructs and
// their survey indicators, the structural paths between constructs, and the
// KPI lists used to build formative indices.
//
// The configuration is an immutable value constructed once (see Default) and
// passed into every component that needs it. Nothing here changes after load.
package model

import (
	"gosem/domain/core"
)

// Likert scale bounds for survey items.
const (
	LikertMin = 1
	LikertMax = 5
)

// Construct is the configuration for one latent construct: a short code,
// a display name, and the ordered survey indicator columns that measure it.
type Construct struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Indicators  []string `json:"indicators"`
}

// Spec is the full model configuration. All reads go through methods; the
// returned slices are shared and must be treated as read-only.
type Spec struct {
	constructs map[string]Construct
	order      []string
	paths      []Path
	pathSpecs  []PathSpec
	indices    []IndexSpec
	categories map[string][]string
	coreKPIs   []string
}

// ConstructCodes returns construct codes in a stable order:
// GSCM drivers, then mediators, then perceived outcomes.
func (s *Spec) ConstructCodes() []string {
	return s.order
}

// Construct returns the configuration for a single construct code.
func (s *Spec) Construct(code string) (Construct, error) {
	c, ok := s.constructs[code]
	if !ok {
		return Construct{}, core.NewUnknownConstructError(code)
	}
	return c, nil
}

// AllIndicators returns a flat list of every indicator column name, in
// construct order.
func (s *Spec) AllIndicators() []string {
	var cols []string
	for _, code := range s.order {
		cols = append(cols, s.constructs[code].Indicators...)
	}
	return cols
}

// CoreKPIs returns the KPI columns expected for a site in version 1.
func (s *Spec) CoreKPIs() []string {
	return s.coreKPIs
}

// KPIsByCategory returns the KPI names for a reporting category
// (operational, environmental, cost, supply_chain, safety).
func (s *Spec) KPIsByCategory(category string) []string {
	return s.categories[category]
}

func newSpec(
	constructs []Construct,
	paths []Path,
	pathSpecs []PathSpec,
	indices []IndexSpec,
	categories map[string][]string,
	coreKPIs []string,
) *Spec {
	byCode := make(map[string]Construct, len(constructs))
	order := make([]string, 0, len(constructs))
	for _, c := range constructs {
		byCode[c.Code] = c
		order = append(order, c.Code)
	}
	return &Spec{
		constructs: byCode,
		order:      order,
		paths:      paths,
		pathSpecs:  pathSpecs,
		indices:    indices,
		categories: categories,
		coreKPIs:   coreKPIs,
	}
}

// Default returns the stock GSCM mining model: ten constructs across three
// layers, thirteen structural paths, and the OE_HARD / SAFETY_PERF index
// definitions.
func Default() *Spec {
	constructs := []Construct{
		// GSCM dimensions
		{
			Code: "GPUR", Name: "Green Purchasing",
			Description: "Extent to which the company considers environmental criteria in supplier selection, monitoring and certification.",
			Indicators:  []string{"GPUR_1", "GPUR_2", "GPUR_3", "GPUR_4"},
		},
		{
			Code: "GOPS", Name: "Green Operations",
			Description: "Degree to which production and processing operations are environmentally responsible and resource-efficient.",
			Indicators:  []string{"GOPS_1", "GOPS_2", "GOPS_3", "GOPS_4"},
		},
		{
			Code: "GLOG", Name: "Green Logistics",
			Description: "How green and efficient logistics and transport activities are.",
			Indicators:  []string{"GLOG_1", "GLOG_2", "GLOG_3"},
		},
		{
			Code: "GTRN", Name: "Green Training & Awareness",
			Description: "Quality and frequency of environmental and safety-related training and awareness.",
			Indicators:  []string{"GTRN_1", "GTRN_2", "GTRN_3"},
		},
		{
			Code: "GCOL", Name: "Green Collaboration",
			Description: "Extent of collaboration with suppliers and customers on environmental improvement initiatives.",
			Indicators:  []string{"GCOL_1", "GCOL_2", "GCOL_3"},
		},

		// Mediators
		{
			Code: "SUPINT", Name: "Supplier Integration",
			Description: "Degree of integration and information sharing with key suppliers.",
			Indicators:  []string{"SUPINT_1", "SUPINT_2", "SUPINT_3"},
		},
		{
			Code: "MAINT", Name: "Maintenance Quality",
			Description: "Robustness and effectiveness of the maintenance system.",
			Indicators:  []string{"MAINT_1", "MAINT_2", "MAINT_3"},
		},
		{
			Code: "COMP", Name: "Employee Competence",
			Description: "Skill level, training and behavioural reliability of employees in operations.",
			Indicators:  []string{"COMP_1", "COMP_2", "COMP_3"},
		},

		// Perceived outcomes
		{
			Code: "OE", Name: "Perceived Operational Efficiency",
			Description: "Subjective perception of how efficiently operations run (downtime, resource use, smoothness, cost).",
			Indicators:  []string{"OE_1", "OE_2", "OE_3", "OE_4", "OE_5"},
		},
		{
			Code: "EP", Name: "Perceived Enterprise Performance",
			Description: "Subjective perception of overall business performance and competitiveness.",
			Indicators:  []string{"EP_1", "EP_2", "EP_3", "EP_4", "EP_5"},
		},
	}

	paths := []Path{
		// GSCM -> mediators
		{Source: "GPUR", Target: "SUPINT"},
		{Source: "GPUR", Target: "MAINT"},
		{Source: "GOPS", Target: "MAINT"},
		{Source: "GOPS", Target: "COMP"},
		{Source: "GLOG", Target: "SUPINT"},
		{Source: "GTRN", Target: "COMP"},
		{Source: "GTRN", Target: "MAINT"},
		{Source: "GCOL", Target: "SUPINT"},
		{Source: "GCOL", Target: "GOPS"},

		// Mediators -> OE
		{Source: "SUPINT", Target: "OE"},
		{Source: "MAINT", Target: "OE"},
		{Source: "COMP", Target: "OE"},

		// OE -> EP
		{Source: "OE", Target: "EP"},
	}

	pathSpecs := []PathSpec{
		{Target: "OE", Predictors: []string{"MAINT", "COMP", "SUPINT"}},
		{Target: "EP", Predictors: []string{"OE"}},
		{Target: IndexOperational, Predictors: []string{"MAINT", "SUPINT", "COMP", "GPUR", "GOPS", "GLOG", "GTRN", "GCOL"}},
		{Target: IndexSafety, Predictors: []string{"GTRN", "MAINT", "COMP"}},
	}

	indices := []IndexSpec{
		{
			Name:         IndexOperational,
			HighIsBetter: []string{"uptime_percent", "tons_per_hour"},
			LowIsBetter: []string{
				"cost_per_ton",
				"rework_rate_percent",
				"energy_kwh_per_ton",
				"water_m3_per_ton",
				"maintenance_cost_per_ton",
			},
			Weights: map[string]float64{
				"uptime_percent":           0.30,
				"tons_per_hour":            0.30,
				"cost_per_ton":             0.20,
				"energy_kwh_per_ton":       0.10,
				"rework_rate_percent":      0.05,
				"maintenance_cost_per_ton": 0.05,
				// water_m3_per_ton intentionally unweighted
			},
		},
		{
			Name:         IndexSafety,
			HighIsBetter: []string{"safety_audits_passed_percent", "employees_competent_percent"},
			LowIsBetter:  []string{"ltifr", "trifr"},
			Weights: map[string]float64{
				"ltifr":                        0.40,
				"trifr":                        0.30,
				"safety_audits_passed_percent": 0.20,
				"employees_competent_percent":  0.10,
			},
		},
	}

	categories := map[string][]string{
		"operational": {
			"uptime_percent",
			"unplanned_downtime_hours",
			"tons_per_hour",
			"rework_rate_percent",
		},
		"environmental": {
			"energy_kwh_per_ton",
			"water_m3_per_ton",
		},
		"cost": {
			"cost_per_ton",
			"maintenance_cost_per_ton",
		},
		"supply_chain": {
			"on_time_delivery_percent",
			"supplier_defect_percent",
		},
		"safety": {
			"ltifr",
			"trifr",
			"sifr",
			"fifr",
			"frontline_stoppages_percent",
			"near_miss_reports",
			"critical_control_compliance_percent",
			"iso_45001_certified",
		},
	}

	coreKPIs := []string{
		"uptime_percent",
		"unplanned_downtime_hours",
		"tons_per_hour",
		"rework_rate_percent",
		"energy_kwh_per_ton",
		"water_m3_per_ton",
		"cost_per_ton",
		"maintenance_cost_per_ton",
		"on_time_delivery_percent",
		"supplier_defect_percent",
		"ltifr",
		"trifr",
		"sifr",
		"fifr",
		"safety_audits_passed_percent",
		"employees_competent_percent",
	}

	return newSpec(constructs, paths, pathSpecs, indices, categories, coreKPIs)
}
