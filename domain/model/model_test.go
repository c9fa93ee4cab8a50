package model

import (
	"errors"
	"reflect"
	"testing"

	"gosem/domain/core"
)

func TestDefault_ConstructRegistry(t *testing.T) {
	spec := Default()

	codes := spec.ConstructCodes()
	expected := []string{"GPUR", "GOPS", "GLOG", "GTRN", "GCOL", "SUPINT", "MAINT", "COMP", "OE", "EP"}
	if !reflect.DeepEqual(codes, expected) {
		t.Fatalf("Construct order mismatch: %v", codes)
	}

	for _, code := range codes {
		c, err := spec.Construct(code)
		if err != nil {
			t.Fatalf("Construct(%s) failed: %v", code, err)
		}
		if c.Name == "" || c.Description == "" {
			t.Errorf("%s missing name or description", code)
		}
		if len(c.Indicators) < 3 {
			t.Errorf("%s has %d indicators, expected 3+", code, len(c.Indicators))
		}
	}

	// 4+4+3+3+3 drivers, 3+3+3 mediators, 5+5 outcomes.
	if got := len(spec.AllIndicators()); got != 36 {
		t.Errorf("Expected 36 indicator columns, got %d", got)
	}
}

func TestDefault_UnknownConstruct(t *testing.T) {
	_, err := Default().Construct("NOPE")
	if !errors.Is(err, core.ErrUnknownConstruct) {
		t.Fatalf("Expected ErrUnknownConstruct, got %v", err)
	}
}

func TestDefault_StructuralPaths(t *testing.T) {
	spec := Default()

	if got := len(spec.StructuralPaths()); got != 13 {
		t.Errorf("Expected 13 structural paths, got %d", got)
	}

	if targets := spec.DownstreamTargets("GTRN"); !reflect.DeepEqual(targets, []string{"COMP", "MAINT"}) {
		t.Errorf("GTRN downstream mismatch: %v", targets)
	}
	if sources := spec.UpstreamSources("OE"); !reflect.DeepEqual(sources, []string{"SUPINT", "MAINT", "COMP"}) {
		t.Errorf("OE upstream mismatch: %v", sources)
	}

	specs := spec.DefaultPathSpecs()
	if len(specs) != 4 {
		t.Fatalf("Expected 4 default path specs, got %d", len(specs))
	}
	targets := make([]string, len(specs))
	for i, ps := range specs {
		targets[i] = ps.Target
	}
	if !reflect.DeepEqual(targets, []string{"OE", "EP", IndexOperational, IndexSafety}) {
		t.Errorf("Path spec targets mismatch: %v", targets)
	}
}

func TestDefault_IndexSpecs(t *testing.T) {
	spec := Default()

	indices := spec.Indices()
	if len(indices) != 2 {
		t.Fatalf("Expected 2 index specs, got %d", len(indices))
	}

	oe := indices[0]
	if oe.Name != IndexOperational {
		t.Fatalf("Expected first index %s, got %s", IndexOperational, oe.Name)
	}
	components := oe.Components()
	if components[0] != "uptime_percent" {
		t.Errorf("High-is-better KPIs should come first, got %v", components)
	}
	if len(components) != 7 {
		t.Errorf("Expected 7 operational components, got %d", len(components))
	}
	if _, ok := oe.Weights["water_m3_per_ton"]; ok {
		t.Error("water_m3_per_ton should be unweighted")
	}

	safety := indices[1]
	if safety.Weights["ltifr"] != 0.40 {
		t.Errorf("Expected ltifr weight 0.40, got %v", safety.Weights["ltifr"])
	}

	required := spec.RequiredKPIs()
	seen := make(map[string]int)
	for _, kpi := range required {
		seen[kpi]++
	}
	for kpi, n := range seen {
		if n > 1 {
			t.Errorf("RequiredKPIs contains %s %d times", kpi, n)
		}
	}
	if len(required) != 11 {
		t.Errorf("Expected 11 required KPIs, got %d: %v", len(required), required)
	}
}

func TestDefault_CoreKPIsAndCategories(t *testing.T) {
	spec := Default()

	if got := len(spec.CoreKPIs()); got != 16 {
		t.Errorf("Expected 16 core KPIs, got %d", got)
	}
	safety := spec.KPIsByCategory("safety")
	if len(safety) != 8 {
		t.Errorf("Expected 8 safety KPIs, got %v", safety)
	}
	inSafety := make(map[string]bool, len(safety))
	for _, kpi := range safety {
		inSafety[kpi] = true
	}
	for _, kpi := range []string{"near_miss_reports", "critical_control_compliance_percent", "iso_45001_certified"} {
		if !inSafety[kpi] {
			t.Errorf("Expected safety category to include %s, got %v", kpi, safety)
		}
	}
	for _, kpi := range []string{"safety_audits_passed_percent", "employees_competent_percent"} {
		if inSafety[kpi] {
			t.Errorf("%s belongs to the safety index, not the safety reporting category: %v", kpi, safety)
		}
	}
	if kpis := spec.KPIsByCategory("unknown"); kpis != nil {
		t.Errorf("Unknown category should return nil, got %v", kpis)
	}
}
