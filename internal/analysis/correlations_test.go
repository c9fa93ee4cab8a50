package analysis

import (
	"math"
	"testing"

	"gosem/domain/table"
)

func TestCorrelationTable(t *testing.T) {
	tbl := table.New("site_id", []string{"S1", "S2", "S3", "S4"})
	_ = tbl.AddColumn("a", []float64{1, 2, 3, 4})
	_ = tbl.AddColumn("b", []float64{2, 4, 6, 8})            // perfectly correlated with a
	_ = tbl.AddColumn("c", []float64{4, 3, 2, 1})            // perfectly anticorrelated
	_ = tbl.AddColumn("konst", []float64{7, 7, 7, 7})        // zero variance
	_ = tbl.AddColumn("gappy", []float64{1, math.NaN(), 3, 4})

	m := CorrelationTable(tbl)
	if len(m.Columns) != 5 {
		t.Fatalf("Expected 5 columns, got %d", len(m.Columns))
	}

	idx := make(map[string]int, len(m.Columns))
	for i, c := range m.Columns {
		idx[c] = i
	}
	at := func(a, b string) float64 { return m.Values[idx[a]][idx[b]] }

	if math.Abs(at("a", "a")-1.0) > 1e-9 {
		t.Errorf("Diagonal should be 1, got %v", at("a", "a"))
	}
	if math.Abs(at("a", "b")-1.0) > 1e-9 {
		t.Errorf("Expected corr(a, b) = 1, got %v", at("a", "b"))
	}
	if math.Abs(at("a", "c")+1.0) > 1e-9 {
		t.Errorf("Expected corr(a, c) = -1, got %v", at("a", "c"))
	}
	if !math.IsNaN(at("a", "konst")) {
		t.Errorf("Zero-variance pair should be NaN, got %v", at("a", "konst"))
	}

	// Pairwise complete: gappy vs a uses the three shared rows, still linear.
	if math.Abs(at("a", "gappy")-1.0) > 1e-9 {
		t.Errorf("Expected corr(a, gappy) = 1 over complete pairs, got %v", at("a", "gappy"))
	}

	// Symmetry.
	for i := range m.Values {
		for j := range m.Values[i] {
			vij, vji := m.Values[i][j], m.Values[j][i]
			if math.IsNaN(vij) != math.IsNaN(vji) {
				t.Fatalf("Asymmetric NaN at (%d, %d)", i, j)
			}
			if !math.IsNaN(vij) && math.Abs(vij-vji) > 1e-12 {
				t.Fatalf("Asymmetric values at (%d, %d): %v vs %v", i, j, vij, vji)
			}
		}
	}
}

func TestCorrelationTable_TooFewPairs(t *testing.T) {
	tbl := table.New("site_id", []string{"S1", "S2", "S3"})
	_ = tbl.AddColumn("a", []float64{1, math.NaN(), math.NaN()})
	_ = tbl.AddColumn("b", []float64{2, 3, math.NaN()})

	m := CorrelationTable(tbl)
	if !math.IsNaN(m.Values[0][1]) {
		t.Errorf("Expected NaN with fewer than two complete pairs, got %v", m.Values[0][1])
	}
}
