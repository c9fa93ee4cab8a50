package analysis

import (
	"math"

	"github.com/montanaflynn/stats"

	"gosem/domain/sem"
	"gosem/domain/table"
)

// CorrelationTable computes the Pearson correlation matrix over every
// numeric column of a site-level table, using pairwise complete
// observations. A pair with fewer than two complete rows, or with a
// zero-variance side, yields NaN.
func CorrelationTable(tbl *table.Table) *sem.CorrelationMatrix {
	cols := tbl.Columns()
	values := make([][]float64, len(cols))
	for i := range cols {
		values[i] = make([]float64, len(cols))
		for j := range cols {
			if j < i {
				values[i][j] = values[j][i]
				continue
			}
			values[i][j] = pairwisePearson(tbl, cols[i], cols[j])
		}
	}
	return &sem.CorrelationMatrix{Columns: cols, Values: values}
}

func pairwisePearson(tbl *table.Table, a, b string) float64 {
	ca, _ := tbl.Column(a)
	cb, _ := tbl.Column(b)
	xs := make([]float64, 0, len(ca))
	ys := make([]float64, 0, len(cb))
	for i := range ca {
		if math.IsNaN(ca[i]) || math.IsNaN(cb[i]) {
			continue
		}
		xs = append(xs, ca[i])
		ys = append(ys, cb[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	sx, _ := stats.StandardDeviationPopulation(xs)
	sy, _ := stats.StandardDeviationPopulation(ys)
	if sx == 0 || sy == 0 {
		return math.NaN()
	}
	r, err := stats.Pearson(xs, ys)
	if err != nil {
		return math.NaN()
	}
	return r
}
