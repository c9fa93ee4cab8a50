package csvio

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gosem/domain/sem"
	"gosem/domain/table"
)

// WriteTable writes a table as CSV: identifier column first, numeric columns
// in table order, missing values as empty cells.
func WriteTable(t *table.Table, path string) error {
	rows := make([][]string, 0, t.Len()+1)
	header := append([]string{t.Key()}, t.Columns()...)
	rows = append(rows, header)

	cols := make([][]float64, len(t.Columns()))
	for i, name := range t.Columns() {
		cols[i], _ = t.Column(name)
	}
	for i, id := range t.IDs() {
		row := make([]string, 0, len(header))
		row = append(row, id)
		for _, col := range cols {
			row = append(row, formatCell(col[i]))
		}
		rows = append(rows, row)
	}
	return writeCSV(path, rows)
}

// WriteOuterModel writes outer-model result rows as CSV with one
// loading_<indicator> column per indicator seen across the results.
func WriteOuterModel(results []sem.OuterModelResult, path string) error {
	var loadingCols []string
	seen := make(map[string]struct{})
	for _, r := range results {
		for _, ind := range r.Indicators {
			if _, ok := seen[ind]; ok {
				continue
			}
			seen[ind] = struct{}{}
			loadingCols = append(loadingCols, ind)
		}
	}

	header := []string{"construct", "name", "n_indicators", "n_obs", "alpha", "cr", "ave"}
	for _, ind := range loadingCols {
		header = append(header, "loading_"+ind)
	}

	rows := [][]string{header}
	for _, r := range results {
		row := []string{
			r.Construct,
			r.Name,
			strconv.Itoa(r.NIndicators()),
			strconv.Itoa(r.Observations),
			formatCell(r.Alpha),
			formatCell(r.CR),
			formatCell(r.AVE),
		}
		for _, ind := range loadingCols {
			if l, ok := r.Loadings[ind]; ok {
				row = append(row, formatCell(l))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	w.Flush()
	return w.Error()
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
