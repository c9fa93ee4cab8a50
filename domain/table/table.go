// Package table provides a small column-oriented numeric table keyed by a
// string identifier column (site or respondent). Missing cells are math.NaN.
//
// Tables are built once with AddColumn and treated as immutable afterwards;
// every derived table (group means, joins, selections) is a new value.
package table

import (
	"fmt"
	"math"
	"sort"

	"gosem/domain/core"
)

// Table is one identifier column plus zero or more float64 columns, all of
// equal length. The identifier need not be unique until GroupMean collapses it.
type Table struct {
	key  string
	ids  []string
	cols []string
	data map[string][]float64
}

// New creates a table with the given identifier column name and row keys.
func New(key string, ids []string) *Table {
	return &Table{
		key:  key,
		ids:  ids,
		cols: nil,
		data: make(map[string][]float64),
	}
}

// Key returns the identifier column name (e.g. "site_id").
func (t *Table) Key() string { return t.key }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.ids) }

// IDs returns the identifier value per row. Read-only.
func (t *Table) IDs() []string { return t.ids }

// Columns returns the numeric column names in insertion order. Read-only.
func (t *Table) Columns() []string { return t.cols }

// HasColumn reports whether a numeric column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.data[name]
	return ok
}

// Column returns the values of a numeric column. Read-only.
func (t *Table) Column(name string) ([]float64, bool) {
	v, ok := t.data[name]
	return v, ok
}

// AddColumn appends a numeric column during table construction.
func (t *Table) AddColumn(name string, values []float64) error {
	if len(values) != len(t.ids) {
		return fmt.Errorf("%w: column %q has %d values, table has %d rows",
			core.ErrRowCountMismatch, name, len(values), len(t.ids))
	}
	if _, ok := t.data[name]; ok || name == t.key {
		return fmt.Errorf("%w: %q", core.ErrDuplicateColumn, name)
	}
	t.cols = append(t.cols, name)
	t.data[name] = values
	return nil
}

// MissingColumns returns the subset of required names absent from the table,
// preserving the requested order.
func (t *Table) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Select returns a new table restricted to the given columns, in the given
// order. All requested columns must exist.
func (t *Table) Select(cols ...string) (*Table, error) {
	if missing := t.MissingColumns(cols); len(missing) > 0 {
		return nil, core.NewSchemaError(missing)
	}
	out := New(t.key, t.ids)
	for _, c := range cols {
		if err := out.AddColumn(c, t.data[c]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GroupMean collapses rows sharing an identifier into one row per identifier,
// each column holding the mean of its finite values within the group. Groups
// with no finite value yield NaN. Output rows are sorted by identifier so the
// result is deterministic regardless of input row order.
func (t *Table) GroupMean() *Table {
	groups := make(map[string][]int)
	for i, id := range t.ids {
		groups[id] = append(groups[id], i)
	}
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := New(t.key, ids)
	for _, col := range t.cols {
		src := t.data[col]
		agg := make([]float64, len(ids))
		for gi, id := range ids {
			sum, n := 0.0, 0
			for _, ri := range groups[id] {
				if v := src[ri]; !math.IsNaN(v) {
					sum += v
					n++
				}
			}
			if n == 0 {
				agg[gi] = math.NaN()
			} else {
				agg[gi] = sum / float64(n)
			}
		}
		// AddColumn cannot fail here: lengths match and source columns are unique.
		_ = out.AddColumn(col, agg)
	}
	return out
}

// InnerJoin merges two unique-keyed tables on the identifier. Identifiers
// absent from either side are dropped. Columns keep left-then-right order;
// a column name present on both sides is an error.
func (t *Table) InnerJoin(other *Table) (*Table, error) {
	leftRows, err := uniqueIndex(t)
	if err != nil {
		return nil, err
	}
	rightRows, err := uniqueIndex(other)
	if err != nil {
		return nil, err
	}

	var ids []string
	for id := range leftRows {
		if _, ok := rightRows[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := New(t.key, ids)
	addSide := func(src *Table, rows map[string]int) error {
		for _, col := range src.cols {
			vals := make([]float64, len(ids))
			for i, id := range ids {
				vals[i] = src.data[col][rows[id]]
			}
			if err := out.AddColumn(col, vals); err != nil {
				return err
			}
		}
		return nil
	}
	if err := addSide(t, leftRows); err != nil {
		return nil, err
	}
	if err := addSide(other, rightRows); err != nil {
		return nil, err
	}
	return out, nil
}

// CompleteRows returns the indices of rows with a finite value in every one
// of the given columns. All named columns must exist.
func (t *Table) CompleteRows(cols []string) ([]int, error) {
	if missing := t.MissingColumns(cols); len(missing) > 0 {
		return nil, core.NewMissingColumnError(missing)
	}
	var rows []int
rowLoop:
	for i := range t.ids {
		for _, c := range cols {
			if math.IsNaN(t.data[c][i]) {
				continue rowLoop
			}
		}
		rows = append(rows, i)
	}
	return rows, nil
}

func uniqueIndex(t *Table) (map[string]int, error) {
	rows := make(map[string]int, len(t.ids))
	for i, id := range t.ids {
		if _, ok := rows[id]; ok {
			return nil, fmt.Errorf("%w: %q in column %q", core.ErrDuplicateKey, id, t.key)
		}
		rows[id] = i
	}
	return rows, nil
}
