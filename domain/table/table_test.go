package table

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"gosem/domain/core"
)

func TestAddColumn_RowCountMismatch(t *testing.T) {
	tbl := New("site_id", []string{"A", "B", "C"})
	err := tbl.AddColumn("x", []float64{1, 2})
	if !errors.Is(err, core.ErrRowCountMismatch) {
		t.Fatalf("Expected ErrRowCountMismatch, got %v", err)
	}
}

func TestAddColumn_Duplicate(t *testing.T) {
	tbl := New("site_id", []string{"A", "B"})
	if err := tbl.AddColumn("x", []float64{1, 2}); err != nil {
		t.Fatalf("First AddColumn failed: %v", err)
	}
	if err := tbl.AddColumn("x", []float64{3, 4}); !errors.Is(err, core.ErrDuplicateColumn) {
		t.Errorf("Expected ErrDuplicateColumn for repeated name, got %v", err)
	}
	if err := tbl.AddColumn("site_id", []float64{3, 4}); !errors.Is(err, core.ErrDuplicateColumn) {
		t.Errorf("Expected ErrDuplicateColumn for key name, got %v", err)
	}
}

func TestMissingColumns_PreservesRequestOrder(t *testing.T) {
	tbl := New("site_id", []string{"A"})
	_ = tbl.AddColumn("b", []float64{1})

	missing := tbl.MissingColumns([]string{"z", "b", "a"})
	if !reflect.DeepEqual(missing, []string{"z", "a"}) {
		t.Errorf("Expected [z a], got %v", missing)
	}
}

func TestSelect_MissingColumnIsSchemaError(t *testing.T) {
	tbl := New("site_id", []string{"A"})
	_ = tbl.AddColumn("x", []float64{1})

	_, err := tbl.Select("x", "y")
	if !core.IsSchemaError(err) {
		t.Fatalf("Expected SchemaError, got %v", err)
	}
	var se *core.SchemaError
	errors.As(err, &se)
	if !reflect.DeepEqual(se.Missing, []string{"y"}) {
		t.Errorf("Expected missing [y], got %v", se.Missing)
	}
}

func TestGroupMean_SortsAndSkipsMissing(t *testing.T) {
	tbl := New("site_id", []string{"B", "A", "B", "A"})
	_ = tbl.AddColumn("x", []float64{2, 10, 4, math.NaN()})
	_ = tbl.AddColumn("y", []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()})

	grouped := tbl.GroupMean()
	if !reflect.DeepEqual(grouped.IDs(), []string{"A", "B"}) {
		t.Fatalf("Expected sorted ids [A B], got %v", grouped.IDs())
	}

	x, _ := grouped.Column("x")
	if x[0] != 10 {
		t.Errorf("Expected A mean 10 (NaN skipped), got %v", x[0])
	}
	if x[1] != 3 {
		t.Errorf("Expected B mean 3, got %v", x[1])
	}

	y, _ := grouped.Column("y")
	if !math.IsNaN(y[0]) || !math.IsNaN(y[1]) {
		t.Errorf("Expected NaN for groups with no finite values, got %v", y)
	}
}

func TestInnerJoin_IntersectionOfKeys(t *testing.T) {
	left := New("site_id", []string{"A", "B", "C"})
	_ = left.AddColumn("x", []float64{1, 2, 3})

	right := New("site_id", []string{"B", "C", "D"})
	_ = right.AddColumn("y", []float64{20, 30, 40})

	merged, err := left.InnerJoin(right)
	if err != nil {
		t.Fatalf("InnerJoin failed: %v", err)
	}
	if !reflect.DeepEqual(merged.IDs(), []string{"B", "C"}) {
		t.Fatalf("Expected ids [B C], got %v", merged.IDs())
	}
	if !reflect.DeepEqual(merged.Columns(), []string{"x", "y"}) {
		t.Fatalf("Expected left-then-right columns, got %v", merged.Columns())
	}

	x, _ := merged.Column("x")
	y, _ := merged.Column("y")
	if x[0] != 2 || x[1] != 3 {
		t.Errorf("Left values misaligned: %v", x)
	}
	if y[0] != 20 || y[1] != 30 {
		t.Errorf("Right values misaligned: %v", y)
	}
}

func TestInnerJoin_DuplicateKeyFails(t *testing.T) {
	left := New("site_id", []string{"A", "A"})
	_ = left.AddColumn("x", []float64{1, 2})
	right := New("site_id", []string{"A"})
	_ = right.AddColumn("y", []float64{3})

	if _, err := left.InnerJoin(right); !errors.Is(err, core.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestInnerJoin_SharedColumnNameFails(t *testing.T) {
	left := New("site_id", []string{"A"})
	_ = left.AddColumn("x", []float64{1})
	right := New("site_id", []string{"A"})
	_ = right.AddColumn("x", []float64{2})

	if _, err := left.InnerJoin(right); !errors.Is(err, core.ErrDuplicateColumn) {
		t.Errorf("Expected ErrDuplicateColumn, got %v", err)
	}
}

func TestCompleteRows(t *testing.T) {
	tbl := New("site_id", []string{"A", "B", "C", "D"})
	_ = tbl.AddColumn("x", []float64{1, math.NaN(), 3, 4})
	_ = tbl.AddColumn("y", []float64{1, 2, math.NaN(), 4})

	rows, err := tbl.CompleteRows([]string{"x", "y"})
	if err != nil {
		t.Fatalf("CompleteRows failed: %v", err)
	}
	if !reflect.DeepEqual(rows, []int{0, 3}) {
		t.Errorf("Expected rows [0 3], got %v", rows)
	}

	if _, err := tbl.CompleteRows([]string{"x", "z"}); !core.IsMissingColumnError(err) {
		t.Errorf("Expected MissingColumnError, got %v", err)
	}
}
