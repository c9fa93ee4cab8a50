package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors
	ErrUnknownConstruct = errors.New("unknown construct code")
	ErrUnknownMethod    = errors.New("unknown index method")

	// Data errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrDuplicateColumn  = errors.New("duplicate column name")
	ErrRowCountMismatch = errors.New("row count mismatch")
	ErrDuplicateKey     = errors.New("duplicate identifier value")
)

// SchemaError reports required identifier or data columns that are absent
// from an input table. It always carries the complete set of missing names
// so callers see every problem at once rather than one per call.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("input table is missing required columns: [%s]", strings.Join(e.Missing, " "))
}

// NewSchemaError builds a SchemaError with the missing names deduplicated
// and sorted for stable messages.
func NewSchemaError(missing []string) *SchemaError {
	return &SchemaError{Missing: dedupSorted(missing)}
}

// MissingColumnError reports construct columns referenced by a path spec that
// are absent from the site-level table.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("site table is missing referenced columns: [%s]", strings.Join(e.Columns, " "))
}

// NewMissingColumnError builds a MissingColumnError with deduplicated,
// sorted column names.
func NewMissingColumnError(columns []string) *MissingColumnError {
	return &MissingColumnError{Columns: dedupSorted(columns)}
}

// Error constructors with context
func NewUnknownConstructError(code string) error {
	return fmt.Errorf("%w: %q", ErrUnknownConstruct, code)
}

func NewUnknownMethodError(method string) error {
	return fmt.Errorf("%w: %q (want \"simple\" or \"weighted\")", ErrUnknownMethod, method)
}

// Error checking helpers
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

func IsMissingColumnError(err error) bool {
	var me *MissingColumnError
	return errors.As(err, &me)
}

func dedupSorted(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
