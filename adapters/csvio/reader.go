// Package csvio reads delimited-text and Excel workbooks into domain tables
// and writes result tables back out as CSV. All pipeline inputs pass through
// here; the engines never touch files.
package csvio

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gosem/domain/core"
	"gosem/domain/table"
)

// DataReader handles reading CSV and Excel files into tables.
type DataReader struct {
	filePath string
	fileType string // "csv" or "xlsx"
}

// NewDataReader creates a reader for the given file, picking the format from
// the extension (.csv everything else is treated as an Excel workbook).
func NewDataReader(filePath string) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadTable reads the file into a table keyed by keyColumn. Every other
// column is parsed as numeric; blank or unparseable cells become missing
// values. A file without the key column fails with a SchemaError.
func (r *DataReader) ReadTable(keyColumn string) (*table.Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	return buildTable(rows, keyColumn)
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets: %s", r.filePath)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func buildTable(rows [][]string, keyColumn string) (*table.Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}

	header := rows[0]
	keyIdx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == keyColumn {
			keyIdx = i
			break
		}
	}
	if keyIdx < 0 {
		return nil, core.NewSchemaError([]string{keyColumn})
	}

	records := rows[1:]
	ids := make([]string, len(records))
	for i, rec := range records {
		if keyIdx < len(rec) {
			ids[i] = strings.TrimSpace(rec[keyIdx])
		}
	}

	t := table.New(keyColumn, ids)
	for col, name := range header {
		name = strings.TrimSpace(name)
		if col == keyIdx || name == "" {
			continue
		}
		vals := make([]float64, len(records))
		for i, rec := range records {
			vals[i] = parseCell(rec, col)
		}
		if err := t.AddColumn(name, vals); err != nil {
			return nil, err
		}
	}

	log.Printf("[DataReader] loaded %d rows x %d columns keyed by %q", t.Len(), len(t.Columns()), keyColumn)
	return t, nil
}

func parseCell(record []string, col int) float64 {
	if col >= len(record) {
		return math.NaN()
	}
	s := strings.TrimSpace(record[col])
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
