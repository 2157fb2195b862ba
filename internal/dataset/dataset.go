// Package dataset loads labeled transaction tables and splits them for
// training and evaluation.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
)

// DefaultTarget is the label column of the credit-card dataset.
const DefaultTarget = "Class"

var (
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("missing column")
	// ErrBadLabel is returned when a target value is not 0 or 1.
	ErrBadLabel = errors.New("target value must be 0 or 1")
	// ErrBadValue is returned for NaN or infinite cells.
	ErrBadValue = errors.New("value is not finite")
)

// Dataset is a numeric feature table with one binary label per row.
type Dataset struct {
	Target  string
	Columns []string
	Rows    [][]float64
	Labels  []int
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// ColumnIndex returns the position of name among the feature columns, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column copies out one feature column.
func (d *Dataset) Column(name string) ([]float64, bool) {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]float64, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// AddColumn appends a feature column, replacing any column of the same name.
func (d *Dataset) AddColumn(name string, values []float64) error {
	if len(values) != len(d.Rows) {
		return fmt.Errorf("column %s has %d values for %d rows", name, len(values), len(d.Rows))
	}
	if idx := d.ColumnIndex(name); idx >= 0 {
		for i, row := range d.Rows {
			row[idx] = values[i]
		}
		return nil
	}
	d.Columns = append(d.Columns, name)
	for i := range d.Rows {
		d.Rows[i] = append(d.Rows[i], values[i])
	}
	return nil
}

// Subset returns the rows at idx, in that order. Rows are shared, not copied.
func (d *Dataset) Subset(idx []int) *Dataset {
	out := &Dataset{
		Target:  d.Target,
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([][]float64, len(idx)),
		Labels:  make([]int, len(idx)),
	}
	for i, j := range idx {
		out.Rows[i] = d.Rows[j]
		out.Labels[i] = d.Labels[j]
	}
	return out
}

// LoadCSV reads a headed CSV where every column but target is numeric.
func LoadCSV(path, target string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer file.Close()

	ds, err := Read(file, target)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	log.Info().
		Str("file", path).
		Int("rows", ds.Len()).
		Int("columns", len(ds.Columns)+1).
		Msg("Dataset loaded")

	return ds, nil
}

// Read parses a headed CSV stream.
func Read(r io.Reader, target string) (*Dataset, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	targetIdx := -1
	columns := make([]string, 0, len(header))
	for i, col := range header {
		if col == target {
			targetIdx = i
			continue
		}
		columns = append(columns, col)
	}
	if targetIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, target)
	}

	ds := &Dataset{Target: target, Columns: columns}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		row := make([]float64, 0, len(columns))
		for j, raw := range record {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, header[j], err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: line %d column %s has %q", ErrBadValue, line, header[j], raw)
			}
			if j == targetIdx {
				if v != 0 && v != 1 {
					return nil, fmt.Errorf("%w: line %d has %v", ErrBadLabel, line, raw)
				}
				ds.Labels = append(ds.Labels, int(v))
				continue
			}
			row = append(row, v)
		}
		ds.Rows = append(ds.Rows, row)
	}

	if ds.Len() == 0 {
		return nil, errors.New("csv has no data rows")
	}
	return ds, nil
}

// WriteCSV writes the feature columns followed by the target column,
// creating parent directories as needed.
func WriteCSV(path string, d *Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(append(append([]string(nil), d.Columns...), d.Target)); err != nil {
		return err
	}
	record := make([]string, len(d.Columns)+1)
	for i, row := range d.Rows {
		for j, v := range row {
			record[j] = FormatFloat(v)
		}
		record[len(d.Columns)] = strconv.Itoa(d.Labels[i])
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// FormatFloat renders v in the shortest form that parses back exactly.
func FormatFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
