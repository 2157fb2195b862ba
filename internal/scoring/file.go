package scoring

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ProbaColumn holds precomputed fraud probabilities.
const ProbaColumn = "proba_fraud"

// FileScorer returns probabilities read from a CSV, row-aligned with the test
// split.
type FileScorer struct {
	path   string
	column string
}

// NewFileScorer reads column from path, defaulting to proba_fraud.
func NewFileScorer(path, column string) *FileScorer {
	if column == "" {
		column = ProbaColumn
	}
	return &FileScorer{path: path, column: column}
}

func (s *FileScorer) Name() string { return "file:" + s.path }

func (s *FileScorer) Score(ctx context.Context, job Job) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scores file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read scores header: %w", err)
	}
	col := -1
	for i, name := range header {
		if name == s.column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("scores file %s has no %q column", s.path, s.column)
	}

	var probs []float64
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read scores line %d: %w", line, err)
		}
		p, err := strconv.ParseFloat(record[col], 64)
		if err != nil {
			return nil, fmt.Errorf("scores line %d: %w", line, err)
		}
		probs = append(probs, p)
	}

	if err := Validate(probs, len(job.TestX)); err != nil {
		return nil, err
	}
	return probs, nil
}
