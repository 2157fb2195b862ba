// Package storage keeps the run history of fraudlab in a flat JSON file
// inside the reports directory, ordered by creation time.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// HistoryFile is the history file name inside the reports directory.
const HistoryFile = "runs.json"

// Run kinds.
const (
	KindBaseline = "baseline"
	KindPredict  = "predict"
)

// ErrDuplicateRun is returned when a run id is already recorded.
var ErrDuplicateRun = errors.New("run already recorded")

// RunRecord is the persisted outcome of one model run.
type RunRecord struct {
	RunID         string    `json:"run_id"`
	Kind          string    `json:"kind"`
	Model         string    `json:"model"`
	Scorer        string    `json:"scorer"`
	CreatedAt     time.Time `json:"created_at"`
	MinPrecision  float64   `json:"min_precision,omitempty"`
	Threshold     float64   `json:"threshold"`
	Precision     float64   `json:"precision"`
	Recall        float64   `json:"recall"`
	ConstraintMet bool      `json:"constraint_met"`
	ROCAUC        float64   `json:"roc_auc"`
	PRAUC         float64   `json:"pr_auc"`
	TestSize      int       `json:"test_size"`
	Positives     int       `json:"positives"`
}

// NewRunID returns a random run identifier.
func NewRunID() string { return uuid.NewString() }

// Store is the run history of one reports directory. Records are kept
// oldest first, the order they are written in.
type Store struct {
	path    string
	records []RunRecord
}

// Open loads the history in dir. A missing file is an empty history.
func Open(dir string) (*Store, error) {
	s := &Store{path: filepath.Join(dir, HistoryFile)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read run history: %w", err)
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("failed to parse run history %s: %w", s.path, err)
	}
	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].CreatedAt.Before(s.records[j].CreatedAt)
	})
	return s, nil
}

// Add stores rec and rewrites the file. Missing ids and timestamps are
// filled in.
func (s *Store) Add(rec RunRecord) (RunRecord, error) {
	if rec.RunID == "" {
		rec.RunID = NewRunID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if _, ok := s.Get(rec.RunID); ok {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrDuplicateRun, rec.RunID)
	}

	// insert after every record that is not newer
	i := sort.Search(len(s.records), func(i int) bool {
		return s.records[i].CreatedAt.After(rec.CreatedAt)
	})
	s.records = append(s.records, RunRecord{})
	copy(s.records[i+1:], s.records[i:])
	s.records[i] = rec

	if err := s.save(); err != nil {
		return RunRecord{}, err
	}
	log.Info().Str("run_id", rec.RunID).Str("model", rec.Model).Msg("Run recorded")
	return rec, nil
}

// List returns up to limit runs of model, newest first. An empty model
// matches every run and a limit of 0 returns all of them.
func (s *Store) List(model string, limit int) []RunRecord {
	var runs []RunRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		if limit > 0 && len(runs) == limit {
			break
		}
		if model != "" && s.records[i].Model != model {
			continue
		}
		runs = append(runs, s.records[i])
	}
	return runs
}

// Between returns the runs created in [start, end], oldest first.
func (s *Store) Between(start, end time.Time) []RunRecord {
	lo := sort.Search(len(s.records), func(i int) bool {
		return !s.records[i].CreatedAt.Before(start)
	})
	hi := sort.Search(len(s.records), func(i int) bool {
		return s.records[i].CreatedAt.After(end)
	})
	if lo >= hi {
		return nil
	}
	return append([]RunRecord(nil), s.records[lo:hi]...)
}

// Get looks a run up by id.
func (s *Store) Get(runID string) (RunRecord, bool) {
	for _, r := range s.records {
		if r.RunID == runID {
			return r, true
		}
	}
	return RunRecord{}, false
}

// Latest returns the newest run of model, or of any model when model is "".
func (s *Store) Latest(model string) (RunRecord, bool) {
	runs := s.List(model, 1)
	if len(runs) == 0 {
		return RunRecord{}, false
	}
	return runs[0], true
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run history: %w", err)
	}
	return nil
}

// Record opens the history in dir and adds rec.
func Record(dir string, rec RunRecord) (RunRecord, error) {
	s, err := Open(dir)
	if err != nil {
		return RunRecord{}, err
	}
	return s.Add(rec)
}
