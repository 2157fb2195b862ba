package scoring

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed trainer.py
var trainerScript []byte

// ProcessScorer runs an external trainer with the job as JSON on stdin and
// reads a Response from stdout.
type ProcessScorer struct {
	command []string
	timeout time.Duration
	metrics MetricsInterface
}

// NewProcessScorer runs command (program plus arguments) once per job.
func NewProcessScorer(command []string, timeout time.Duration, metrics MetricsInterface) (*ProcessScorer, error) {
	if len(command) == 0 {
		return nil, errors.New("scorer command is empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &ProcessScorer{command: command, timeout: timeout, metrics: metrics}, nil
}

// NewPythonScorer locates a Python 3 interpreter and runs script with it.
// When script does not exist the bundled trainer is written there first.
func NewPythonScorer(script string, timeout time.Duration, metrics MetricsInterface) (*ProcessScorer, error) {
	if _, err := os.Stat(script); os.IsNotExist(err) {
		if err := WriteTrainerScript(script); err != nil {
			return nil, err
		}
		log.Info().Str("script_path", script).Msg("Wrote bundled trainer script")
	}

	python, err := FindPython()
	if err != nil {
		return nil, err
	}
	return NewProcessScorer([]string{python, script}, timeout, metrics)
}

// WriteTrainerScript writes the bundled xgboost/logistic trainer to path.
func WriteTrainerScript(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create script directory: %w", err)
	}
	if err := os.WriteFile(path, trainerScript, 0o755); err != nil {
		return fmt.Errorf("failed to write trainer script: %w", err)
	}
	return nil
}

func (s *ProcessScorer) Name() string { return "process:" + filepath.Base(s.command[len(s.command)-1]) }

func (s *ProcessScorer) Score(ctx context.Context, job Job) ([]float64, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.ScoringRequestsInc()
		defer func() { s.metrics.ScoringLatencyObserve(time.Since(start).Seconds()) }()
	}

	probs, err := s.run(ctx, job)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ScoringFailuresInc()
		}
		return nil, err
	}
	observeScores(s.metrics, probs)

	log.Debug().
		Str("scorer", s.Name()).
		Int("rows", len(probs)).
		Dur("elapsed", time.Since(start)).
		Msg("Scoring successful")

	return probs, nil
}

func (s *ProcessScorer) run(ctx context.Context, job Job) ([]float64, error) {
	reqJSON, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.command[0], s.command[1:]...)
	cmd.Stdin = bytes.NewReader(reqJSON)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		if s.metrics != nil {
			s.metrics.ScoringTimeoutsInc()
		}
		return nil, fmt.Errorf("scoring timeout after %v: %w", s.timeout, context.DeadlineExceeded)
	}

	var resp Response
	parseErr := json.Unmarshal(stdout.Bytes(), &resp)
	if parseErr == nil && resp.Error != "" {
		log.Error().
			Str("model_error", resp.Error).
			Str("model", job.Model).
			Msg("External model returned error")
		return nil, fmt.Errorf("model error: %s", resp.Error)
	}
	if runErr != nil {
		log.Error().
			Err(runErr).
			Strs("command", s.command).
			Str("stderr", strings.TrimSpace(stderr.String())).
			Dur("timeout", s.timeout).
			Msg("External model execution failed")
		return nil, fmt.Errorf("external model failed: %w, stderr: %s", runErr, strings.TrimSpace(stderr.String()))
	}
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse response: %w, stdout: %s", parseErr, stdout.String())
	}

	if err := Validate(resp.Probabilities, len(job.TestX)); err != nil {
		return nil, err
	}
	return resp.Probabilities, nil
}

// FindPython prefers an active virtual environment, then a venv next to the
// executable, then python3 on PATH.
func FindPython() (string, error) {
	if venvPath := os.Getenv("VIRTUAL_ENV"); venvPath != "" {
		for _, candidate := range []string{
			filepath.Join(venvPath, "bin", "python3"),
			filepath.Join(venvPath, "bin", "python"),
			filepath.Join(venvPath, "Scripts", "python.exe"),
		} {
			if isPython3(candidate) {
				log.Info().Str("python_path", candidate).Msg("Using virtual environment Python")
				return candidate, nil
			}
		}
	}

	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		for _, root := range []string{execDir, filepath.Dir(execDir)} {
			for _, candidate := range []string{
				filepath.Join(root, ".venv", "bin", "python3"),
				filepath.Join(root, "venv", "bin", "python3"),
			} {
				if isPython3(candidate) {
					log.Info().Str("python_path", candidate).Msg("Using project virtual environment Python")
					return candidate, nil
				}
			}
		}
	}

	for _, name := range []string{"python3", "python"} {
		if path, err := exec.LookPath(name); err == nil && isPython3(path) {
			log.Info().Str("python_path", path).Msg("Using system Python")
			return path, nil
		}
	}

	return "", errors.New("no suitable Python 3 executable found")
}

func isPython3(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	cmd := exec.Command(path, "-c", "import sys; exit(0 if sys.version_info[0] == 3 else 1)")
	return cmd.Run() == nil
}
