package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"fraudlab/internal/common"
)

type ConfigFile struct {
	Data struct {
		RawPath       string `yaml:"rawPath"`
		ProcessedPath string `yaml:"processedPath"`
		Target        string `yaml:"target"`
	} `yaml:"data"`

	Model struct {
		Name          string   `yaml:"name"`
		Seed          int64    `yaml:"seed"`
		TestSize      float64  `yaml:"testSize"`
		MinPrecision  *float64 `yaml:"minPrecision"`
		HistogramBins int      `yaml:"histogramBins"`
	} `yaml:"model"`

	Scoring struct {
		Scorer         string  `yaml:"scorer"`
		Fallback       bool    `yaml:"fallback"`
		TrainerScript  string  `yaml:"trainerScript"`
		Timeout        string  `yaml:"timeout"`
		ModelURL       string  `yaml:"modelURL"`
		RateLimit      float64 `yaml:"rateLimit"`
		BreakerTrip    int     `yaml:"breakerFailures"`
		BreakerTimeout string  `yaml:"breakerTimeout"`
		ScoresPath     string  `yaml:"scoresPath"`
	} `yaml:"scoring"`

	System struct {
		LogLevel    string `yaml:"logLevel"`
		ReportsDir  string `yaml:"reportsDir"`
		FiguresDir  string `yaml:"figuresDir"`
		MetricsFile string `yaml:"metricsFile"`
	} `yaml:"system"`
}

// Load reads .env when present, then CONFIG_FILE when set, otherwise the
// environment alone. Environment variables always win over the YAML file.
func Load() (Settings, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Settings{}, err
	}

	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

// loadDotEnv exports the variables of path without overriding ones already set.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Parse durations
	scorerTimeout, err := time.ParseDuration(config.Scoring.Timeout)
	if err != nil {
		scorerTimeout = common.DefaultScorerTimeout
	}

	breakerTimeout, err := time.ParseDuration(config.Scoring.BreakerTimeout)
	if err != nil {
		breakerTimeout = common.DefaultBreakerTimeout
	}

	minPrecision := common.DefaultMinPrecision
	if config.Model.MinPrecision != nil {
		minPrecision = *config.Model.MinPrecision
	}

	settings := Settings{
		LogLevel:       getEnvOrDefault(common.EnvLogLevel, orString(config.System.LogLevel, common.DefaultLogLevel)),
		RawPath:        getEnvOrDefault(common.EnvRawPath, orString(config.Data.RawPath, common.DefaultRawPath)),
		ProcessedPath:  getEnvOrDefault(common.EnvProcessedPath, orString(config.Data.ProcessedPath, common.DefaultProcessedPath)),
		ReportsDir:     getEnvOrDefault(common.EnvReportsDir, orString(config.System.ReportsDir, common.DefaultReportsDir)),
		FiguresDir:     getEnvOrDefault(common.EnvFiguresDir, orString(config.System.FiguresDir, common.DefaultFiguresDir)),
		Target:         getEnvOrDefault(common.EnvTarget, orString(config.Data.Target, common.DefaultTarget)),
		Seed:           getInt64FromEnvOrConfig(common.EnvSeed, config.Model.Seed, common.DefaultSeed),
		TestSize:       getFloatFromEnvOrConfig(common.EnvTestSize, config.Model.TestSize, common.DefaultTestSize),
		MinPrecision:   getFloatOrDefault(common.EnvMinPrecision, minPrecision),
		Model:          getEnvOrDefault(common.EnvModel, orString(config.Model.Name, common.DefaultModel)),
		HistogramBins:  getIntFromEnvOrConfig(common.EnvHistogramBins, config.Model.HistogramBins, common.DefaultHistogramBins),
		Scorer:         getEnvOrDefault(common.EnvScorer, orString(config.Scoring.Scorer, common.DefaultScorer)),
		ScorerFallback: getBoolFromEnvOrConfig(common.EnvScorerFallback, config.Scoring.Fallback),
		TrainerScript:  getEnvOrDefault(common.EnvPythonScript, orString(config.Scoring.TrainerScript, common.DefaultPythonScript)),
		ScorerTimeout:  getDurationOrDefault(common.EnvScorerTimeout, scorerTimeout),
		ModelURL:       getEnvOrDefault(common.EnvModelURL, orString(config.Scoring.ModelURL, common.DefaultModelURL)),
		ModelRate:      getFloatFromEnvOrConfig(common.EnvModelRate, config.Scoring.RateLimit, common.DefaultModelRate),
		BreakerTrip:    getIntFromEnvOrConfig(common.EnvBreakerTrip, config.Scoring.BreakerTrip, common.DefaultBreakerTrip),
		BreakerTimeout: getDurationOrDefault(common.EnvBreakerTimeout, breakerTimeout),
		ScoresPath:     getEnvOrDefault(common.EnvScoresPath, config.Scoring.ScoresPath),
		MetricsFile:    getEnvOrDefault(common.EnvMetricsFile, orString(config.System.MetricsFile, common.DefaultMetricsFile)),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		LogLevel:       getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		RawPath:        getEnvOrDefault(common.EnvRawPath, common.DefaultRawPath),
		ProcessedPath:  getEnvOrDefault(common.EnvProcessedPath, common.DefaultProcessedPath),
		ReportsDir:     getEnvOrDefault(common.EnvReportsDir, common.DefaultReportsDir),
		FiguresDir:     getEnvOrDefault(common.EnvFiguresDir, common.DefaultFiguresDir),
		Target:         getEnvOrDefault(common.EnvTarget, common.DefaultTarget),
		Seed:           getInt64OrDefault(common.EnvSeed, common.DefaultSeed),
		TestSize:       getFloatOrDefault(common.EnvTestSize, common.DefaultTestSize),
		MinPrecision:   getFloatOrDefault(common.EnvMinPrecision, common.DefaultMinPrecision),
		Model:          getEnvOrDefault(common.EnvModel, common.DefaultModel),
		HistogramBins:  getIntOrDefault(common.EnvHistogramBins, common.DefaultHistogramBins),
		Scorer:         getEnvOrDefault(common.EnvScorer, common.DefaultScorer),
		ScorerFallback: getBoolOrDefault(common.EnvScorerFallback, false),
		TrainerScript:  getEnvOrDefault(common.EnvPythonScript, common.DefaultPythonScript),
		ScorerTimeout:  getDurationOrDefault(common.EnvScorerTimeout, common.DefaultScorerTimeout),
		ModelURL:       getEnvOrDefault(common.EnvModelURL, common.DefaultModelURL),
		ModelRate:      getFloatOrDefault(common.EnvModelRate, common.DefaultModelRate),
		BreakerTrip:    getIntOrDefault(common.EnvBreakerTrip, common.DefaultBreakerTrip),
		BreakerTimeout: getDurationOrDefault(common.EnvBreakerTimeout, common.DefaultBreakerTimeout),
		ScoresPath:     os.Getenv(common.EnvScoresPath), // optional
		MetricsFile:    getEnvOrDefault(common.EnvMetricsFile, common.DefaultMetricsFile),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// Validate re-checks settings after command-line overrides.
func (s *Settings) Validate() error {
	return validateSettings(s)
}

func orString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if configValue != 0 {
		defaultValue = configValue
	}
	return getIntOrDefault(key, defaultValue)
}

func getInt64FromEnvOrConfig(key string, configValue, defaultValue int64) int64 {
	if configValue != 0 {
		defaultValue = configValue
	}
	return getInt64OrDefault(key, defaultValue)
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if configValue != 0 {
		defaultValue = configValue
	}
	return getFloatOrDefault(key, defaultValue)
}

func getBoolFromEnvOrConfig(key string, configValue bool) bool {
	return getBoolOrDefault(key, configValue)
}
