// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting the harness configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hujiayu1223/knowledge-editing/internal/pope"
	"github.com/hujiayu1223/knowledge-editing/internal/prompt"
	"github.com/hujiayu1223/knowledge-editing/internal/vlm"
)

const (
	// DefaultConfigPath is the default path to the configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultDataPath is the primary image directory.
	defaultDataPath = "COCO_2014/val2014"
	// defaultFallbackDataPath is the secondary image search location.
	defaultFallbackDataPath = "../halle/playground/data/coco/val2017"
	// defaultDatasetDir holds the POPE benchmark files.
	defaultDatasetDir = "pope_coco"
	// defaultEditorHparams is the editing-algorithm hyperparameter file.
	defaultEditorHparams = "hparams/llama-7b.yaml"
)

// Config represents the full harness configuration for one run. Flags
// override file values through viper before validation.
type Config struct {
	Model             string  `json:"model"`
	Dataset           string  `json:"dataset"`
	PopeType          string  `json:"popeType"`
	DatasetDir        string  `json:"datasetDir,omitempty"`
	DataPath          string  `json:"dataPath,omitempty"`
	FallbackDataPath  string  `json:"fallbackDataPath,omitempty"`
	BatchSize         int     `json:"batchSize,omitempty"`
	Beam              int     `json:"beam,omitempty"`
	Sample            bool    `json:"sample,omitempty"`
	ScaleFactor       float64 `json:"scaleFactor,omitempty"`
	Threshold         int     `json:"threshold,omitempty"`
	NumAttnCandidates int     `json:"numAttnCandidates,omitempty"`
	PenaltyWeights    float64 `json:"penaltyWeights,omitempty"`
	Seed              int64   `json:"seed"`
	EditOnly          bool    `json:"editOnly,omitempty"`
	EditorHparams     string  `json:"editorHparams,omitempty"`
	EditedModelDir    string  `json:"editedModelDir,omitempty"`
	LogDir            string  `json:"logDir,omitempty"`
	LogFile           string  `json:"logFile,omitempty"`
	HistoryDB         string  `json:"historyDb,omitempty"`
	Debug             bool    `json:"debug,omitempty"`
	ConfigPath        string  `json:"-"`
}

// Load reads the configuration file at path, applies defaults, and
// validates the closed-set fields. A missing file at the default path is
// not an error; flags may supply everything.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	var config Config
	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&config); err != nil {
			return Config{}, fmt.Errorf("could not parse config file %q: %w", path, err)
		}
		config.ConfigPath = path
	case errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath:
		// Defaults plus flags carry the run.
	default:
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}

	config.ApplyDefaults()
	return config, nil
}

// ApplyDefaults fills unset fields with the standard POPE evaluation values.
func (c *Config) ApplyDefaults() {
	if c.Dataset == "" {
		c.Dataset = "coco"
	}
	if c.DatasetDir == "" {
		c.DatasetDir = defaultDatasetDir
	}
	if c.DataPath == "" {
		c.DataPath = defaultDataPath
	}
	if c.FallbackDataPath == "" {
		c.FallbackDataPath = defaultFallbackDataPath
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1
	}
	if c.Beam <= 0 {
		c.Beam = 1
	}
	if c.ScaleFactor == 0 {
		c.ScaleFactor = 50
	}
	if c.Threshold == 0 {
		c.Threshold = 15
	}
	if c.NumAttnCandidates == 0 {
		c.NumAttnCandidates = 5
	}
	if c.PenaltyWeights == 0 {
		c.PenaltyWeights = 1.0
	}
	if c.EditorHparams == "" {
		c.EditorHparams = defaultEditorHparams
	}
	if c.EditedModelDir == "" {
		c.EditedModelDir = "edited_model"
	}
}

// ResolvedLogDir returns the run-report directory, deriving the default
// from the dataset after any flag overrides have landed.
func (c Config) ResolvedLogDir() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	return filepath.Join("log", c.Dataset)
}

// Validate rejects unknown model families, datasets, and perturbation
// types before any work starts. No flag value is silently ignored.
func (c Config) Validate() error {
	if _, err := prompt.ParseFamily(c.Model); err != nil {
		return err
	}
	if _, err := pope.BenchmarkPath(c.DatasetDir, c.Dataset, c.PopeType); err != nil {
		return err
	}
	if c.BatchSize != 1 {
		return fmt.Errorf("invalid configuration: batch size must be 1, generation is strictly sequential (got %d)", c.BatchSize)
	}
	return nil
}

// Family returns the validated model family.
func (c Config) Family() (prompt.Family, error) {
	return prompt.ParseFamily(c.Model)
}

// BenchmarkFile resolves the benchmark path for the configured dataset and
// perturbation type.
func (c Config) BenchmarkFile() (string, error) {
	return pope.BenchmarkPath(c.DatasetDir, c.Dataset, c.PopeType)
}

// Decoding returns the generation settings assembled from the configured
// decoding flags. MaxNewTokens is fixed by the evaluation protocol.
func (c Config) Decoding() vlm.DecodingConfig {
	cfg := vlm.DefaultDecoding()
	cfg.UseNucleusSampling = c.Sample
	cfg.NumBeams = c.Beam
	cfg.ScaleFactor = c.ScaleFactor
	cfg.Threshold = c.Threshold
	cfg.NumAttnCandidates = c.NumAttnCandidates
	cfg.PenaltyWeights = c.PenaltyWeights
	return cfg
}

// EditedModelPath returns where the edited model is persisted, keyed by
// model family and perturbation type.
func (c Config) EditedModelPath() string {
	return filepath.Join(c.EditedModelDir, c.Model, fmt.Sprintf("pope-1000-%s", c.PopeType))
}

// LogFilePath returns the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return "halledit.log"
}
