// internal/appconfig/appconfig_test.go
package appconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hujiayu1223/knowledge-editing/internal/pope"
	"github.com/hujiayu1223/knowledge-editing/internal/prompt"
)

// TestLoad verifies that a valid configuration file loads with defaults
// applied, and that an unreadable file surfaces an error rather than
// falling back silently.
func TestLoad(t *testing.T) {
	validConfig := `{
        "model": "minigpt4",
        "dataset": "coco",
        "popeType": "adversarial",
        "seed": 0
    }`
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(validConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() with valid config failed: %v", err)
	}
	if cfg.Model != "minigpt4" || cfg.PopeType != "adversarial" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.ScaleFactor != 50 || cfg.Threshold != 15 || cfg.NumAttnCandidates != 5 || cfg.PenaltyWeights != 1.0 {
		t.Fatalf("decoding defaults not applied: %+v", cfg)
	}
	if cfg.Beam != 1 || cfg.BatchSize != 1 {
		t.Fatalf("expected beam and batch defaults of 1, got %+v", cfg)
	}
	if cfg.Decoding().MaxNewTokens != 10 {
		t.Fatalf("expected fixed maxNewTokens=10, got %d", cfg.Decoding().MaxNewTokens)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestValidateUnknownModel(t *testing.T) {
	cfg := Config{Model: "gpt-oss", Dataset: "coco", PopeType: "random"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); !errors.Is(err, prompt.ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
}

func TestValidateUnknownPopeType(t *testing.T) {
	cfg := Config{Model: "llava-1.5", Dataset: "coco", PopeType: "tricky"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); !errors.Is(err, pope.ErrUnknownPopeType) {
		t.Fatalf("expected ErrUnknownPopeType, got %v", err)
	}
}

func TestValidateRejectsBatchSize(t *testing.T) {
	cfg := Config{Model: "minigpt4", Dataset: "coco", PopeType: "random", BatchSize: 4}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for batch size other than 1")
	}
}

func TestResolvedLogDirFollowsDataset(t *testing.T) {
	cfg := Config{Dataset: "gqa"}
	if got, want := cfg.ResolvedLogDir(), filepath.Join("log", "gqa"); got != want {
		t.Fatalf("ResolvedLogDir = %q, want %q", got, want)
	}
	cfg.LogDir = "elsewhere"
	if got := cfg.ResolvedLogDir(); got != "elsewhere" {
		t.Fatalf("explicit log dir ignored, got %q", got)
	}
}

func TestEditedModelPath(t *testing.T) {
	cfg := Config{Model: "minigpt4", Dataset: "coco", PopeType: "adversarial"}
	cfg.ApplyDefaults()
	want := filepath.Join("edited_model", "minigpt4", "pope-1000-adversarial")
	if got := cfg.EditedModelPath(); got != want {
		t.Fatalf("EditedModelPath = %q, want %q", got, want)
	}
}
