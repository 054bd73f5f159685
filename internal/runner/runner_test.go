// internal/runner/runner_test.go
package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hujiayu1223/knowledge-editing/internal/appconfig"
	"github.com/hujiayu1223/knowledge-editing/internal/images"
	"github.com/hujiayu1223/knowledge-editing/internal/metrics"
	"github.com/hujiayu1223/knowledge-editing/internal/vlm"
)

// fakeModel answers every question with a fixed response and records how
// often Generate ran.
type fakeModel struct {
	response      string
	generateCalls int
	savedTo       string
}

func (m *fakeModel) Generate(_ context.Context, _ images.Image, _ string, _ vlm.DecodingConfig) (string, error) {
	m.generateCalls++
	return m.response, nil
}

func (m *fakeModel) Save(path string) error {
	m.savedTo = path
	return os.WriteFile(path, []byte("weights"), 0o644)
}

// fakeEditor captures the request set and hands back a replacement model.
type fakeEditor struct {
	got     *vlm.RequestSet
	returns vlm.VisionLanguageModel
}

func (e *fakeEditor) Edit(_ context.Context, _ vlm.VisionLanguageModel, set *vlm.RequestSet, _ vlm.EditOptions) (vlm.VisionLanguageModel, error) {
	e.got = set
	return e.returns, nil
}

// setupRun writes a 3000-record benchmark, one shared image, and editor
// hparams under a temp root, returning a validated config.
func setupRun(t *testing.T, editOnly bool) appconfig.Config {
	t.Helper()
	root := t.TempDir()

	datasetDir := filepath.Join(root, "pope_coco")
	if err := os.MkdirAll(datasetDir, 0o755); err != nil {
		t.Fatalf("mkdir dataset dir: %v", err)
	}
	var lines []string
	for i := 0; i < 3000; i++ {
		label := "yes"
		if i%2 == 1 {
			label = "no"
		}
		lines = append(lines, fmt.Sprintf(`{"question_id": %d, "image": "shared.jpg", "text": "Is there a dog in the image?", "label": %q}`, i, label))
	}
	if err := os.WriteFile(filepath.Join(datasetDir, "coco_pope_random.json"), []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write benchmark: %v", err)
	}

	dataPath := filepath.Join(root, "val2014")
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		t.Fatalf("mkdir data path: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dataPath, "shared.jpg"), []byte("jpegbytes"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	hparams := filepath.Join(root, "llama-7b.yaml")
	if err := os.WriteFile(hparams, []byte("arch: llama-7b\nlr: 0.0005\nnum_steps: 25\n"), 0o644); err != nil {
		t.Fatalf("write hparams: %v", err)
	}

	cfg := appconfig.Config{
		Model:            "minigpt4",
		Dataset:          "coco",
		PopeType:         "random",
		DatasetDir:       datasetDir,
		DataPath:         dataPath,
		FallbackDataPath: filepath.Join(root, "unused-fallback"),
		Seed:             0,
		EditOnly:         editOnly,
		EditorHparams:    hparams,
		EditedModelDir:   filepath.Join(root, "edited_model"),
		LogDir:           filepath.Join(root, "log"),
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config invalid: %v", err)
	}
	return cfg
}

func TestRunFullPipeline(t *testing.T) {
	cfg := setupRun(t, false)
	base := &fakeModel{response: "Yes, it is."}
	edited := &fakeModel{response: "Yes, it is."}
	editor := &fakeEditor{returns: edited}

	r := New(cfg, base, editor, nil)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if editor.got == nil {
		t.Fatal("editor never received a request set")
	}
	if len(editor.got.IDs) != 1000 {
		t.Fatalf("expected 1000 edit requests, got %d", len(editor.got.IDs))
	}
	for _, id := range editor.got.IDs {
		if id < 0 || id >= 2000 {
			t.Fatalf("edit request id %d outside edit pool", id)
		}
	}

	if base.generateCalls != 0 {
		t.Fatalf("base model should never generate, got %d calls", base.generateCalls)
	}
	if edited.generateCalls != 500 {
		t.Fatalf("expected 500 generate calls on the edited model, got %d", edited.generateCalls)
	}
	if edited.savedTo != cfg.EditedModelPath() {
		t.Fatalf("edited model saved to %q, want %q", edited.savedTo, cfg.EditedModelPath())
	}

	f, err := os.Open(metrics.ReportPath(cfg.LogDir, cfg.PopeType, cfg.Seed))
	if err != nil {
		t.Fatalf("open run log: %v", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatal("expected a run record in the log")
	}
	var rec metrics.RunRecord
	if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal run record: %v", err)
	}
	if rec.Report.TP+rec.Report.FP+rec.Report.TN+rec.Report.FN != 500 {
		t.Fatalf("confusion counts do not sum to 500: %+v", rec.Report.Confusion)
	}
	// Always-yes answers: yes ratio 1, no true/false negatives.
	if rec.Report.YesRatio != 1.0 || rec.Report.TN != 0 || rec.Report.FN != 0 {
		t.Fatalf("unexpected report for always-yes model: %+v", rec.Report)
	}
	if rec.RunID == "" || rec.Model != "minigpt4" {
		t.Fatalf("run record missing identity fields: %+v", rec)
	}
	if rec.Decoding != cfg.Decoding() {
		t.Fatalf("run record decoding echo %+v, want %+v", rec.Decoding, cfg.Decoding())
	}
}

func TestRunEditOnlyStopsBeforeEvaluation(t *testing.T) {
	cfg := setupRun(t, true)
	edited := &fakeModel{response: "Yes."}
	editor := &fakeEditor{returns: edited}

	r := New(cfg, &fakeModel{response: "Yes."}, editor, nil)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if edited.generateCalls != 0 {
		t.Fatalf("edit-only run must not generate, got %d calls", edited.generateCalls)
	}
	if _, err := os.Stat(cfg.EditedModelPath()); err != nil {
		t.Fatalf("edited model artifact missing: %v", err)
	}
	if _, err := os.Stat(metrics.ReportPath(cfg.LogDir, cfg.PopeType, cfg.Seed)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("edit-only run must not write a report, stat err=%v", err)
	}
}

func TestRunDegenerateMetricsWriteNoReport(t *testing.T) {
	cfg := setupRun(t, false)
	edited := &fakeModel{response: "No."}
	editor := &fakeEditor{returns: edited}

	r := New(cfg, &fakeModel{response: "No."}, editor, nil)
	err := r.Run(context.Background())
	var degenerate *metrics.DegenerateMetricError
	if !errors.As(err, &degenerate) {
		t.Fatalf("expected DegenerateMetricError, got %v", err)
	}

	if _, statErr := os.Stat(metrics.ReportPath(cfg.LogDir, cfg.PopeType, cfg.Seed)); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("degenerate run must not write a report, stat err=%v", statErr)
	}
}

func TestRunMissingImageIsFatal(t *testing.T) {
	cfg := setupRun(t, false)
	if err := os.Remove(filepath.Join(cfg.DataPath, "shared.jpg")); err != nil {
		t.Fatalf("remove image: %v", err)
	}

	r := New(cfg, &fakeModel{response: "Yes."}, &fakeEditor{returns: &fakeModel{response: "Yes."}}, nil)
	if err := r.Run(context.Background()); !errors.Is(err, images.ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}

func TestRunReproducibleSampling(t *testing.T) {
	cfg := setupRun(t, true)
	first := &fakeEditor{returns: &fakeModel{response: "Yes."}}
	second := &fakeEditor{returns: &fakeModel{response: "Yes."}}

	if err := New(cfg, &fakeModel{response: "Yes."}, first, nil).Run(context.Background()); err != nil {
		t.Fatalf("first Run error: %v", err)
	}
	if err := New(cfg, &fakeModel{response: "Yes."}, second, nil).Run(context.Background()); err != nil {
		t.Fatalf("second Run error: %v", err)
	}

	if len(first.got.IDs) != len(second.got.IDs) {
		t.Fatalf("sample sizes differ: %d vs %d", len(first.got.IDs), len(second.got.IDs))
	}
	for i := range first.got.IDs {
		if first.got.IDs[i] != second.got.IDs[i] {
			t.Fatalf("same seed produced different edit samples at index %d", i)
		}
	}
}
