// internal/runner/runner.go

// Package runner drives one evaluation run end to end: load, partition,
// materialize images, build the edit request set, apply the edit, and
// optionally evaluate the edited model on the held-out sample.
//
// The pipeline is strictly sequential. Each generate call blocks until the
// model answers; there is no pipelining, no retry, and no partial-result
// salvage. The first failure aborts the run.
package runner

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hujiayu1223/knowledge-editing/internal/appconfig"
	"github.com/hujiayu1223/knowledge-editing/internal/classify"
	"github.com/hujiayu1223/knowledge-editing/internal/images"
	"github.com/hujiayu1223/knowledge-editing/internal/logging"
	"github.com/hujiayu1223/knowledge-editing/internal/metrics"
	"github.com/hujiayu1223/knowledge-editing/internal/pope"
	"github.com/hujiayu1223/knowledge-editing/internal/prompt"
	"github.com/hujiayu1223/knowledge-editing/internal/store"
	"github.com/hujiayu1223/knowledge-editing/internal/vlm"
)

// Runner holds the collaborators and configuration for one run.
type Runner struct {
	Cfg      appconfig.Config
	Model    vlm.VisionLanguageModel
	Editor   vlm.Editor
	Resolver *images.Resolver
	History  *store.DB
}

// New assembles a Runner from validated configuration and constructed
// collaborators. History is optional and may be nil.
func New(cfg appconfig.Config, model vlm.VisionLanguageModel, editor vlm.Editor, history *store.DB) *Runner {
	return &Runner{
		Cfg:    cfg,
		Model:  model,
		Editor: editor,
		Resolver: &images.Resolver{
			Primary:  cfg.DataPath,
			Fallback: cfg.FallbackDataPath,
			Loader:   images.RawLoader{},
		},
		History: history,
	}
}

// Run executes the pipeline. In edit-only mode it returns right after the
// edited model is saved; otherwise it evaluates the edited model on the
// test sample and persists a metrics report.
func (r *Runner) Run(ctx context.Context) error {
	start := time.Now()
	runID := ulid.Make().String()

	family, err := r.Cfg.Family()
	if err != nil {
		return err
	}

	benchPath, err := r.Cfg.BenchmarkFile()
	if err != nil {
		return err
	}
	logging.LogStage("load", "reading benchmark %s", benchPath)
	records, err := pope.LoadDataset(benchPath)
	if err != nil {
		return err
	}

	prompts := make(map[int]string, len(records))
	imageNames := make(map[int]string, len(records))
	targets := make(map[int]string, len(records))
	counters := make(map[int]string, len(records))
	truth := make(map[int]int, len(records))
	for _, rec := range records {
		rendered, err := prompt.Render(family, rec.Text)
		if err != nil {
			return err
		}
		prompts[rec.QuestionID] = rendered
		imageNames[rec.QuestionID] = rec.Image
		targets[rec.QuestionID] = rec.Label
		counters[rec.QuestionID] = rec.CounterLabel()
		truth[rec.QuestionID] = classify.No
		if rec.IsYes() {
			truth[rec.QuestionID] = classify.Yes
		}
	}

	// One explicitly seeded generator, edit sample drawn before test
	// sample, so a single seed reproduces the whole partition.
	rng := rand.New(rand.NewSource(r.Cfg.Seed))
	part, err := pope.NewPartition(records, rng)
	if err != nil {
		return err
	}
	logging.LogStage("partition", "sampled %d edit ids and %d test ids (seed %d)", len(part.EditSample), len(part.TestSample), r.Cfg.Seed)

	set := vlm.NewRequestSet(len(part.EditSample))
	for _, id := range part.EditSample {
		img, err := r.Resolver.Resolve(imageNames[id])
		if err != nil {
			return err
		}
		set.Add(id, img, prompts[id], targets[id], counters[id])
	}
	if err := set.Validate(); err != nil {
		return err
	}

	params, err := vlm.LoadEditorParams(r.Cfg.EditorHparams)
	if err != nil {
		return err
	}

	logging.LogStage("edit", "editing %s with %d requests", r.Cfg.Model, len(set.IDs))
	edited, err := r.Editor.Edit(ctx, r.Model, set, vlm.EditOptions{
		Params:   params,
		Decoding: r.Cfg.Decoding(),
	})
	if err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}

	savePath := r.Cfg.EditedModelPath()
	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		return fmt.Errorf("error creating edited-model directory: %w", err)
	}
	if err := edited.Save(savePath); err != nil {
		return fmt.Errorf("error saving edited model: %w", err)
	}
	logging.LogStage("edit", "edited model saved to %s", savePath)

	if r.Cfg.EditOnly {
		return nil
	}

	preds, labels, err := r.evaluate(ctx, edited, part.TestSample, prompts, imageNames, truth)
	if err != nil {
		return err
	}

	report, err := metrics.Compute(preds, labels)
	if err != nil {
		// Accumulated predictions are discarded; the operator reruns
		// with different sampling.
		return err
	}

	rec := metrics.RunRecord{
		RunID:     runID,
		Model:     r.Cfg.Model,
		Dataset:   r.Cfg.Dataset,
		PopeType:  r.Cfg.PopeType,
		Seed:      r.Cfg.Seed,
		Decoding:  r.Cfg.Decoding(),
		Report:    report,
		DurMillis: float64(time.Since(start).Milliseconds()),
	}
	if err := metrics.AppendRecord(r.Cfg.ResolvedLogDir(), r.Cfg.PopeType, r.Cfg.Seed, rec); err != nil {
		return err
	}
	if r.History != nil {
		r.History.RecordRun(start, rec)
	}

	printSummary(os.Stdout, rec)
	return nil
}

// evaluate runs the sequential generation loop over the test sample in
// sampled order, classifying each answer as it arrives.
func (r *Runner) evaluate(ctx context.Context, model vlm.VisionLanguageModel, testIDs []int, prompts, imageNames map[int]string, truth map[int]int) ([]int, []int, error) {
	logging.LogStage("eval", "evaluating %d test examples", len(testIDs))

	preds := make([]int, 0, len(testIDs))
	labels := make([]int, 0, len(testIDs))
	for _, id := range testIDs {
		img, err := r.Resolver.Resolve(imageNames[id])
		if err != nil {
			return nil, nil, err
		}
		out, err := model.Generate(ctx, img, prompts[id], r.Cfg.Decoding())
		if err != nil {
			return nil, nil, fmt.Errorf("generate failed for id %d: %w", id, err)
		}
		preds = append(preds, classify.Response(out))
		labels = append(labels, truth[id])
	}
	return preds, labels, nil
}
