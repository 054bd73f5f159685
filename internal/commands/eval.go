// internal/commands/eval.go
package halledit

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hujiayu1223/knowledge-editing/internal/appconfig"
	"github.com/hujiayu1223/knowledge-editing/internal/runner"
	"github.com/hujiayu1223/knowledge-editing/internal/store"
	"github.com/hujiayu1223/knowledge-editing/internal/vlm"
)

// newCollaborators constructs the external model and editor through the
// registered vlm bindings. Swappable for tests.
var newCollaborators = func(ctx context.Context, cfg *appconfig.Config) (vlm.VisionLanguageModel, vlm.Editor, error) {
	family, err := cfg.Family()
	if err != nil {
		return nil, nil, err
	}
	evalConfig, err := family.EvalConfigPath()
	if err != nil {
		return nil, nil, err
	}
	model, err := vlm.NewModel(ctx, cfg.Model, evalConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("error constructing model %s: %w", cfg.Model, err)
	}
	editor, err := vlm.NewEditor()
	if err != nil {
		return nil, nil, fmt.Errorf("error constructing editor: %w", err)
	}
	return model, editor, nil
}

// runPipeline builds the collaborators and executes one run. The
// configuration was validated in the root command's PersistentPreRunE.
func runPipeline(ctx context.Context, cfg appconfig.Config) error {
	model, editor, err := newCollaborators(ctx, &cfg)
	if err != nil {
		return err
	}

	var history *store.DB
	if cfg.HistoryDB != "" {
		history, err = store.Open(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("error opening run history: %w", err)
		}
		defer history.Close()
	}

	return runner.New(cfg, model, editor, history).Run(ctx)
}

// evalCmd implements 'eval', the full edit-and-evaluate pipeline.
var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Edit the model and evaluate it on the POPE holdout sample",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *GetConfig()
		return runPipeline(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
}
