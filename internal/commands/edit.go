// internal/commands/edit.go
package halledit

import (
	"github.com/spf13/cobra"
)

// editCmd implements 'edit', which stops right after the edited model is
// saved. This short circuit is a first-class mode, not a debugging
// leftover: deriving an edit and evaluating it are often run separately.
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Derive and save the edited model without evaluating it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *GetConfig()
		cfg.EditOnly = true
		return runPipeline(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
