// internal/commands/show_config.go
package halledit

import (
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

// showConfigCmd implements 'show-config', which dumps the merged
// configuration after file values and flag overrides are applied.
var showConfigCmd = &cobra.Command{
	Use:   "show-config",
	Short: "Show the merged run configuration",
	Run: func(cmd *cobra.Command, args []string) {
		pp.Println(GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(showConfigCmd)
}
