// internal/commands/root.go
package halledit

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hujiayu1223/knowledge-editing/internal/appconfig"
	"github.com/hujiayu1223/knowledge-editing/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "halledit",
	Short: "halledit — POPE hallucination evaluation and model-editing harness",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := appconfig.Load(cfgFile)
		if err != nil {
			return err
		}

		// Flags win over config-file values, and no flag is silently
		// ignored: every one maps onto a config field. Defaults were
		// applied inside Load, before this overlay, so an explicit
		// zero from a flag sticks.
		flags := cmd.Root().PersistentFlags()
		if flags.Changed("model") {
			cfg.Model = viper.GetString("model")
		}
		if flags.Changed("dataset") {
			cfg.Dataset = viper.GetString("dataset")
		}
		if flags.Changed("pope-type") {
			cfg.PopeType = viper.GetString("popeType")
		}
		if flags.Changed("dataset-dir") {
			cfg.DatasetDir = viper.GetString("datasetDir")
		}
		if flags.Changed("data-path") {
			cfg.DataPath = viper.GetString("dataPath")
		}
		if flags.Changed("batch-size") {
			cfg.BatchSize = viper.GetInt("batchSize")
		}
		if flags.Changed("beam") {
			cfg.Beam = viper.GetInt("beam")
		}
		if flags.Changed("sample") {
			cfg.Sample = viper.GetBool("sample")
		}
		if flags.Changed("scale-factor") {
			cfg.ScaleFactor = viper.GetFloat64("scaleFactor")
		}
		if flags.Changed("threshold") {
			cfg.Threshold = viper.GetInt("threshold")
		}
		if flags.Changed("num-attn-candidates") {
			cfg.NumAttnCandidates = viper.GetInt("numAttnCandidates")
		}
		if flags.Changed("penalty-weights") {
			cfg.PenaltyWeights = viper.GetFloat64("penaltyWeights")
		}
		if flags.Changed("seed") {
			cfg.Seed = viper.GetInt64("seed")
		}
		if flags.Changed("editor-hparams") {
			cfg.EditorHparams = viper.GetString("editorHparams")
		}
		if flags.Changed("edited-model-dir") {
			cfg.EditedModelDir = viper.GetString("editedModelDir")
		}
		if flags.Changed("log-dir") {
			cfg.LogDir = viper.GetString("logDir")
		}
		if flags.Changed("log-file") {
			cfg.LogFile = viper.GetString("logFile")
		}
		if flags.Changed("history-db") {
			cfg.HistoryDB = viper.GetString("historyDb")
		}
		if flags.Changed("debug") {
			cfg.Debug = viper.GetBool("debug")
		}
		currentConfig = &cfg

		// show-config stays usable on a broken configuration; every
		// other subcommand fails before any work starts.
		if cmd.Name() != "show-config" {
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		if err := logging.Init(cfg.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().String("model", "", "vision-language model family (minigpt4, instructblip, lrv_instruct, shikra, llava-1.5)")
	rootCmd.PersistentFlags().String("dataset", "coco", "benchmark dataset family (coco, aokvqa, gqa)")
	rootCmd.PersistentFlags().String("pope-type", "", "POPE perturbation type (random, popular, adversarial)")
	rootCmd.PersistentFlags().String("dataset-dir", "", "directory containing the POPE benchmark files")
	rootCmd.PersistentFlags().String("data-path", "", "primary image data directory")
	rootCmd.PersistentFlags().Int("batch-size", 1, "batch size")
	rootCmd.PersistentFlags().Int("beam", 1, "beam count for generation")
	rootCmd.PersistentFlags().Bool("sample", false, "enable nucleus sampling")
	rootCmd.PersistentFlags().Float64("scale-factor", 50, "attention-rescaling scale factor")
	rootCmd.PersistentFlags().Int("threshold", 15, "attention-entropy threshold")
	rootCmd.PersistentFlags().Int("num-attn-candidates", 5, "attention candidate count")
	rootCmd.PersistentFlags().Float64("penalty-weights", 1.0, "anti-hallucination penalty weight")
	rootCmd.PersistentFlags().Int64("seed", 0, "random seed for partition sampling")
	rootCmd.PersistentFlags().String("editor-hparams", "", "editor hyperparameter YAML file")
	rootCmd.PersistentFlags().String("edited-model-dir", "", "directory for edited model artifacts")
	rootCmd.PersistentFlags().String("log-dir", "", "directory for run-report JSONL files")
	rootCmd.PersistentFlags().String("log-file", "", "path to the application log file")
	rootCmd.PersistentFlags().String("history-db", "", "optional SQLite run-history database")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	_ = viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("dataset", rootCmd.PersistentFlags().Lookup("dataset"))
	_ = viper.BindPFlag("popeType", rootCmd.PersistentFlags().Lookup("pope-type"))
	_ = viper.BindPFlag("datasetDir", rootCmd.PersistentFlags().Lookup("dataset-dir"))
	_ = viper.BindPFlag("dataPath", rootCmd.PersistentFlags().Lookup("data-path"))
	_ = viper.BindPFlag("batchSize", rootCmd.PersistentFlags().Lookup("batch-size"))
	_ = viper.BindPFlag("beam", rootCmd.PersistentFlags().Lookup("beam"))
	_ = viper.BindPFlag("sample", rootCmd.PersistentFlags().Lookup("sample"))
	_ = viper.BindPFlag("scaleFactor", rootCmd.PersistentFlags().Lookup("scale-factor"))
	_ = viper.BindPFlag("threshold", rootCmd.PersistentFlags().Lookup("threshold"))
	_ = viper.BindPFlag("numAttnCandidates", rootCmd.PersistentFlags().Lookup("num-attn-candidates"))
	_ = viper.BindPFlag("penaltyWeights", rootCmd.PersistentFlags().Lookup("penalty-weights"))
	_ = viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
	_ = viper.BindPFlag("editorHparams", rootCmd.PersistentFlags().Lookup("editor-hparams"))
	_ = viper.BindPFlag("editedModelDir", rootCmd.PersistentFlags().Lookup("edited-model-dir"))
	_ = viper.BindPFlag("logDir", rootCmd.PersistentFlags().Lookup("log-dir"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("historyDb", rootCmd.PersistentFlags().Lookup("history-db"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

// GetConfig returns the loaded configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
