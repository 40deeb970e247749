// Command mrinterp interprets SCHRODINGER restraint files against a
// coordinate model and writes the restraints as NMR-STAR loops.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rmera/mrchem/config"
)

var (
	// Global flags
	verbose    bool
	configFile string
	modelFile  string
	outDir     string

	// Per-command flags
	reasonsFile string
	reportFile  string
	saveReasons string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mrinterp",
	Short: "Interpret NMR restraint files against a coordinate model",
	Long: `mrinterp reads restraint entities extracted from SCHRODINGER files
(JSON lines or YAML), matches their atom selections against an mmCIF model
and writes the interpreted restraints as NMR-STAR loops, together with the
diagnostics and the reasons for a second pass.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		logger, err = cfg.Logger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run [entities]",
	Short: "Interpret one restraint file",
	Long: `Interprets the entities of one file in a single pass. The NMR-STAR
loops go to the standard output, or to <out>/<name>.str when --out is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runFile,
}

var batchCmd = &cobra.Command{
	Use:   "batch [entities...]",
	Short: "Interpret several restraint files in parallel",
	Long: `Interprets every file with its own context, up to the configured
parallelism at a time. For each file, <out>/<name>.str holds the loops and
<out>/<name>.json the report.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

var reparseCmd = &cobra.Command{
	Use:   "reparse [entities]",
	Short: "Interpret a file twice, feeding the reasons of the first pass to the second",
	Args:  cobra.ExactArgs(1),
	RunE:  runReparse,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&modelFile, "model", "m", "", "mmCIF coordinate file, may be gzip or zstd compressed")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "", "Output directory")
	_ = rootCmd.MarkPersistentFlagRequired("model")

	runCmd.Flags().StringVar(&reasonsFile, "reasons", "", "Reasons of a previous pass (JSON)")
	runCmd.Flags().StringVar(&reportFile, "report", "", "Write the JSON report to this file")
	reparseCmd.Flags().StringVar(&reportFile, "report", "", "Write the JSON reports of both passes to this file")
	reparseCmd.Flags().StringVar(&saveReasons, "save-reasons", "", "Write the reasons of the first pass to this file")

	rootCmd.AddCommand(runCmd, batchCmd, reparseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
