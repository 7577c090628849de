// Command lefse-format converts a labelled abundance matrix into the dataset
// consumed by LEfSe: sorted samples, contiguous class and subclass slices, a
// completed feature hierarchy and optional per-sample normalization.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lefseformat/internal/config"
	"lefseformat/internal/logging"
	"lefseformat/internal/runner"
)

var (
	// Global flags
	configPath string
	verbose    bool
	quiet      bool
	flags      formatFlags

	// Resolved in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// formatFlags mirrors the config fields that can be set from the command line.
type formatFlags struct {
	featuresOn      string
	class           int
	subclass        int
	subject         int
	normValue       float64
	missingPolicy   string
	subclassMinCard int
	mergeSmall      bool
	biomClass       string
	biomSubclass    string
	outputFormat    string
	outputTable     string
}

// rootCmd formats a single input file
var rootCmd = &cobra.Command{
	Use:   "lefse-format INPUT_FILE OUTPUT_FILE",
	Short: "Format an abundance matrix for LEfSe",
	Long: `Reads a tab-separated matrix (or a BIOM 1.0 JSON table), sorts samples by
class, subclass and subject, completes the feature hierarchy given with | or .
and writes the formatted dataset.

Feature names must not contain | or . for any other reason.`,
	Args:              cobra.ExactArgs(2),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runFormat,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML configuration file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Do not print the run summary")

	pf.StringVarP(&flags.featuresOn, "features_on", "f", "r", "Features on rows (r) or on columns (c)")
	pf.IntVarP(&flags.class, "class", "c", 1, "Row used as class [1..n_feats]")
	pf.IntVarP(&flags.subclass, "subclass", "s", 0, "Row used as subclass, 0 for none")
	pf.IntVarP(&flags.subject, "subject", "u", 0, "Row used as subject, 0 for none")
	pf.Float64VarP(&flags.normValue, "norm", "o", -1.0, "Normalization value, negative for none")
	pf.StringVarP(&flags.missingPolicy, "missing", "m", "d", "Missing values: f drops features, s drops samples")
	pf.IntVarP(&flags.subclassMinCard, "subclass_min_card", "n", 10, "Minimum cardinality of each subclass")
	pf.BoolVar(&flags.mergeSmall, "merge_small_subclasses", false, "Merge subclasses smaller than --subclass_min_card")
	pf.StringVar(&flags.biomClass, "biom_c", "", "BIOM input: metadata field used as class")
	pf.StringVar(&flags.biomSubclass, "biom_s", "", "BIOM input: metadata field used as subclass")
	pf.StringVar(&flags.outputFormat, "output_format", "json", "Dataset format (json, sqlite)")
	rootCmd.Flags().StringVar(&flags.outputTable, "output_table", "", "Also write the formatted table as tab-separated text")

	rootCmd.AddCommand(batchCmd, inspectCmd)
}

// setup loads the configuration, applies explicit flags and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, loaded)
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	logger, err = logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.Stage(logger, logging.CategoryBoot).Debug("configuration loaded",
		zap.String("config", configPath),
		zap.String("features_on", cfg.Format.FeaturesOn),
		zap.Float64("norm", cfg.Format.NormValue),
		zap.String("output_format", cfg.Output.Format),
	)
	return nil
}

// applyFlagOverrides copies only the flags the user set, so file and
// environment values survive flag defaults.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	set := cmd.Flags().Changed
	if set("features_on") {
		c.Format.FeaturesOn = flags.featuresOn
	}
	if set("class") {
		c.Format.Class = flags.class
	}
	if set("subclass") {
		c.Format.Subclass = flags.subclass
	}
	if set("subject") {
		c.Format.Subject = flags.subject
	}
	if set("norm") {
		c.Format.NormValue = flags.normValue
	}
	if set("missing") {
		c.Format.MissingPolicy = flags.missingPolicy
	}
	if set("subclass_min_card") {
		c.Format.SubclassMinCard = flags.subclassMinCard
	}
	if set("merge_small_subclasses") {
		c.Format.MergeSmallSubclasses = flags.mergeSmall
	}
	if set("biom_c") {
		c.Format.BIOMClass = flags.biomClass
	}
	if set("biom_s") {
		c.Format.BIOMSubclass = flags.biomSubclass
	}
	if set("output_format") {
		c.Output.Format = flags.outputFormat
	}
	if set("output_table") {
		c.Output.Table = flags.outputTable
	}
	if verbose {
		c.Logging.Level = "debug"
	}
}

func runFormat(cmd *cobra.Command, args []string) error {
	job := runner.Job{Input: args[0], Output: args[1], Table: cfg.Output.Table}
	res, err := runner.New(cfg, logger).Run(cmd.Context(), job)
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), renderResults([]*runner.Result{res}))
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
