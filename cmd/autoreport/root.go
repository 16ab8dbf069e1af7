package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/autoreport/internal/aggregate"
)

// NewRootCmd creates the root command for autoreport.
// The root command itself generates the report from its positional arguments.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autoreport FILE...",
		Short: "Generate an HTML report from model evaluation results",
		Long: `autoreport reads one result file per model and writes an HTML report.

Each file is a CSV (or TSV, by .tsv/.tab extension) whose first column
identifies an image and whose "correct" column tells whether the model
identified it correctly. The model name is the file name without its
extension and without the "_results" suffix, so VGG19_results.csv is
reported as VGG19.

The report contains a summary of every model (dataset, accuracy,
misidentified images), the number of images misidentified by all models,
and the full results table of each model, in the order the files are given.

Settings such as the title and output path are read from a configuration
file; run 'autoreport init' to create one.

Examples:
  # Write outputs/report.html
  autoreport VGG19_results.csv ResNet50_results.csv

  # Use a specific configuration file
  AUTOREPORT_CONFIG=eval.yaml autoreport results/*.csv`,
		Version:       getVersion(),
		Args:          requireInputs,
		RunE:          runRootCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// requireInputs rejects a run without result files.
func requireInputs(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: provide at least one result file", aggregate.ErrEmptyInput)
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
