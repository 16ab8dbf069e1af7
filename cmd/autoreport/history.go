package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/spf13/cobra"

	"github.com/nao1215/autoreport/internal/config"
	"github.com/nao1215/autoreport/internal/database"
)

// Constants for accuracy direction.
const (
	directionImproved  = "improved"
	directionWorsened  = "worsened"
	directionUnchanged = "unchanged"
)

// accuracyEpsilon absorbs floating point noise when comparing accuracies.
const accuracyEpsilon = 1e-9

// NewHistoryCmd creates the history command.
// This command compares a model's accuracy with earlier runs stored in the
// history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [model]",
		Short: "Compare model results with earlier reports",
		Long: `History displays how a model changed between generated reports.

Reports are only recorded when saveHistory is enabled in the configuration
file. For a model, this command compares the latest two records and shows:
- The change in accuracy
- Images the model newly misidentifies
- Images the model no longer misidentifies

Examples:
  # Compare the latest two reports of a model
  autoreport history VGG19

  # List every recorded result of a model
  autoreport history --list VGG19

  # Compare with the model's result in a specific run
  autoreport history --with-run-id 5 VGG19

  # List recorded runs
  autoreport history --runs

  # List all models in the history database
  autoreport history --list-models

  # Output the comparison in Markdown format
  autoreport history --markdown VGG19`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// Listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List recorded results for the specified model")
	cmd.Flags().BoolP("list-models", "L", false,
		"List all models in the history database")
	cmd.Flags().BoolP("runs", "r", false,
		"List recorded runs")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list (0 = all)")

	// Comparison target flags
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare with the model's result in a specific run (use --list to see run IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	cmd.Flags().String("history-dir", "",
		"Directory of the history database (default: from configuration)")

	return cmd
}

// historyOptions holds the parsed flags of the history command.
type historyOptions struct {
	model          string
	list           bool
	listModels     bool
	runs           bool
	limit          int
	withRunID      int64
	jsonOutput     bool
	markdownOutput bool
	dir            string
}

// parseHistoryOptions reads and validates the history command flags.
func parseHistoryOptions(cmd *cobra.Command, args []string) (*historyOptions, error) {
	opts := &historyOptions{}
	if len(args) > 0 {
		opts.model = args[0]
	}

	var err error
	if opts.list, err = cmd.Flags().GetBool("list"); err != nil {
		return nil, err
	}
	if opts.listModels, err = cmd.Flags().GetBool("list-models"); err != nil {
		return nil, err
	}
	if opts.runs, err = cmd.Flags().GetBool("runs"); err != nil {
		return nil, err
	}
	if opts.limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return nil, err
	}
	if opts.withRunID, err = cmd.Flags().GetInt64("with-run-id"); err != nil {
		return nil, err
	}
	if opts.jsonOutput, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if opts.markdownOutput, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if opts.dir, err = cmd.Flags().GetString("history-dir"); err != nil {
		return nil, err
	}

	if opts.jsonOutput && opts.markdownOutput {
		return nil, errors.New("conflicting output formats: --json and --markdown cannot be used together")
	}
	if !opts.listModels && !opts.runs && opts.model == "" {
		return nil, errors.New("model name is required (use --list-models to see available models)")
	}

	if opts.dir == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("configuration error: %w", err)
		}
		opts.dir = cfg.HistoryDatabaseDir()
	}

	return opts, nil
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	// Validate arguments before opening the database.
	opts, err := parseHistoryOptions(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	db, err := database.Open(opts.dir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(out, "No history recorded yet.")
		fmt.Fprintln(out, "\nSet 'saveHistory: true' in the configuration file to record generated reports.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case opts.listModels:
		return listModels(ctx, db, out)
	case opts.runs:
		return listRuns(ctx, db, out, opts.limit)
	case opts.list:
		return listModelHistory(ctx, db, out, opts.model)
	default:
		return runComparison(ctx, db, out, opts)
	}
}

// listModels prints every model with recorded results.
func listModels(ctx context.Context, db *database.HistoryDB, out io.Writer) error {
	models, err := db.ListModels(ctx)
	if err != nil {
		return err
	}

	if len(models) == 0 {
		fmt.Fprintln(out, "No models found in the history database.")
		return nil
	}

	fmt.Fprintf(out, "Models (%d):\n\n", len(models))
	for _, m := range models {
		fmt.Fprintf(out, "  • %s\n", m)
	}
	fmt.Fprintln(out, "\nUse 'autoreport history --list <model>' to see the results of a model.")

	return nil
}

// listRuns prints the most recent runs.
func listRuns(ctx context.Context, db *database.HistoryDB, out io.Writer, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found in the history database.")
		return nil
	}

	fmt.Fprintf(out, "Runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-8s  %s\n", "ID", "Date", "Common", "Title")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
	for _, r := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %-8d  %s\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.CommonMisidentified,
			r.Title,
		)
	}

	return nil
}

// listModelHistory prints every recorded result of a model.
func listModelHistory(ctx context.Context, db *database.HistoryDB, out io.Writer, modelName string) error {
	records, err := db.GetModelHistory(ctx, modelName)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintf(out, "No history found for %s\n", modelName)
		return nil
	}

	fmt.Fprintf(out, "History for %s (%d results):\n\n", modelName, len(records))
	fmt.Fprintf(out, "  %-6s  %-20s  %-9s  %-8s  %s\n", "Run", "Date", "Accuracy", "Images", "Misidentified")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 64))
	for _, r := range records {
		fmt.Fprintf(out, "  %-6d  %-20s  %-9s  %-8d  %d\n",
			r.RunID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			formatPercent(r.Accuracy),
			r.ImageCount,
			r.MisidentifiedCount,
		)
	}

	fmt.Fprintf(out, "\nUse 'autoreport history %s' to compare the latest two results.\n", modelName)

	return nil
}

// runComparison compares the latest record of a model with an earlier one.
func runComparison(ctx context.Context, db *database.HistoryDB, out io.Writer, opts *historyOptions) error {
	records, err := db.GetModelHistory(ctx, opts.model)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return fmt.Errorf("no history found for %s", opts.model)
	}

	current := records[0]
	var previous *database.ModelRecord

	if opts.withRunID > 0 {
		idx := slices.IndexFunc(records, func(r database.ModelRecord) bool {
			return r.RunID == opts.withRunID
		})
		if idx < 0 {
			return fmt.Errorf("run %d has no result for %s", opts.withRunID, opts.model)
		}
		if idx == 0 {
			return fmt.Errorf("run %d is the latest result of %s; choose an earlier run", opts.withRunID, opts.model)
		}
		previous = &records[idx]
	} else {
		if len(records) < 2 {
			return fmt.Errorf("at least 2 results are required for comparison (found %d)", len(records))
		}
		previous = &records[1]
	}

	comparison := compareRecords(*previous, current)

	switch {
	case opts.jsonOutput:
		return outputComparisonJSON(out, comparison)
	case opts.markdownOutput:
		return outputComparisonMarkdown(out, comparison)
	default:
		return outputComparisonText(out, comparison)
	}
}

// ComparisonResult holds the result of comparing two results of a model.
type ComparisonResult struct {
	// Model is the compared model.
	Model string `json:"model"`

	// Previous describes the earlier result.
	Previous RecordMetadata `json:"previous"`

	// Current describes the latest result.
	Current RecordMetadata `json:"current"`

	// AccuracyDelta is Current.Accuracy - Previous.Accuracy.
	AccuracyDelta float64 `json:"accuracy_delta"`

	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// NewlyMisidentified lists images misidentified now but not before.
	NewlyMisidentified []string `json:"newly_misidentified,omitempty"`

	// Fixed lists images misidentified before but not anymore.
	Fixed []string `json:"fixed,omitempty"`

	// StillMisidentified is the number of images misidentified in both.
	StillMisidentified int `json:"still_misidentified"`
}

// RecordMetadata contains the comparable values of one result.
type RecordMetadata struct {
	RunID              int64     `json:"run_id"`
	Date               time.Time `json:"date"`
	Dataset            string    `json:"dataset"`
	Accuracy           float64   `json:"accuracy"`
	ImageCount         int       `json:"image_count"`
	MisidentifiedCount int       `json:"misidentified_count"`
}

// compareRecords compares two results of the same model.
func compareRecords(previous, current database.ModelRecord) *ComparisonResult {
	result := &ComparisonResult{
		Model:         current.Model,
		Previous:      newRecordMetadata(previous),
		Current:       newRecordMetadata(current),
		AccuracyDelta: current.Accuracy - previous.Accuracy,
	}

	switch {
	case result.AccuracyDelta > accuracyEpsilon:
		result.Direction = directionImproved
	case result.AccuracyDelta < -accuracyEpsilon:
		result.Direction = directionWorsened
	default:
		result.Direction = directionUnchanged
	}

	before := make(map[string]struct{}, len(previous.Misidentified))
	for _, id := range previous.Misidentified {
		before[id] = struct{}{}
	}
	now := make(map[string]struct{}, len(current.Misidentified))
	for _, id := range current.Misidentified {
		now[id] = struct{}{}
		if _, ok := before[id]; ok {
			result.StillMisidentified++
		} else {
			result.NewlyMisidentified = append(result.NewlyMisidentified, id)
		}
	}
	for _, id := range previous.Misidentified {
		if _, ok := now[id]; !ok {
			result.Fixed = append(result.Fixed, id)
		}
	}

	return result
}

func newRecordMetadata(r database.ModelRecord) RecordMetadata {
	return RecordMetadata{
		RunID:              r.RunID,
		Date:               r.CreatedAt,
		Dataset:            r.Dataset,
		Accuracy:           r.Accuracy,
		ImageCount:         r.ImageCount,
		MisidentifiedCount: r.MisidentifiedCount,
	}
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)

	md.H1f("Model Comparison: %s", result.Model)
	md.PlainText("")
	md.PlainTextf("**Accuracy:** %s", formatDirection(result.Direction))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Run", strconv.FormatInt(result.Previous.RunID, 10), strconv.FormatInt(result.Current.RunID, 10), "-"},
			{"Date", result.Previous.Date.Local().Format("2006-01-02 15:04"), result.Current.Date.Local().Format("2006-01-02 15:04"), "-"},
			{"Accuracy", formatPercent(result.Previous.Accuracy), formatPercent(result.Current.Accuracy), formatAccuracyDelta(result.AccuracyDelta)},
			{"Images", strconv.Itoa(result.Previous.ImageCount), strconv.Itoa(result.Current.ImageCount), formatDelta(result.Current.ImageCount - result.Previous.ImageCount)},
			{"Misidentified", strconv.Itoa(result.Previous.MisidentifiedCount), strconv.Itoa(result.Current.MisidentifiedCount), formatDelta(result.Current.MisidentifiedCount - result.Previous.MisidentifiedCount)},
		},
	})
	md.PlainText("")

	writeChangePieChart(md, result)

	if len(result.NewlyMisidentified) > 0 {
		md.H2f("Newly Misidentified (%d)", len(result.NewlyMisidentified))
		md.PlainText("")
		md.BulletList(codeSpans(result.NewlyMisidentified)...)
		md.PlainText("")
	}

	if len(result.Fixed) > 0 {
		md.H2f("Fixed (%d)", len(result.Fixed))
		md.PlainText("")
		md.BulletList(codeSpans(result.Fixed)...)
		md.PlainText("")
	}

	if result.StillMisidentified > 0 {
		md.HorizontalRule()
		md.PlainText("")
		md.PlainTextf("*%d images still misidentified*", result.StillMisidentified)
	}

	return md.Build()
}

// writeChangePieChart writes a mermaid pie chart of how misidentified
// images changed between the two results.
func writeChangePieChart(md *markdown.Markdown, result *ComparisonResult) {
	if len(result.NewlyMisidentified)+len(result.Fixed)+result.StillMisidentified == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Misidentified Images"),
		piechart.WithShowData(true),
	)
	if n := len(result.NewlyMisidentified); n > 0 {
		chart.LabelAndIntValue("Newly misidentified", uint64(n))
	}
	if n := len(result.Fixed); n > 0 {
		chart.LabelAndIntValue("Fixed", uint64(n))
	}
	if result.StillMisidentified > 0 {
		chart.LabelAndIntValue("Still misidentified", uint64(result.StillMisidentified))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	fmt.Fprintf(out, "Model Comparison: %s\n", result.Model)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nAccuracy: %s\n", formatDirection(result.Direction))

	fmt.Fprintf(out, "\nPrevious run: %d (%s)\n", result.Previous.RunID, result.Previous.Date.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Current run:  %d (%s)\n", result.Current.RunID, result.Current.Date.Local().Format("2006-01-02 15:04:05"))

	fmt.Fprintln(out, "\nSummary:")
	fmt.Fprintf(out, "  %-14s  %-10s  %-10s  %-10s\n", "Metric", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 50))
	fmt.Fprintf(out, "  %-14s  %-10s  %-10s  %-10s\n", "Accuracy",
		formatPercent(result.Previous.Accuracy), formatPercent(result.Current.Accuracy),
		formatAccuracyDelta(result.AccuracyDelta))
	fmt.Fprintf(out, "  %-14s  %-10d  %-10d  %-10s\n", "Images",
		result.Previous.ImageCount, result.Current.ImageCount,
		formatDelta(result.Current.ImageCount-result.Previous.ImageCount))
	fmt.Fprintf(out, "  %-14s  %-10d  %-10d  %-10s\n", "Misidentified",
		result.Previous.MisidentifiedCount, result.Current.MisidentifiedCount,
		formatDelta(result.Current.MisidentifiedCount-result.Previous.MisidentifiedCount))

	if len(result.NewlyMisidentified) > 0 {
		fmt.Fprintf(out, "\nNewly Misidentified (%d):\n", len(result.NewlyMisidentified))
		for _, id := range result.NewlyMisidentified {
			fmt.Fprintf(out, "  [+] %s\n", id)
		}
	}

	if len(result.Fixed) > 0 {
		fmt.Fprintf(out, "\nFixed (%d):\n", len(result.Fixed))
		for _, id := range result.Fixed {
			fmt.Fprintf(out, "  [-] %s\n", id)
		}
	}

	if result.StillMisidentified > 0 {
		fmt.Fprintf(out, "\nStill misidentified: %d images\n", result.StillMisidentified)
	}

	return nil
}

// formatDirection formats the accuracy direction for display.
func formatDirection(direction string) string {
	switch direction {
	case directionImproved:
		return "IMPROVED (accuracy increased)"
	case directionWorsened:
		return "WORSENED (accuracy decreased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}

// formatPercent formats a ratio as a percentage with two decimals.
func formatPercent(ratio float64) string {
	return strconv.FormatFloat(ratio*100, 'f', 2, 64) + "%"
}

// formatAccuracyDelta formats an accuracy change in percentage points.
func formatAccuracyDelta(delta float64) string {
	if math.Abs(delta) <= accuracyEpsilon {
		return "0.00pp"
	}
	s := strconv.FormatFloat(delta*100, 'f', 2, 64) + "pp"
	if delta > 0 {
		return "+" + s
	}
	return s
}

// codeSpans wraps identifiers in backticks so markdown shows them verbatim.
func codeSpans(ids []string) []string {
	spans := make([]string, len(ids))
	for i, id := range ids {
		spans[i] = "`" + strings.ReplaceAll(id, "`", "'") + "`"
	}
	return spans
}
