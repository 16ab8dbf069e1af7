package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/nao1215/autoreport/internal/aggregate"
	"github.com/nao1215/autoreport/internal/database"
	"github.com/nao1215/autoreport/internal/report"
)

// LoadStep reads every input into Run.Results.
type LoadStep struct {
	loader *BatchLoader
}

// NewLoadStep creates a LoadStep backed by loader.
func NewLoadStep(loader *BatchLoader) *LoadStep {
	return &LoadStep{loader: loader}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(ctx context.Context, run *Run) error {
	if len(run.Inputs) == 0 {
		return aggregate.ErrEmptyInput
	}

	results, err := s.loader.Load(ctx, run.Inputs)
	if err != nil {
		return err
	}
	run.Results = results
	return nil
}

// ValidateStep checks that every model's accuracy is defined and computes
// the number of images every model misidentified. It runs before any
// rendering so an empty result file fails fast with the model named.
type ValidateStep struct {
	logger *slog.Logger
}

// NewValidateStep creates a ValidateStep.
func NewValidateStep(logger *slog.Logger) *ValidateStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateStep{logger: logger}
}

// Name returns the step name.
func (s *ValidateStep) Name() string {
	return "validate"
}

// Do executes the validate step.
func (s *ValidateStep) Do(_ context.Context, run *Run) error {
	for _, m := range run.Results {
		accuracy, err := m.Accuracy()
		if err != nil {
			return err
		}
		s.logger.Debug("model accuracy",
			"model", m.Name(),
			"accuracy", accuracy,
			"misidentified", len(m.MisidentifiedImages()),
		)
	}

	common, err := aggregate.CommonMisidentifiedCount(run.Results)
	if err != nil {
		return err
	}
	run.CommonMisidentified = common
	return nil
}

// AssembleStep renders the sections and the document.
type AssembleStep struct {
	assembler *report.Assembler
}

// NewAssembleStep creates an AssembleStep.
func NewAssembleStep(assembler *report.Assembler) *AssembleStep {
	return &AssembleStep{assembler: assembler}
}

// Name returns the step name.
func (s *AssembleStep) Name() string {
	return "assemble"
}

// Do executes the assemble step.
func (s *AssembleStep) Do(_ context.Context, run *Run) error {
	sections, err := s.assembler.Assemble(run.Title, run.Results)
	if err != nil {
		return err
	}
	document, err := s.assembler.RenderDocument(run.Title, sections, run.Results)
	if err != nil {
		return err
	}

	run.Sections = sections
	run.Document = document
	return nil
}

// WriteStep stores the rendered document.
type WriteStep struct {
	writer report.Writer
}

// NewWriteStep creates a WriteStep.
func NewWriteStep(writer report.Writer) *WriteStep {
	return &WriteStep{writer: writer}
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return "write"
}

// Do executes the write step.
func (s *WriteStep) Do(_ context.Context, run *Run) error {
	n, err := s.writer.Write(run.Document)
	if err != nil {
		return err
	}
	run.BytesWritten = n
	return nil
}

// HistoryStep records the run in the history database.
type HistoryStep struct {
	dir    string
	logger *slog.Logger
}

// NewHistoryStep creates a HistoryStep storing runs in the database in dir.
func NewHistoryStep(dir string, logger *slog.Logger) *HistoryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStep{dir: dir, logger: logger}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "history"
}

// Do executes the history step.
func (s *HistoryStep) Do(ctx context.Context, run *Run) error {
	output := run.OutputPath
	if abs, err := filepath.Abs(output); err == nil {
		output = abs
	}

	rec, err := database.NewRun(run.Title, output, run.StartedAt, run.Results, run.CommonMisidentified)
	if err != nil {
		return err
	}

	db, err := database.Open(s.dir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, rec)
	if err != nil {
		return err
	}
	run.HistoryID = id

	s.logger.Debug("saved run to history",
		"run_id", id,
		"database", db.Path(),
	)
	return nil
}
