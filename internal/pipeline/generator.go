package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/autoreport/internal/aggregate"
	"github.com/nao1215/autoreport/internal/config"
	"github.com/nao1215/autoreport/internal/render"
	"github.com/nao1215/autoreport/internal/report"
)

// Generator produces a report from result files according to a Config.
type Generator struct {
	cfg      *config.Config
	logger   *slog.Logger
	renderer render.Renderer
	load     LoadFunc
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithGeneratorLogger sets the logger passed to every step.
func WithGeneratorLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithRenderer replaces the template renderer built from the Config.
func WithRenderer(r render.Renderer) GeneratorOption {
	return func(g *Generator) {
		g.renderer = r
	}
}

// WithGeneratorLoadFunc replaces the function used to load one result file.
func WithGeneratorLoadFunc(fn LoadFunc) GeneratorOption {
	return func(g *Generator) {
		g.load = fn
	}
}

// NewGenerator validates cfg and prepares the template renderer.
// Template problems are reported here, before any file is read.
func NewGenerator(cfg *config.Config, opts ...GeneratorOption) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		cfg:    cfg,
		logger: slog.Default(),
		load:   loadFile,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.renderer == nil {
		var renderOpts []render.Option
		if cfg.TemplateDir != "" {
			renderOpts = append(renderOpts, render.WithTemplateDir(cfg.TemplateDir))
			g.logger.Debug("using template overrides", "template_dir", cfg.TemplateDir)
		}
		r, err := render.NewTemplateRenderer(renderOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load templates: %w", err)
		}
		g.renderer = r
	}

	return g, nil
}

// Pipeline builds the steps of one run.
func (g *Generator) Pipeline() *Pipeline {
	loader := NewBatchLoader(
		WithConcurrency(g.cfg.Concurrency),
		WithBatchLogger(g.logger),
		WithLoadFunc(g.load),
	)
	assembler := report.NewAssembler(
		g.renderer,
		render.NewMarkdownTabulator(render.WithMaxCellWidth(g.cfg.MaxCellWidth)),
		report.WithLogger(g.logger),
	)

	p := New(WithLogger(g.logger))
	p.AddSteps(
		NewLoadStep(loader),
		NewValidateStep(g.logger),
		NewAssembleStep(assembler),
		NewWriteStep(report.NewFileWriter(g.cfg.OutputPath)),
	)
	if g.cfg.SaveHistory {
		p.AddStep(NewHistoryStep(g.cfg.HistoryDatabaseDir(), g.logger))
	}
	return p
}

// Run generates the report for paths, in the given order, and writes it to
// the configured output path.
func (g *Generator) Run(ctx context.Context, paths []string) (*Run, error) {
	if len(paths) == 0 {
		return nil, aggregate.ErrEmptyInput
	}

	run := NewRun(g.cfg.Title, g.cfg.OutputPath, Inputs(paths, g.cfg.Suffix))
	if err := g.Pipeline().Execute(ctx, run); err != nil {
		return run, err
	}

	g.logger.Debug("report generated",
		"output", g.cfg.OutputPath,
		"models", len(run.Results),
		"bytes", run.BytesWritten,
	)
	return run, nil
}
