package report

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/nao1215/autoreport/internal/aggregate"
	"github.com/nao1215/autoreport/internal/model"
	"github.com/nao1215/autoreport/internal/render"
)

// Assembler builds report sections and the final document through a
// render.Renderer. Tables are drawn by a model.Tabulator.
type Assembler struct {
	renderer  render.Renderer
	tabulator model.Tabulator
	logger    *slog.Logger
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) AssemblerOption {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// NewAssembler creates an Assembler.
func NewAssembler(r render.Renderer, t model.Tabulator, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		renderer:  r,
		tabulator: t,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble renders the summary section followed by one table section per
// model, in the order of results.
//
// The summary section receives title, model_results_list (one
// model.Summary per model) and number_misidentified (the number of images
// every model got wrong). Each table section receives model, dataset and
// table, where table is the model's records tagged with the model name.
func (a *Assembler) Assemble(title string, results []*model.ModelResults) ([]string, error) {
	if len(results) == 0 {
		return nil, aggregate.ErrEmptyInput
	}
	if err := checkTableIDs(results); err != nil {
		return nil, err
	}

	summaries, err := summarize(results)
	if err != nil {
		return nil, err
	}
	common, err := aggregate.CommonMisidentifiedCount(results)
	if err != nil {
		return nil, err
	}

	sections := make([]string, 0, len(results)+1)

	summary, err := a.renderer.Render(render.SummaryTemplate, map[string]any{
		"title":                title,
		"model_results_list":   summaries,
		"number_misidentified": common,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render summary section: %w", err)
	}
	sections = append(sections, summary)

	for _, m := range results {
		table, err := m.RenderTable(a.tabulator, m.Name())
		if err != nil {
			return nil, err
		}

		section, err := a.renderer.Render(render.TableTemplate, map[string]any{
			"model":   m.Name(),
			"dataset": m.DatasetName(),
			"table":   template.HTML(table), //nolint:gosec // produced by the tabulator, cells are escaped there
		})
		if err != nil {
			return nil, fmt.Errorf("failed to render table section for model %s: %w", m.Name(), err)
		}
		sections = append(sections, section)

		a.logger.Debug("assembled table section",
			slog.String("model", m.Name()),
			slog.Int("rows", m.ImageCount()),
		)
	}

	return sections, nil
}

// RenderDocument renders the document template with title, sections and
// model_results_list. Sections are inserted as markup, in order.
func (a *Assembler) RenderDocument(title string, sections []string, results []*model.ModelResults) (string, error) {
	summaries, err := summarize(results)
	if err != nil {
		return "", err
	}

	markup := make([]template.HTML, len(sections))
	for i, s := range sections {
		markup[i] = template.HTML(s) //nolint:gosec // sections are rendered templates
	}

	doc, err := a.renderer.Render(render.DocumentTemplate, map[string]any{
		"title":              title,
		"sections":           markup,
		"model_results_list": summaries,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return doc, nil
}

// Build assembles the sections and renders the document in one call.
func (a *Assembler) Build(title string, results []*model.ModelResults) (string, error) {
	sections, err := a.Assemble(title, results)
	if err != nil {
		return "", err
	}
	return a.RenderDocument(title, sections, results)
}

func summarize(results []*model.ModelResults) ([]model.Summary, error) {
	summaries := make([]model.Summary, 0, len(results))
	for _, m := range results {
		if m == nil {
			return nil, errors.New("nil model results")
		}
		s, err := m.Summary()
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func checkTableIDs(results []*model.ModelResults) error {
	seen := make(map[string]string, len(results))
	for _, m := range results {
		if m == nil {
			return errors.New("nil model results")
		}
		if prev, ok := seen[m.Name()]; ok {
			return fmt.Errorf("%w: model %s is loaded from both %s and %s",
				ErrDuplicateTableID, m.Name(), prev, m.SourcePath())
		}
		seen[m.Name()] = m.SourcePath()
	}
	return nil
}
