package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Template names understood by the report assembler.
const (
	DocumentTemplate = "report.html"
	SummaryTemplate  = "summary_section.html"
	TableTemplate    = "table_section.html"
)

// RequiredTemplates lists the templates every template set must provide.
var RequiredTemplates = []string{DocumentTemplate, SummaryTemplate, TableTemplate}

//go:embed templates/*.html
var defaultTemplates embed.FS

// Renderer fills a named template with variables.
type Renderer interface {
	Render(name string, vars map[string]any) (string, error)
}

// TemplateRenderer renders html/template templates.
// It is safe for concurrent use once constructed.
type TemplateRenderer struct {
	tmpl *template.Template
}

type rendererOptions struct {
	templateDir string
	lang        language.Tag
}

// Option configures a TemplateRenderer.
type Option func(*rendererOptions)

// WithTemplateDir overlays the *.html files found in dir on top of the
// embedded templates. A file with the same name as an embedded template
// replaces it.
func WithTemplateDir(dir string) Option {
	return func(o *rendererOptions) {
		o.templateDir = dir
	}
}

// WithLanguage sets the language used to format numbers in templates.
// The default is English.
func WithLanguage(tag language.Tag) Option {
	return func(o *rendererOptions) {
		o.lang = tag
	}
}

// NewTemplateRenderer parses the template set once.
func NewTemplateRenderer(opts ...Option) (*TemplateRenderer, error) {
	o := rendererOptions{lang: language.English}
	for _, opt := range opts {
		opt(&o)
	}

	printer := message.NewPrinter(o.lang)
	funcs := template.FuncMap{
		"percent": func(v float64) string {
			return printer.Sprintf("%.2f%%", v*100)
		},
		"number": func(n int) string {
			return printer.Sprintf("%d", n)
		},
	}

	tmpl, err := template.New("").Funcs(funcs).ParseFS(defaultTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded templates: %w", err)
	}

	if o.templateDir != "" {
		info, err := os.Stat(o.templateDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open template directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("template path %s is not a directory", o.templateDir)
		}
		matches, err := fs.Glob(os.DirFS(o.templateDir), "*.html")
		if err != nil {
			return nil, fmt.Errorf("failed to list templates in %s: %w", o.templateDir, err)
		}
		if len(matches) > 0 {
			tmpl, err = tmpl.ParseFS(os.DirFS(o.templateDir), "*.html")
			if err != nil {
				return nil, fmt.Errorf("failed to parse templates in %s: %w", o.templateDir, err)
			}
		}
	}

	for _, name := range RequiredTemplates {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
	}

	return &TemplateRenderer{tmpl: tmpl}, nil
}

// Render executes the named template with vars.
func (r *TemplateRenderer) Render(name string, vars map[string]any) (string, error) {
	t := r.tmpl.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// ExportTemplates writes the embedded templates into dir so they can be
// customized and loaded back with WithTemplateDir. Existing files are left
// untouched unless force is set.
func ExportTemplates(dir string, force bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create template directory: %w", err)
	}

	written := make([]string, 0, len(RequiredTemplates))
	for _, name := range RequiredTemplates {
		content, err := defaultTemplates.ReadFile("templates/" + name)
		if err != nil {
			return written, fmt.Errorf("failed to read embedded template %s: %w", name, err)
		}

		path := filepath.Join(dir, name)
		if !force {
			if _, err := os.Stat(path); err == nil {
				return written, fmt.Errorf("template already exists: %s (use force to overwrite)", path)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return written, fmt.Errorf("failed to check %s: %w", path, err)
			}
		}

		if err := os.WriteFile(path, content, 0600); err != nil {
			return written, fmt.Errorf("failed to write template %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
