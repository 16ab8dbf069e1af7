package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/nao1215/markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/nao1215/autoreport/internal/model"
)

const (
	// ResultsTableClass is the class set on every tabulated results table.
	ResultsTableClass = "results"

	// MisidentifiedRowClass is the class set on rows of incorrect records.
	MisidentifiedRowClass = "misidentified"

	// truncationTail is appended to cells shortened by MaxCellWidth.
	truncationTail = "..."
)

// markdownPunctuation lists the ASCII punctuation characters that are
// backslash-escaped so cell text is never interpreted as markdown.
const markdownPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var tableContextKey = parser.NewContextKey()

// MarkdownTabulator draws model tables by building a GitHub Flavored
// Markdown table and converting it to HTML.
type MarkdownTabulator struct {
	maxCellWidth int
	converter    goldmark.Markdown
}

// TabulatorOption configures a MarkdownTabulator.
type TabulatorOption func(*MarkdownTabulator)

// WithMaxCellWidth truncates cells wider than width display columns.
// A width of zero or less keeps cells intact.
func WithMaxCellWidth(width int) TabulatorOption {
	return func(t *MarkdownTabulator) {
		t.maxCellWidth = width
	}
}

// NewMarkdownTabulator creates a MarkdownTabulator.
func NewMarkdownTabulator(opts ...TabulatorOption) *MarkdownTabulator {
	t := &MarkdownTabulator{}
	for _, opt := range opts {
		opt(t)
	}

	t.converter = goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(tableTagger{}, 100)),
		),
	)
	return t
}

// Tabulate implements model.Tabulator.
func (t *MarkdownTabulator) Tabulate(table model.Table) (string, error) {
	if len(table.Header) == 0 {
		return "", fmt.Errorf("table %q has no columns", table.ID)
	}

	header := make([]string, len(table.Header))
	for i, h := range table.Header {
		header[i] = t.cell(h)
	}
	rows := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = t.cell(c)
		}
		rows[i] = cells
	}

	var src bytes.Buffer
	md := markdown.NewMarkdown(&src)
	md.Table(markdown.TableSet{
		Header: header,
		Rows:   rows,
	})
	if err := md.Build(); err != nil {
		return "", fmt.Errorf("failed to build table %q: %w", table.ID, err)
	}

	pc := parser.NewContext()
	pc.Set(tableContextKey, &table)

	var out bytes.Buffer
	if err := t.converter.Convert(src.Bytes(), &out, parser.WithContext(pc)); err != nil {
		return "", fmt.Errorf("failed to convert table %q: %w", table.ID, err)
	}
	return out.String(), nil
}

// cell prepares one cell for the markdown table.
func (t *MarkdownTabulator) cell(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	if t.maxCellWidth > 0 && runewidth.StringWidth(s) > t.maxCellWidth {
		s = runewidth.Truncate(s, t.maxCellWidth, truncationTail)
	}
	return escapeMarkdown(s)
}

// escapeMarkdown backslash-escapes ASCII punctuation.
func escapeMarkdown(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune(markdownPunctuation, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// tableTagger sets the id and class attributes of the converted table and
// marks the rows of misidentified records.
type tableTagger struct{}

func (tableTagger) Transform(doc *ast.Document, _ text.Reader, pc parser.Context) {
	table, ok := pc.Get(tableContextKey).(*model.Table)
	if !ok {
		return
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		tbl, ok := n.(*east.Table)
		if !ok {
			return ast.WalkContinue, nil
		}

		if table.ID != "" {
			tbl.SetAttributeString("id", table.ID)
		}
		tbl.SetAttributeString("class", ResultsTableClass)

		row := 0
		for c := tbl.FirstChild(); c != nil; c = c.NextSibling() {
			if _, ok := c.(*east.TableRow); !ok {
				continue
			}
			if row < len(table.Misidentified) && table.Misidentified[row] {
				c.SetAttributeString("class", MisidentifiedRowClass)
			}
			row++
		}
		return ast.WalkSkipChildren, nil
	})
}
