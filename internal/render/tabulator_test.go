package render

import (
	"strings"
	"testing"

	"github.com/nao1215/autoreport/internal/model"
)

func TestMarkdownTabulator(t *testing.T) {
	t.Parallel()

	t.Run("tags the table and misidentified rows", func(t *testing.T) {
		t.Parallel()

		tab := NewMarkdownTabulator()
		out, err := tab.Tabulate(model.Table{
			ID:     "Alpha",
			Header: []string{"image", "correct"},
			Rows: [][]string{
				{"img1", "True"},
				{"img2", "False"},
			},
			Misidentified: []bool{false, true},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, want := range []string{
			`<table id="Alpha" class="results">`,
			"<th>image</th>",
			"<th>correct</th>",
			"<td>img1</td>",
			`<tr class="misidentified">`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q\n%s", want, out)
			}
		}
		if strings.Count(out, `class="misidentified"`) != 1 {
			t.Errorf("expected exactly one misidentified row\n%s", out)
		}
		if strings.Index(out, "img1") > strings.Index(out, "img2") {
			t.Error("expected rows to keep their order")
		}
	})

	t.Run("passes markdown syntax through literally", func(t *testing.T) {
		t.Parallel()

		tab := NewMarkdownTabulator()
		out, err := tab.Tabulate(model.Table{
			ID:            "M",
			Header:        []string{"image", "note", "correct"},
			Rows:          [][]string{{"*bold*_x_.jpg", "a|b <i>", "True"}},
			Misidentified: []bool{false},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(out, "<td>*bold*_x_.jpg</td>") {
			t.Errorf("expected emphasis markers to be literal\n%s", out)
		}
		if !strings.Contains(out, "<td>a|b &lt;i&gt;</td>") {
			t.Errorf("expected pipe and html to be literal\n%s", out)
		}
		if strings.Contains(out, "<em>") {
			t.Errorf("unexpected emphasis in output\n%s", out)
		}
	})

	t.Run("truncates wide cells", func(t *testing.T) {
		t.Parallel()

		tab := NewMarkdownTabulator(WithMaxCellWidth(10))
		out, err := tab.Tabulate(model.Table{
			ID:            "M",
			Header:        []string{"image", "correct"},
			Rows:          [][]string{{"a_very_long_image_name.jpg", "True"}},
			Misidentified: []bool{false},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "<td>a_very_...</td>") {
			t.Errorf("expected truncated cell\n%s", out)
		}
	})

	t.Run("keeps newlines out of the table", func(t *testing.T) {
		t.Parallel()

		tab := NewMarkdownTabulator()
		out, err := tab.Tabulate(model.Table{
			ID:            "M",
			Header:        []string{"image", "correct"},
			Rows:          [][]string{{"two\nlines", "True"}},
			Misidentified: []bool{false},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "<td>two lines</td>") {
			t.Errorf("expected newline to be replaced\n%s", out)
		}
	})

	t.Run("rejects a table without columns", func(t *testing.T) {
		t.Parallel()

		if _, err := NewMarkdownTabulator().Tabulate(model.Table{ID: "M"}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("fails on ragged rows", func(t *testing.T) {
		t.Parallel()

		_, err := NewMarkdownTabulator().Tabulate(model.Table{
			ID:     "M",
			Header: []string{"image", "correct"},
			Rows:   [][]string{{"only-one"}},
		})
		if err == nil {
			t.Fatal("expected column mismatch error")
		}
	})
}

func TestEscapeMarkdown(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"plain":    "plain",
		"a_b":      `a\_b`,
		"x|y":      `x\|y`,
		`back\`:    `back\\`,
		"日本語":      "日本語",
		"img1.jpg": `img1\.jpg`,
	}
	for in, want := range tests {
		if got := escapeMarkdown(in); got != want {
			t.Errorf("escapeMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}
