package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CorrectColumn is the header name of the correctness column.
const CorrectColumn = "correct"

// Record is one row of a result file.
type Record struct {
	// ID is the row identifier taken from the first column.
	ID string

	// Correct is the parsed value of the "correct" column.
	Correct bool

	// Fields holds every cell of the row in file column order,
	// including the identifier and the raw "correct" value.
	Fields []string
}

// ResultSet is the in-memory form of a single result file.
type ResultSet struct {
	// Path is the path the set was loaded from.
	Path string

	// Header holds the column names in file order.
	Header []string

	// CorrectIndex is the position of the "correct" column in Header.
	CorrectIndex int

	// Records holds the rows in file order.
	Records []Record
}

// Len returns the number of records.
func (rs *ResultSet) Len() int {
	return len(rs.Records)
}

// Load reads the result file at path.
func Load(path string) (*ResultSet, error) {
	f, err := os.Open(path) //nolint:gosec // Reading user-supplied result files is the purpose of this tool
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	defer f.Close()

	return Parse(path, f)
}

// Parse reads a result table from r. The name is used for error messages
// and to pick the delimiter from its extension.
func Parse(name string, r io.Reader) (*ResultSet, error) {
	// Spreadsheet exports frequently start with a UTF-8 BOM.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.Comma = Delimiter(name)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: no header row", ErrMalformedData, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedData, name, err)
	}

	correctIdx := -1
	for i, column := range header {
		if column == CorrectColumn {
			correctIdx = i
			break
		}
	}
	switch correctIdx {
	case -1:
		return nil, fmt.Errorf("%w: %s: no %q column", ErrMalformedData, name, CorrectColumn)
	case 0:
		return nil, fmt.Errorf("%w: %s: first column must be the row identifier, found %q",
			ErrMalformedData, name, CorrectColumn)
	}

	rs := &ResultSet{
		Path:         name,
		Header:       header,
		CorrectIndex: correctIdx,
		Records:      make([]Record, 0),
	}
	seen := make(map[string]int)

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedData, name, err)
		}
		line, _ := reader.FieldPos(0)

		if len(fields) != len(header) {
			return nil, fmt.Errorf("%w: %s: line %d has %d columns, expected %d",
				ErrMalformedData, name, line, len(fields), len(header))
		}

		id := fields[0]
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%w: %s: line %d has an empty identifier", ErrMalformedData, name, line)
		}
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: %s: line %d repeats identifier %q from line %d",
				ErrMalformedData, name, line, id, prev)
		}
		seen[id] = line

		correct, err := ParseBool(fields[correctIdx])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: line %d: %w", ErrMalformedData, name, line, err)
		}

		rs.Records = append(rs.Records, Record{
			ID:      id,
			Correct: correct,
			Fields:  fields,
		})
	}

	return rs, nil
}

// Delimiter returns the field delimiter used for the file name.
// Tab-separated files are recognized by their .tsv or .tab extension.
func Delimiter(name string) rune {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tsv", ".tab":
		return '\t'
	default:
		return ','
	}
}

// ParseBool converts a "correct" cell to a boolean.
// It accepts the forms understood by strconv.ParseBool and yes/no in any case.
func ParseBool(value string) (bool, error) {
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%q is not a boolean value", value)
	}
	return b, nil
}
