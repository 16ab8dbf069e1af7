package model

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/nao1215/autoreport/internal/loader"
)

// ModelResults holds one model's evaluation records and the values derived
// from them.
type ModelResults struct {
	name          string
	sourcePath    string
	datasetName   string
	header        []string
	records       []loader.Record
	correctCount  int
	misidentified []string
}

// Summary is the per-model line of the report summary.
type Summary struct {
	Model              string  `json:"model"`
	Dataset            string  `json:"dataset"`
	Accuracy           float64 `json:"accuracy"`
	ImageCount         int     `json:"image_count"`
	CorrectCount       int     `json:"correct_count"`
	MisidentifiedCount int     `json:"misidentified_count"`
}

// New loads the result file at path and builds the ModelResults for it.
// Loader errors are returned unchanged so callers can match them with errors.Is.
func New(modelName, path string) (*ModelResults, error) {
	rs, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	return FromResultSet(modelName, rs), nil
}

// FromResultSet builds a ModelResults from an already loaded result set.
// The set's records are copied.
func FromResultSet(modelName string, rs *loader.ResultSet) *ModelResults {
	m := &ModelResults{
		name:          modelName,
		sourcePath:    rs.Path,
		datasetName:   filepath.Base(rs.Path),
		header:        slices.Clone(rs.Header),
		records:       make([]loader.Record, len(rs.Records)),
		misidentified: make([]string, 0),
	}

	for i, r := range rs.Records {
		m.records[i] = loader.Record{
			ID:      r.ID,
			Correct: r.Correct,
			Fields:  slices.Clone(r.Fields),
		}
		if r.Correct {
			m.correctCount++
		} else {
			m.misidentified = append(m.misidentified, r.ID)
		}
	}

	return m
}

// Name returns the model name.
func (m *ModelResults) Name() string {
	return m.name
}

// SourcePath returns the path the results were loaded from.
func (m *ModelResults) SourcePath() string {
	return m.sourcePath
}

// DatasetName returns the final element of the source path, extension included.
func (m *ModelResults) DatasetName() string {
	return m.datasetName
}

// Header returns a copy of the column names.
func (m *ModelResults) Header() []string {
	return slices.Clone(m.header)
}

// Records returns a copy of the records in file order.
func (m *ModelResults) Records() []loader.Record {
	out := make([]loader.Record, len(m.records))
	for i, r := range m.records {
		out[i] = loader.Record{ID: r.ID, Correct: r.Correct, Fields: slices.Clone(r.Fields)}
	}
	return out
}

// ImageCount returns the number of records.
func (m *ModelResults) ImageCount() int {
	return len(m.records)
}

// CorrectCount returns the number of records marked correct.
func (m *ModelResults) CorrectCount() int {
	return m.correctCount
}

// Accuracy returns the fraction of records marked correct.
// It returns ErrDivisionUndefined when there are no records.
func (m *ModelResults) Accuracy() (float64, error) {
	if len(m.records) == 0 {
		return 0, fmt.Errorf("model %s (%s): %w", m.name, m.datasetName, ErrDivisionUndefined)
	}
	return float64(m.correctCount) / float64(len(m.records)), nil
}

// MisidentifiedImages returns the identifiers of incorrect records in file order.
func (m *ModelResults) MisidentifiedImages() []string {
	return slices.Clone(m.misidentified)
}

// Summary returns the summary line for the model.
func (m *ModelResults) Summary() (Summary, error) {
	accuracy, err := m.Accuracy()
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Model:              m.name,
		Dataset:            m.datasetName,
		Accuracy:           accuracy,
		ImageCount:         len(m.records),
		CorrectCount:       m.correctCount,
		MisidentifiedCount: len(m.misidentified),
	}, nil
}

// Table returns the records as a Table tagged with tableID.
func (m *ModelResults) Table(tableID string) Table {
	t := Table{
		ID:            tableID,
		Header:        slices.Clone(m.header),
		Rows:          make([][]string, len(m.records)),
		Misidentified: make([]bool, len(m.records)),
	}
	for i, r := range m.records {
		t.Rows[i] = slices.Clone(r.Fields)
		t.Misidentified[i] = !r.Correct
	}
	return t
}

// RenderTable draws the records as markup with t, tagged with tableID.
func (m *ModelResults) RenderTable(t Tabulator, tableID string) (string, error) {
	out, err := t.Tabulate(m.Table(tableID))
	if err != nil {
		return "", fmt.Errorf("failed to tabulate results for model %s: %w", m.name, err)
	}
	return out, nil
}
