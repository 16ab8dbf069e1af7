package pipeline

import (
	"time"

	"github.com/nao1215/autoreport/internal/model"
)

// Run carries the state of one report generation through the pipeline.
// Each step reads what earlier steps produced and fills in its own part.
type Run struct {
	// Title is the report title.
	Title string

	// Inputs are the result files in report order.
	Inputs []Input

	// OutputPath is where the report is written.
	OutputPath string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Results holds one ModelResults per input, in input order.
	Results []*model.ModelResults

	// CommonMisidentified is the number of images every model got wrong.
	CommonMisidentified int

	// Sections are the rendered sections: summary first, then one table per model.
	Sections []string

	// Document is the rendered HTML document.
	Document string

	// BytesWritten is the size of the written report.
	BytesWritten int

	// HistoryID is the id of the stored history run, or zero when history
	// is disabled.
	HistoryID int64

	// PerformedSteps lists the names of the steps that completed.
	PerformedSteps []string
}

// NewRun creates a Run for the given inputs.
func NewRun(title, outputPath string, inputs []Input) *Run {
	return &Run{
		Title:          title,
		Inputs:         inputs,
		OutputPath:     outputPath,
		StartedAt:      time.Now(),
		PerformedSteps: make([]string, 0),
	}
}
