// Package pipeline turns a list of result files into a written report.
//
// Generation runs as a sequence of steps sharing one Run: loading the
// result files (in parallel, through a BatchLoader), validating that every
// model has a defined accuracy, assembling and rendering the document,
// writing it atomically, and optionally recording the run in the history
// database. Steps run in order and the first failure aborts the run, so a
// report is only written when every model could be processed.
package pipeline
