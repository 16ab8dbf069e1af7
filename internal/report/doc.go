// Package report assembles the HTML model report and writes it to disk.
//
// An Assembler turns a list of model.ModelResults into ordered sections
// (the summary first, then one results table per model in input order) and
// renders them into the final document. The document structure is decided
// by the templates alone; this package only decides which variables each
// template receives.
//
// FileWriter stores the rendered document atomically so a failed run never
// leaves a partial report behind.
package report
