// Package loader reads per-model evaluation result files into memory.
//
// A result file is delimited text (comma separated, or tab separated for
// .tsv and .tab files). The first column holds the row identifier, usually an
// image file name, and a column named exactly "correct" holds the boolean
// outcome of the prediction. Any other columns are kept verbatim so they can
// be shown in the rendered report.
//
// Load never mutates the file and returns rows in file order.
package loader
