// Package model defines the per-model view of an evaluation run.
//
// A ModelResults wraps one loaded result file together with the model name
// and the values derived from it: image count, accuracy and the list of
// misidentified images. Values are computed once at construction and never
// change afterwards, so a ModelResults may be shared between goroutines
// without locking.
//
// The package also declares the Tabulator capability used to turn a
// model's records into table markup. Implementations live in the render
// package; model only describes the table it wants drawn.
package model
