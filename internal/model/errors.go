package model

import "errors"

// ErrDivisionUndefined is returned by Accuracy when a model has no records.
// Accuracy is never reported as NaN, infinity or zero for an empty file.
var ErrDivisionUndefined = errors.New("accuracy undefined: result file has no records")
