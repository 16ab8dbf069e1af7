package report

import "errors"

// ErrDuplicateTableID is returned when two models would produce tables with
// the same id. Table ids are derived from model names and must be unique
// within one report.
var ErrDuplicateTableID = errors.New("duplicate table id")
