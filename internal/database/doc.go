// Package database provides SQLite-based storage for autoreport run history.
//
// Every generated report can be recorded as a run: the report title, the
// output path, the number of images every model misidentified, and one row
// per model with its accuracy and misidentified images. The history command
// reads these rows back to compare models across runs.
//
// The database is a single file (autoreport.db) opened through the CGO-free
// modernc.org/sqlite driver.
package database
