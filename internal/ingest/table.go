package ingest

import (
	"errors"
	"fmt"
)

// SourceColumn is the provenance column attached to every normalized table.
const SourceColumn = "source_file"

// Row maps normalized column identifiers to cell values. A missing key is
// an explicitly absent cell, never an empty string placeholder.
type Row map[string]string

// RawTable is one file's contents as read, before any column
// canonicalization. Cells align positionally with Columns; short rows
// leave trailing cells absent.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Table is a normalized (or merged) table. Column identifiers are unique
// and ordered; rows carry only the cells that were actually present.
type Table struct {
	Columns []string
	Rows    []Row
}

// ErrEmptyBatch signals that no file survived ingestion. It is a terminal
// per-run condition, not a crash: the caller reports "no valid files" and
// stops.
var ErrEmptyBatch = errors.New("no valid files in batch")

// MalformedTableError marks a single unreadable or unparseable input file.
// The file is skipped and the batch continues with the remaining files.
type MalformedTableError struct {
	File string
	Err  error
}

func (e *MalformedTableError) Error() string {
	return fmt.Sprintf("malformed table %q: %v", e.File, e.Err)
}

func (e *MalformedTableError) Unwrap() error { return e.Err }
