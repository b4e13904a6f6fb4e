package ingest

import (
	"errors"
	"strings"
)

// normalizeIdent canonicalizes one column name: trimmed, lower-cased,
// internal whitespace runs collapsed to a single underscore.
func normalizeIdent(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// Normalize canonicalizes a raw table's column names and attaches the
// source_file provenance column.
//
// Duplicate identifiers after normalization keep only the first occurrence
// by original column order; later duplicates are dropped. This is a lossy
// policy inherited from the source system, not an error.
func Normalize(raw RawTable, sourceFile string) (*Table, error) {
	if len(raw.Columns) == 0 {
		return nil, &MalformedTableError{File: sourceFile, Err: errors.New("no columns")}
	}

	type keptColumn struct {
		ident string
		pos   int
	}
	var kept []keptColumn
	seen := make(map[string]bool, len(raw.Columns))
	for i, name := range raw.Columns {
		ident := normalizeIdent(name)
		if seen[ident] {
			continue
		}
		seen[ident] = true
		kept = append(kept, keptColumn{ident: ident, pos: i})
	}

	t := &Table{Rows: make([]Row, 0, len(raw.Rows))}
	for _, kc := range kept {
		t.Columns = append(t.Columns, kc.ident)
	}
	t.Columns = append(t.Columns, SourceColumn)

	for _, cells := range raw.Rows {
		row := make(Row, len(kept)+1)
		for _, kc := range kept {
			if kc.pos < len(cells) {
				row[kc.ident] = cells[kc.pos]
			}
		}
		row[SourceColumn] = sourceFile
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
