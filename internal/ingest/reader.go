package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ReadTable parses one uploaded file into a normalized table, choosing the
// reader from the file extension. XLSX goes through the spreadsheet
// reader, everything else is treated as delimited text.
func ReadTable(name string, r io.Reader) (*Table, error) {
	var (
		raw RawTable
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		raw, err = ReadXLSX(r)
	default:
		raw, err = ReadCSV(r)
	}
	if err != nil {
		return nil, &MalformedTableError{File: name, Err: fmt.Errorf("read: %w", err)}
	}
	return Normalize(raw, name)
}
