package ingest

import (
	"errors"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses the first sheet of a spreadsheet into a raw table.
// The first row is the header.
func ReadXLSX(r io.Reader) (RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return RawTable{}, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return RawTable{}, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return RawTable{}, err
	}
	if len(rows) == 0 {
		return RawTable{}, errors.New("sheet is empty")
	}

	raw := RawTable{Columns: rows[0]}
	for _, cells := range rows[1:] {
		if len(cells) == 0 {
			continue
		}
		raw.Rows = append(raw.Rows, cells)
	}
	return raw, nil
}
