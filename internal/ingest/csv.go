package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// candidate delimiters for sniffing, checked in preference order.
var csvDelimiters = []rune{',', ';', '\t', '|'}

// sniffDelimiter picks the delimiter that splits the header line into the
// most fields. Ties go to the earlier candidate, so plain CSV wins.
func sniffDelimiter(header string) rune {
	best := ','
	bestCount := 0
	for _, d := range csvDelimiters {
		if n := strings.Count(header, string(d)); n > bestCount {
			best = d
			bestCount = n
		}
	}
	return best
}

// ReadCSV parses delimited text into a raw table. The delimiter is
// auto-detected from the header line. Rows with more fields than the
// header are skipped rather than aborting the file; short rows are kept
// with their trailing cells absent.
func ReadCSV(r io.Reader) (RawTable, error) {
	br := bufio.NewReader(r)
	headerLine, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return RawTable{}, err
	}
	if strings.TrimSpace(headerLine) == "" {
		return RawTable{}, errors.New("empty file")
	}

	delim := sniffDelimiter(headerLine)

	cr := csv.NewReader(io.MultiReader(bytes.NewReader([]byte(headerLine)), br))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return RawTable{}, err
	}

	raw := RawTable{Columns: header}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row: skip it, keep the file.
			continue
		}
		if len(record) > len(header) {
			continue
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		raw.Rows = append(raw.Rows, record)
	}
	return raw, nil
}
