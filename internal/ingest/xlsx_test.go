package ingest

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func xlsxBody(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestReadTable_XLSX(t *testing.T) {
	body := xlsxBody(t, [][]any{
		{"Alarm  Time", "SITE", "Fault Description"},
		{"2024-03-01 10:00", "Alpha", "Link Down"},
		{"2024-03-01 11:00", "Beta", "Power Failure"},
	})

	table, err := ReadTable("march.xlsx", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	wantCols := []string{"alarm_time", "site", "fault_description", SourceColumn}
	if !reflect.DeepEqual(table.Columns, wantCols) {
		t.Errorf("columns = %v, want %v", table.Columns, wantCols)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if got := table.Rows[0]["site"]; got != "Alpha" {
		t.Errorf("row 0 site = %q", got)
	}
	if got := table.Rows[1]["fault_description"]; got != "Power Failure" {
		t.Errorf("row 1 fault = %q", got)
	}
	if got := table.Rows[0][SourceColumn]; got != "march.xlsx" {
		t.Errorf("row 0 source = %q", got)
	}
}

func TestReadTable_XLSXEmptySheet(t *testing.T) {
	body := xlsxBody(t, nil)

	_, err := ReadTable("empty.xlsx", bytes.NewReader(body))
	var merr *MalformedTableError
	if !errors.As(err, &merr) {
		t.Fatalf("error = %v, want *MalformedTableError", err)
	}
	if merr.File != "empty.xlsx" {
		t.Errorf("File = %q", merr.File)
	}
}

func TestReadXLSX_NotASpreadsheet(t *testing.T) {
	_, err := ReadTable("broken.xlsx", bytes.NewReader([]byte("Site,Fault\nA,Power Failure\n")))
	var merr *MalformedTableError
	if !errors.As(err, &merr) {
		t.Fatalf("error = %v, want *MalformedTableError", err)
	}
}
