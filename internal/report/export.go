package report

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"faultwatch/internal/models"
)

// ExportFilename is the fixed download name for the report artifact.
const ExportFilename = "future_fault_report.csv"

// ExportCSV serializes a filtered record set as UTF-8 CSV with the record
// field names as header and no index column. Pure and repeatable: the same
// input always yields byte-identical output.
func ExportCSV(records []models.PredictionRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(models.RecordFields); err != nil {
		return nil, err
	}
	for _, rec := range records {
		row := []string{
			rec.Site,
			rec.Location,
			rec.Fault,
			strconv.FormatFloat(rec.Probability, 'f', -1, 64),
			string(rec.RiskLevel),
			rec.PossibleCause,
			rec.Recommendation,
			rec.Team,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
