package predict

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"faultwatch/internal/ingest"
	"faultwatch/internal/models"
)

// Adapter invokes an oracle and shapes its raw output into validated
// prediction records. Records failing validation are dropped and the rest
// proceed; only a failed oracle call aborts the batch.
type Adapter struct {
	oracle Oracle
}

func NewAdapter(oracle Oracle) *Adapter {
	return &Adapter{oracle: oracle}
}

// Predict makes one synchronous oracle call and validates the result.
// An empty slice is a legitimate "no significant risk" outcome, not an
// error.
func (a *Adapter) Predict(ctx context.Context, table *ingest.Table) ([]models.PredictionRecord, error) {
	raws, err := a.oracle.Predict(ctx, table)
	if err != nil {
		return nil, &PredictionError{Oracle: a.oracle.Name(), Err: err}
	}

	records := make([]models.PredictionRecord, 0, len(raws))
	for i, raw := range raws {
		rec, ok := validate(raw)
		if !ok {
			log.Printf("dropping invalid oracle record %d from %s", i, a.oracle.Name())
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// validate checks the key contract and field constraints for one raw
// record. Site and Fault must be non-empty, the risk level must be one of
// the three allowed values and the probability numeric within [0,100].
func validate(raw RawRecord) (models.PredictionRecord, bool) {
	for _, key := range RequiredKeys {
		if _, ok := raw[key]; !ok {
			return models.PredictionRecord{}, false
		}
	}

	rec := models.PredictionRecord{
		Site:           stringValue(raw["Site"]),
		Location:       stringValue(raw["Location"]),
		Fault:          stringValue(raw["Fault"]),
		PossibleCause:  stringValue(raw["Possible Cause"]),
		Recommendation: stringValue(raw["Recommendation"]),
		Team:           stringValue(raw["Team"]),
	}
	if rec.Site == "" || rec.Fault == "" {
		return models.PredictionRecord{}, false
	}

	level, ok := models.ParseRiskLevel(stringValue(raw["Risk Level"]))
	if !ok {
		return models.PredictionRecord{}, false
	}
	rec.RiskLevel = level

	prob, ok := numericValue(raw["Probability (%)"])
	if !ok || prob < 0 || prob > 100 {
		return models.PredictionRecord{}, false
	}
	rec.Probability = prob

	return rec, true
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case json.Number:
		return s.String()
	}
	return ""
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(n), "%"), 64)
		return f, err == nil
	}
	return 0, false
}
