package predict

import (
	"context"
	"fmt"

	"faultwatch/internal/ingest"
)

// Oracle is the external fault-prediction capability. It receives the
// merged alarm table and returns raw prediction mappings keyed by the
// case-sensitive contract in RequiredKeys. Implementations own their own
// timeout policy; the pipeline makes a single synchronous call with no
// retry.
type Oracle interface {
	Name() string
	Predict(ctx context.Context, table *ingest.Table) ([]RawRecord, error)
}

// RawRecord is one mapping-like record as returned by an oracle, before
// validation.
type RawRecord map[string]any

// RequiredKeys is the oracle output key contract. Every record must carry
// all of them; records missing keys are dropped by the adapter.
var RequiredKeys = []string{
	"Site",
	"Location",
	"Fault",
	"Probability (%)",
	"Risk Level",
	"Possible Cause",
	"Recommendation",
	"Team",
}

// PredictionError wraps a failed oracle invocation. The whole batch run
// aborts on it; no partial report is produced. Distinct from an oracle
// legitimately returning zero records.
type PredictionError struct {
	Oracle string
	Err    error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("oracle %s: %v", e.Oracle, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }
