package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log"
	"time"

	"faultwatch/internal/ingest"
	"faultwatch/internal/metrics"
	"faultwatch/internal/models"
	"faultwatch/internal/notify"
	"faultwatch/internal/predict"
	"faultwatch/internal/report"
)

// Outcome is the terminal state of one pipeline run.
type Outcome string

const (
	// OutcomeReport means predictions survived filtering and a report was
	// produced.
	OutcomeReport Outcome = "report"
	// OutcomeNoRisk means the oracle returned zero valid records. Not an
	// error: it signals no significant future fault risk.
	OutcomeNoRisk Outcome = "no_risk"
	// OutcomeNoFilterMatch means predictions existed but the filters
	// excluded every one of them.
	OutcomeNoFilterMatch Outcome = "no_filter_match"
)

// Result is everything one run produced for the presentation layer.
type Result struct {
	Outcome    Outcome
	Records    []models.PredictionRecord // all validated oracle output
	Filtered   []models.PredictionRecord
	Views      models.Views
	FileErrors []error // contained per-file ingestion failures
	Notified   bool
	NotifyErr  error // nil, notify.ErrNotConfigured, or a transport error
}

// Pipeline wires the ingestion, prediction and notification stages for
// one session. Runs are synchronous start to finish with no internal
// parallelism; re-execution with the latest inputs is the only retry
// mechanism.
type Pipeline struct {
	adapter    *predict.Adapter
	dispatcher *notify.Dispatcher
	oracleName string
}

func New(oracle predict.Oracle, dispatcher *notify.Dispatcher) *Pipeline {
	return &Pipeline{
		adapter:    predict.NewAdapter(oracle),
		dispatcher: dispatcher,
		oracleName: oracle.Name(),
	}
}

// Run processes one batch of uploaded files end to end.
//
// Unreadable files are skipped and recorded in Result.FileErrors; the
// batch aborts only when no file survives (ingest.ErrEmptyBatch) or the
// oracle call itself fails (*predict.PredictionError).
func (p *Pipeline) Run(ctx context.Context, files []ingest.BatchFile, criteria models.FilterCriteria, state *notify.SessionState) (*Result, error) {
	result := &Result{}

	var tables []*ingest.Table
	for _, f := range files {
		table, err := ingest.ReadTable(f.Name, bytes.NewReader(f.Data))
		if err != nil {
			log.Printf("skipping file %s: %v", f.Name, err)
			result.FileErrors = append(result.FileErrors, err)
			metrics.FilesIngested.WithLabelValues("skipped").Inc()
			continue
		}
		metrics.FilesIngested.WithLabelValues("ok").Inc()
		tables = append(tables, table)
	}

	merged, err := ingest.Merge(tables)
	if err != nil {
		metrics.BatchesTotal.WithLabelValues("empty_batch").Inc()
		return nil, err
	}

	start := time.Now()
	records, err := p.adapter.Predict(ctx, merged)
	metrics.OracleLatency.WithLabelValues(p.oracleName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.OracleCallsTotal.WithLabelValues(p.oracleName, "error").Inc()
		metrics.BatchesTotal.WithLabelValues("prediction_failure").Inc()
		return nil, err
	}
	metrics.OracleCallsTotal.WithLabelValues(p.oracleName, "ok").Inc()
	for _, rec := range records {
		metrics.PredictionsTotal.WithLabelValues(string(rec.RiskLevel)).Inc()
	}

	result.Records = records
	p.evaluate(ctx, result, criteria, state)
	metrics.BatchesTotal.WithLabelValues(string(result.Outcome)).Inc()
	return result, nil
}

// Reevaluate re-runs the post-oracle stages (filter, aggregate, notify)
// over a previous run's validated records, e.g. after a filter change.
// The session's at-most-once notification guarantee carries across
// re-evaluations through state.
func (p *Pipeline) Reevaluate(ctx context.Context, records []models.PredictionRecord, criteria models.FilterCriteria, state *notify.SessionState) *Result {
	result := &Result{Records: records}
	p.evaluate(ctx, result, criteria, state)
	return result
}

func (p *Pipeline) evaluate(ctx context.Context, result *Result, criteria models.FilterCriteria, state *notify.SessionState) {
	if len(result.Records) == 0 {
		result.Outcome = OutcomeNoRisk
		return
	}

	result.Filtered = report.Filter(result.Records, criteria)
	if len(result.Filtered) == 0 {
		result.Outcome = OutcomeNoFilterMatch
		return
	}

	result.Outcome = OutcomeReport
	result.Views = report.Aggregate(result.Filtered)

	if p.dispatcher == nil {
		return
	}
	result.Notified, result.NotifyErr = p.Notify(ctx, result.Filtered, state)
}

// Notify attempts a report delivery for the given records outside a full
// run, e.g. from an explicit user action. The session's at-most-once
// guarantee still applies through state.
func (p *Pipeline) Notify(ctx context.Context, records []models.PredictionRecord, state *notify.SessionState) (bool, error) {
	if p.dispatcher == nil {
		return false, notify.ErrNotConfigured
	}
	sent, err := p.dispatcher.Dispatch(ctx, records, state)
	switch {
	case sent:
		metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	case errors.Is(err, notify.ErrNotConfigured):
		metrics.NotificationsTotal.WithLabelValues("skipped").Inc()
		log.Printf("notification skipped: %v", err)
	case err != nil:
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		log.Printf("notification failed: %v", err)
	}
	return sent, err
}
