package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"

	"faultwatch/internal/charts"
	"faultwatch/internal/ingest"
	"faultwatch/internal/models"
	"faultwatch/internal/notify"
	"faultwatch/internal/pipeline"
	"faultwatch/internal/predict"
	"faultwatch/internal/report"
)

// PageData is everything the dashboard template needs for one render.
type PageData struct {
	HasBatch      bool
	Outcome       pipeline.Outcome
	Records       []models.PredictionRecord
	Views         models.Views
	Sites         []string
	SelectedSites map[string]bool
	SelectedRisks map[models.RiskLevel]bool
	FileErrors    []string
	LastError     string
	Notified      bool
	NotifyNote    string
	FilterQuery   string
	RiskLevels    []models.RiskLevel
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.renderReport(w, r)
}

// handleReport is the filter re-evaluation endpoint. Same render as the
// index page; the batch comes from the session, the filters from the
// query string.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.renderReport(w, r)
}

func (s *Server) renderReport(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	criteria := parseCriteria(r.URL.Query())

	data := PageData{
		HasBatch:      sess.hasBatch,
		Sites:         distinctSites(sess.records),
		SelectedSites: criteria.Sites,
		SelectedRisks: criteria.RiskLevels,
		FileErrors:    sess.fileErrors,
		LastError:     sess.lastError,
		FilterQuery:   r.URL.RawQuery,
		RiskLevels:    models.RiskLevels,
	}

	if sess.hasBatch {
		result := s.pipeline.Reevaluate(r.Context(), sess.records, criteria, &sess.state)
		data.Outcome = result.Outcome
		data.Records = result.Filtered
		data.Views = result.Views
		data.Notified = sess.state.Notified()
		data.NotifyNote = notifyNote(result)
		if data.NotifyNote == "" && sess.state.Notified() {
			data.NotifyNote = "Report emailed."
		}
	}

	if err := s.tmpl.render(w, "index.html", data); err != nil {
		log.Printf("template error: %v", err)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess := s.sessions.get(w, r)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	var files []ingest.BatchFile
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			http.Error(w, "open upload: "+err.Error(), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, "read upload: "+err.Error(), http.StatusBadRequest)
			return
		}
		files = append(files, ingest.BatchFile{Name: fh.Filename, Data: data})
	}

	sess.records = nil
	sess.hasBatch = false
	sess.fileErrors = nil
	sess.lastError = ""

	result, err := s.pipeline.Run(r.Context(), files, models.DefaultFilter(), &sess.state)
	switch {
	case errors.Is(err, ingest.ErrEmptyBatch):
		sess.lastError = "No valid files uploaded."
	case err != nil:
		var pe *predict.PredictionError
		if errors.As(err, &pe) {
			sess.lastError = fmt.Sprintf("Prediction failed: %v", pe.Err)
		} else {
			sess.lastError = err.Error()
		}
	default:
		sess.records = result.Records
		sess.hasBatch = true
		for _, ferr := range result.FileErrors {
			sess.fileErrors = append(sess.fileErrors, ferr.Error())
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleEmail is the explicit send trigger. It dispatches the report for
// the session's current filtered records; a session that already sent is
// a no-op.
func (s *Server) handleEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess := s.sessions.get(w, r)
	if !sess.hasBatch {
		http.Error(w, "no batch uploaded", http.StatusNotFound)
		return
	}

	criteria := parseCriteria(r.URL.Query())
	filtered := report.Filter(sess.records, criteria)
	if len(filtered) > 0 {
		if _, err := s.pipeline.Notify(r.Context(), filtered, &sess.state); err != nil && !errors.Is(err, notify.ErrNotConfigured) {
			log.Printf("send report: %v", err)
		}
	}

	http.Redirect(w, r, indexURL(r.URL.RawQuery), http.StatusSeeOther)
}

func indexURL(query string) string {
	if query == "" {
		return "/"
	}
	return "/?" + query
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	filtered, ok := s.filteredRecords(w, r)
	if !ok {
		return
	}
	data, err := report.ExportCSV(filtered)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.ExportFilename+`"`)
	w.Write(data)
}

func (s *Server) handleFaultChart(w http.ResponseWriter, r *http.Request) {
	filtered, ok := s.filteredRecords(w, r)
	if !ok {
		return
	}
	views := report.Aggregate(filtered)
	data, err := charts.FaultProbabilityPNG(views.FaultProbabilities)
	s.servePNG(w, data, err)
}

func (s *Server) handleRiskChart(w http.ResponseWriter, r *http.Request) {
	filtered, ok := s.filteredRecords(w, r)
	if !ok {
		return
	}
	views := report.Aggregate(filtered)
	data, err := charts.RiskDistributionPNG(views.RiskDistribution)
	s.servePNG(w, data, err)
}

func (s *Server) handleSiteChart(w http.ResponseWriter, r *http.Request) {
	filtered, ok := s.filteredRecords(w, r)
	if !ok {
		return
	}
	views := report.Aggregate(filtered)
	data, err := charts.SiteCountPNG(views.SiteCounts)
	s.servePNG(w, data, err)
}

// filteredRecords resolves the session's latest batch through the request
// filters. Chart and export requests never trigger notification; only
// page-level pipeline evaluations do.
func (s *Server) filteredRecords(w http.ResponseWriter, r *http.Request) ([]models.PredictionRecord, bool) {
	sess := s.sessions.get(w, r)
	if !sess.hasBatch {
		http.Error(w, "no batch uploaded", http.StatusNotFound)
		return nil, false
	}
	criteria := parseCriteria(r.URL.Query())
	return report.Filter(sess.records, criteria), true
}

func (s *Server) servePNG(w http.ResponseWriter, data []byte, err error) {
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// parseCriteria builds filter criteria from query parameters. A bare URL
// (no "f" marker) means the unrestricted default. With the marker, absent
// risk checkboxes really mean "match nothing" rather than "no
// restriction".
func parseCriteria(q url.Values) models.FilterCriteria {
	if q.Get("f") == "" {
		return models.DefaultFilter()
	}

	criteria := models.FilterCriteria{
		Sites:      map[string]bool{},
		RiskLevels: map[models.RiskLevel]bool{},
	}
	for _, site := range q["site"] {
		if site != "" {
			criteria.Sites[site] = true
		}
	}
	for _, raw := range q["risk"] {
		if level, ok := models.ParseRiskLevel(raw); ok {
			criteria.RiskLevels[level] = true
		}
	}
	return criteria
}

func distinctSites(records []models.PredictionRecord) []string {
	seen := make(map[string]bool)
	var sites []string
	for _, rec := range records {
		if !seen[rec.Site] {
			seen[rec.Site] = true
			sites = append(sites, rec.Site)
		}
	}
	sort.Strings(sites)
	return sites
}

func notifyNote(result *pipeline.Result) string {
	switch {
	case result.Notified:
		return "Report emailed."
	case errors.Is(result.NotifyErr, notify.ErrNotConfigured):
		return "Email not configured; notification skipped."
	case result.NotifyErr != nil:
		return "Email delivery failed; will retry on next run."
	}
	return ""
}
