package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"faultwatch/internal/ingest"
	"faultwatch/internal/notify"
	"faultwatch/internal/pipeline"
	"faultwatch/internal/predict"
)

// staticOracle returns a fixed record per merged row site, enough to
// exercise the handlers end to end.
type staticOracle struct{}

func (staticOracle) Name() string { return "static" }

func (staticOracle) Predict(_ context.Context, table *ingest.Table) ([]predict.RawRecord, error) {
	var records []predict.RawRecord
	for _, row := range table.Rows {
		records = append(records, predict.RawRecord{
			"Site":            row["site"],
			"Location":        "North",
			"Fault":           "Power Failure",
			"Probability (%)": 90.0,
			"Risk Level":      "HIGH",
			"Possible Cause":  "Battery degradation",
			"Recommendation":  "Replace battery bank",
			"Team":            "Power",
		})
	}
	return records, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	p := pipeline.New(staticOracle{}, notify.NewDispatcher(nil, nil))
	return NewServer(p, "0")
}

func uploadRequest(t *testing.T, csvBody string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", "alarms.csv")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(fw, csvBody)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestServer_IndexWithoutBatch(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Upload Alarm Log Files") {
		t.Error("expected upload form on empty dashboard")
	}
}

func TestServer_UploadThenReport(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "Site,Fault\nA,Power Failure\nA,Power Failure\n"))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("upload status = %d, want 303", rec.Code)
	}
	cookie := sessionCookieFrom(t, rec)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "Predicted Faults with Recommendations") {
		t.Error("expected prediction table after upload")
	}
	if !strings.Contains(body, "Power Failure") {
		t.Error("expected predicted fault in table")
	}
}

func TestServer_FilterToNoMatch(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "Site,Fault\nA,Power Failure\n"))
	cookie := sessionCookieFrom(t, rec)

	// Filter marker present but no risk levels checked: vacuous false.
	req := httptest.NewRequest(http.MethodGet, "/?f=1", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "No results match the selected filters") {
		t.Error("expected no-filter-match message")
	}
}

func TestServer_ExportCSV(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "Site,Fault\nA,Power Failure\n"))
	cookie := sessionCookieFrom(t, rec)

	req := httptest.NewRequest(http.MethodGet, "/export.csv", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "future_fault_report.csv") {
		t.Errorf("Content-Disposition = %q", got)
	}
	data, _ := io.ReadAll(rec.Body)
	if !strings.HasPrefix(string(data), "Site,Location,Fault") {
		t.Errorf("unexpected export header: %q", string(data[:40]))
	}
}

func TestServer_ExportWithoutBatch(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export.csv", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a batch", rec.Code)
	}
}

func TestServer_ChartEndpoints(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "Site,Fault\nA,Power Failure\n"))
	cookie := sessionCookieFrom(t, rec)

	for _, path := range []string{"/charts/fault.png", "/charts/risk.png", "/charts/site.png"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(cookie)
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s content type = %q", path, ct)
		}
	}
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

// flakyMailer fails its first send and succeeds afterwards.
type flakyMailer struct {
	sends int
	fail  bool
}

func (m *flakyMailer) Send(context.Context, string, string, []string) error {
	m.sends++
	if m.fail && m.sends == 1 {
		return fmt.Errorf("connection refused")
	}
	return nil
}

func TestServer_ReportRoute(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "Site,Fault\nA,Power Failure\n"))
	cookie := sessionCookieFrom(t, rec)

	req := httptest.NewRequest(http.MethodGet, "/report?f=1&risk=HIGH", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Predicted Faults with Recommendations") {
		t.Error("expected prediction table from report route")
	}
}

func TestServer_EmailTrigger(t *testing.T) {
	mailer := &flakyMailer{fail: true}
	p := pipeline.New(staticOracle{}, notify.NewDispatcher(mailer, []string{"noc@example.com"}))
	s := NewServer(p, "0")
	handler := s.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "Site,Fault\nA,Power Failure\n"))
	cookie := sessionCookieFrom(t, rec)

	// The upload's automatic dispatch failed, leaving the session
	// eligible; the explicit trigger retries.
	if mailer.sends != 1 {
		t.Fatalf("sends after upload = %d, want 1", mailer.sends)
	}

	req := httptest.NewRequest(http.MethodPost, "/email", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("email status = %d, want 303", rec.Code)
	}
	if mailer.sends != 2 {
		t.Fatalf("sends after trigger = %d, want 2", mailer.sends)
	}

	// A second trigger is a no-op for the session.
	req = httptest.NewRequest(http.MethodPost, "/email", nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if mailer.sends != 2 {
		t.Errorf("sends after repeat trigger = %d, want still 2", mailer.sends)
	}
}

func TestServer_EmailWithoutBatch(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/email", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a batch", rec.Code)
	}
}
