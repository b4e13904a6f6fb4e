package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"faultwatch/internal/pipeline"
)

// Server is the interactive dashboard surface over the prediction
// pipeline. One session per browser cookie; each session owns its
// at-most-once notification flag.
type Server struct {
	pipeline *pipeline.Pipeline
	port     string
	tmpl     *templates
	sessions *sessionRegistry
}

func NewServer(p *pipeline.Pipeline, port string) *Server {
	return &Server{
		pipeline: p,
		port:     port,
		tmpl:     newTemplates(),
		sessions: newSessionRegistry(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/report", s.handleReport)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/email", s.handleEmail)
	mux.HandleFunc("/export.csv", s.handleExport)
	mux.HandleFunc("/charts/fault.png", s.handleFaultChart)
	mux.HandleFunc("/charts/risk.png", s.handleRiskChart)
	mux.HandleFunc("/charts/site.png", s.handleSiteChart)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
