// Package server serves the analysis form and JSON API.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/dshills/leetgrade/internal/grader"
	"github.com/dshills/leetgrade/internal/history"
	"github.com/dshills/leetgrade/internal/report"
)

const (
	shutdownWait   = 5 * time.Second
	serverTimeout  = 120 * time.Second
	maxHeaderBytes = 1 << 20
	maxBodyBytes   = 1 << 20
)

//go:embed templates/*.html
var templateFS embed.FS

// Options configures a Server. Grader and Store are optional.
type Options struct {
	Version string
	Rubric  string

	// Grader backs POST /api/grade. Nil means 503.
	Grader *grader.Grader

	// Store backs GET /api/history. Nil disables history.
	Store *history.Store

	// Timeout bounds each grade request.
	Timeout time.Duration

	Logger *slog.Logger
	Now    func() time.Time
}

// Server handles HTTP requests.
type Server struct {
	opts     Options
	analyzer report.Analyzer
	tmpl     *template.Template
	log      *slog.Logger
}

// New builds a Server.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		opts:     opts,
		analyzer: report.Analyzer{Now: opts.Now, Version: opts.Version},
		tmpl:     template.Must(template.New("").ParseFS(templateFS, "templates/*.html")),
		log:      log,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.homeView)
	mux.HandleFunc("POST /{$}", s.analyzeForm)
	mux.HandleFunc("GET /healthz", healthz)

	mux.HandleFunc("POST /api/analyze", s.analyzeAPI)
	mux.HandleFunc("POST /api/grade", s.gradeAPI)
	mux.HandleFunc("GET /api/history", s.historyAPI)
	mux.HandleFunc("GET /api/history/{id}", s.historyItemAPI)

	return mux
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:           addr,
		Handler:        s.Handler(),
		ReadTimeout:    serverTimeout,
		WriteTimeout:   serverTimeout,
		MaxHeaderBytes: maxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.log.Info("server started", "address", "http://"+addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("server stopped")
	return nil
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// record saves a report when history is enabled. Failures are logged only.
func (s *Server) record(ctx context.Context, r *report.Report) {
	if s.opts.Store == nil {
		return
	}
	if err := s.opts.Store.Save(ctx, r); err != nil {
		s.log.Error("failed to save report", "id", r.ID, "error", err)
	}
}
