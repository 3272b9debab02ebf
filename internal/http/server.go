// Package http serves the bill tracker UI: the collection page, the
// mutation endpoints and the reports page with its export formats.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"

	"contas/internal/log"
	"contas/internal/metrics"
	"contas/internal/middleware/ratelimit"
	"contas/internal/middleware/security"
	"contas/internal/middleware/trace"
	"contas/internal/services"
	"contas/internal/store"
	appweb "contas/web"
)

type Server struct {
	http.Server
	templates *template.Template
	store     *store.Store
	reports   *services.ReportService
	logger    *log.Logger
	limiter   *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server.
func NewServer(addr string, st *store.Store, reports *services.ReportService, logger *log.Logger) (*Server, error) {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:   st,
		reports: reports,
		logger:  logger.WithComponent(log.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssets(3600)(static))
	}

	headers := security.Headers(security.DefaultHeadersConfig())
	logged := log.Middleware(s.logger)
	traced := trace.Middleware(trace.ExtractClientIP)
	scoped := log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})
	limited := s.limiter.Middleware(trace.ExtractClientIP)

	route := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, headers(logged(traced(scoped(h)))))
	}
	mutation := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, headers(logged(traced(scoped(limited(h))))))
	}

	route("/", s.handleIndex)
	mutation("/bills", s.handleCreateBill)
	mutation("/bills/update", s.handleUpdateBill)
	mutation("/bills/toggle", s.handleTogglePaid)
	mutation("/bills/delete", s.handleDeleteBill)
	route("/reports", s.handleReports)
	route("/reports/export.xlsx", s.handleExportXLSX)
	route("/reports/export.pdf", s.handleExportPDF)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.Handle("/metrics", metrics.Handler())

	return s, nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
