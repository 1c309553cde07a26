// Package server serves generated reports and a small JSON API over the
// configured reports directory.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/your-org/cucumber-report-enhanced/pkg/analytics"
	"github.com/your-org/cucumber-report-enhanced/pkg/config"
	"github.com/your-org/cucumber-report-enhanced/pkg/export"
	"github.com/your-org/cucumber-report-enhanced/pkg/generator"
	"github.com/your-org/cucumber-report-enhanced/pkg/logger"
	"github.com/your-org/cucumber-report-enhanced/pkg/trace"
)

// Server provides report viewing
type Server struct {
	config *config.Config
	router *mux.Router
}

// ReportInfo describes one generated artifact
type ReportInfo struct {
	Kind     string    `json:"kind"`
	URL      string    `json:"url"`
	Size     int64     `json:"size"`
	Files    int       `json:"files,omitempty"`
	Modified time.Time `json:"modified"`
}

// NewServer creates a new report server
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		router: mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	logger.Infof("Server running at http://%s", addr)
	logger.Infof("Press Ctrl+C to stop")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) || err == nil {
			return nil
		}
		return err
	}
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/reports", s.handleListReports).Methods(http.MethodGet)
	api.HandleFunc("/reports/{kind}", s.handleGetReport).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)

	// static files last so /api is never shadowed
	fs := http.FileServer(http.Dir(s.config.ReportsDir))
	s.router.PathPrefix("/").Handler(fs)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports := make([]ReportInfo, 0, len(generator.Kinds))
	for _, kind := range generator.Kinds {
		if info, ok := s.reportInfo(kind); ok {
			reports = append(reports, info)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	info, ok := s.reportInfo(kind)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no %s report has been generated", kind))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	tr, err := trace.Load(s.config.TracePath())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	report := analytics.Aggregate(tr)
	report.GeneratedAt = time.Now()
	writeJSON(w, http.StatusOK, export.NewExporter(s.config.ProjectName).Build(report))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	kinds := r.URL.Query()["kind"]
	artifacts, err := generator.NewGenerator(s.config).GenerateFromFile(s.config.TracePath(), kinds...)
	if err != nil {
		logger.Errorf("Report generation failed: %v", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"artifacts": artifacts})
}

// reportInfo looks up the artifact of kind under the reports directory
func (s *Server) reportInfo(kind string) (ReportInfo, bool) {
	var path string
	switch kind {
	case "evidence":
		path = s.config.EvidencePath()
	case "timeline":
		path = s.config.TimelinePath()
	case "allure":
		path = s.config.AllurePath()
	default:
		return ReportInfo{}, false
	}

	stat, err := os.Stat(path)
	if err != nil {
		return ReportInfo{}, false
	}

	info := ReportInfo{Kind: kind, URL: s.urlFor(path), Modified: stat.ModTime().UTC()}
	if stat.IsDir() {
		entries, err := os.ReadDir(path)
		if err == nil {
			info.Files = len(entries)
		}
	} else {
		info.Size = stat.Size()
	}
	return info, true
}

func (s *Server) urlFor(path string) string {
	rel, err := filepath.Rel(s.config.ReportsDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return "/" + filepath.ToSlash(rel)
}

func statusFor(err error) int {
	var notFound *trace.NotFoundError
	var malformed *trace.MalformedTraceError
	switch {
	case errors.Is(err, generator.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &malformed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
