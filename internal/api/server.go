// Package api serves the calibrated weight database over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/gesture.report/internal/httputil"
	"github.com/banshee-data/gesture.report/internal/mocap"
	"github.com/banshee-data/gesture.report/internal/mocap/storage/sqlite"
	"github.com/banshee-data/gesture.report/internal/monitoring"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// WeightReader is the read side of the weight store the API needs.
type WeightReader interface {
	mocap.WeightTable
	ListRecordings(ctx context.Context, project string) ([]string, error)
	ListRuns(ctx context.Context, project string) ([]*sqlite.CalibrationRun, error)
	GetRun(ctx context.Context, runID string) (*sqlite.CalibrationRun, error)
}

type Server struct {
	store   WeightReader
	project string
}

// NewServer returns a server reading from store. project is used when a
// request does not name one.
func NewServer(store WeightReader, project string) *Server {
	return &Server{store: store, project: project}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/recordings", s.listRecordings)
	mux.HandleFunc("/api/weights", s.showWeights)
	mux.HandleFunc("/api/runs", s.listRuns)
	mux.HandleFunc("/api/runs/{id}", s.showRun)
	return mux
}

func (s *Server) projectParam(r *http.Request) string {
	if p := r.URL.Query().Get("project"); p != "" {
		return p
	}
	return s.project
}

func (s *Server) listRecordings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	project := s.projectParam(r)
	names, err := s.store.ListRecordings(r.Context(), project)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	if names == nil {
		names = []string{}
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"project":    project,
		"recordings": names,
	})
}

type weightsResponse struct {
	Project   string    `json:"project"`
	Recording string    `json:"recording"`
	Markers   []string  `json:"markers,omitempty"`
	Weights   []float64 `json:"weights"`
}

func (s *Server) showWeights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	name := r.URL.Query().Get("recording")
	if name == "" {
		httputil.BadRequest(w, "missing 'recording' parameter")
		return
	}
	project := s.projectParam(r)
	entry, ok, err := s.store.Lookup(r.Context(), project, name)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	if !ok {
		httputil.NotFound(w, "no weights for "+project+"/"+name)
		return
	}
	httputil.WriteJSONOK(w, weightsResponse{
		Project:   project,
		Recording: name,
		Markers:   entry.Markers,
		Weights:   entry.Values,
	})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runs, err := s.store.ListRuns(r.Context(), s.projectParam(r))
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	if runs == nil {
		runs = []*sqlite.CalibrationRun{}
	}
	httputil.WriteJSONOK(w, runs)
}

func (s *Server) showRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	run, err := s.store.GetRun(r.Context(), r.PathValue("id"))
	if errors.Is(err, sqlite.ErrRunNotFound) {
		httputil.NotFound(w, err.Error())
		return
	}
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, run)
}
