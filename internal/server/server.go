// Package server exposes the analysis pipeline over a JSON HTTP API.
// Submit, poll, cancel, plus a read-only visualization projection that
// charting code can consume without further transformation.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"lectio/internal/analysis"
	"lectio/internal/transcript"
)

// Server is the HTTP front of an orchestrator.
type Server struct {
	addr string
	orch *analysis.Orchestrator
	log  *zap.Logger
	http *http.Server
}

// New creates a server bound to addr. logger may be nil.
func New(addr string, orch *analysis.Orchestrator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{addr: addr, orch: orch, log: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/analyses", s.handleSubmit)
	mux.HandleFunc("GET /api/v1/analyses/{id}", s.handleGet)
	mux.HandleFunc("DELETE /api/v1/analyses/{id}", s.handleCancel)
	mux.HandleFunc("GET /api/v1/analyses/{id}/heatmap", s.handleHeatmap)
	mux.HandleFunc("GET /api/v1/healthz", s.handleHealthz)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.logRequests(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.http.Shutdown(shutdownCtx)
	}()

	s.log.Info("api server listening", zap.String("addr", listener.Addr().String()))
	if err := s.http.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// submitRequest is the POST body.
type submitRequest struct {
	Utterances []transcript.Utterance `json:"utterances"`
}

// submitResponse acknowledges an accepted analysis.
type submitResponse struct {
	AnalysisID string          `json:"analysis_id"`
	Status     analysis.Status `json:"status"`
	Message    string          `json:"message"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	job, err := s.orch.Submit(r.Context(), req.Utterances)
	if err != nil {
		var vErr *analysis.JobValidationError
		if errors.As(err, &vErr) {
			s.writeError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	s.writeJSON(w, http.StatusAccepted, submitResponse{
		AnalysisID: job.ID,
		Status:     job.Status,
		Message:    "analysis accepted",
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	job, err := s.orch.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.orch.Cancel(id); err != nil {
		s.writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	// Idempotent: cancelling a terminal job reports its actual state.
	job, err := s.orch.Get(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	s.writeJSON(w, http.StatusOK, submitResponse{
		AnalysisID: job.ID,
		Status:     job.Status,
		Message:    "cancellation requested",
	})
}

// heatmapResponse is the visualization projection.
type heatmapResponse struct {
	AnalysisID    string `json:"analysis_id"`
	Dimensions    any    `json:"dimensions"`
	HeatmapData   any    `json:"heatmap_data"`
	Distributions any    `json:"distributions"`
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	job, err := s.orch.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if job.Result == nil {
		s.writeError(w, http.StatusConflict, "analysis is "+string(job.Status)+", no result yet")
		return
	}

	m := job.Result.Matrix
	s.writeJSON(w, http.StatusOK, heatmapResponse{
		AnalysisID:    job.ID,
		Dimensions:    m.Dimensions,
		HeatmapData:   m.HeatmapData,
		Distributions: m.Distributions(),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// logRequests logs method, path and duration for every request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}
