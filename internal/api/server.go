// Package api exposes the HTTP interface for the writeflow service.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stratafield/writeflow/internal/store"
)

// Enqueuer accepts write requests for asynchronous execution.
type Enqueuer interface {
	Enqueue(ctx context.Context, req store.WriteRequest) error
}

// Server wires HTTP handlers to the write queue and the metrics registry.
type Server struct {
	router chi.Router
	queue  Enqueuer
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes. The /metrics
// endpoint serves the default Prometheus gatherer, which includes the
// write registry once it is initialized.
func NewServer(queue Enqueuer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{queue: queue, logger: logger}

	r := chi.NewRouter()
	r.Use(s.loggingMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/tasks", s.submitTask)
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ready")
}

// submitRecord is one record in a task submission.
type submitRecord struct {
	Key     string `json:"key"`
	Payload string `json:"payload"`
}

// submitTaskRequest is the body of POST /v1/tasks.
type submitTaskRequest struct {
	Source  string         `json:"source"`
	Records []submitRecord `json:"records"`
}

type submitTaskResponse struct {
	TaskID string `json:"task_id"`
	Rows   int    `json:"rows"`
}

func (s *Server) submitTask(w http.ResponseWriter, r *http.Request) {
	var body submitTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}
	if len(body.Records) == 0 {
		s.writeError(w, http.StatusBadRequest, "at least one record is required")
		return
	}
	if body.Source == "" {
		body.Source = "api"
	}

	taskID := uuid.New()
	now := time.Now().UTC()
	req := store.WriteRequest{TaskID: taskID, Source: body.Source}
	for _, rec := range body.Records {
		req.Rows = append(req.Rows, store.Row{
			ID:         uuid.New(),
			TaskID:     taskID,
			Source:     body.Source,
			Key:        rec.Key,
			Payload:    []byte(rec.Payload),
			RecordedAt: now,
		})
	}

	if err := s.queue.Enqueue(r.Context(), req); err != nil {
		s.logger.Error("enqueue write task failed", zap.Error(err))
		s.writeError(w, http.StatusServiceUnavailable, "queue unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(submitTaskResponse{
		TaskID: taskID.String(),
		Rows:   len(req.Rows),
	}); err != nil {
		s.logger.Error("encode response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		s.logger.Error("encode error response failed", zap.Error(err))
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
