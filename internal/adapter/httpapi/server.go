// Package httpapi exposes the control and observability HTTP surface:
// health and readiness probes, Prometheus metrics, and a small JSON API
// for reading status and changing setpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/BohdanVlas/Microclimate-Sys/internal/control"
	"github.com/BohdanVlas/Microclimate-Sys/internal/domain"
)

// Controls is the mutable controller surface the API needs.
type Controls interface {
	Status() control.Status
	SetSetpoint(name string, value float64) error
}

// StatusSource reports the live state of the control loop.
type StatusSource interface {
	Latest() (domain.Sample, bool)
	RunID() string
	CheckReadiness(ctx context.Context) error
}

// SetpointSaver persists setpoint changes. May be nil when persistence
// is disabled.
type SetpointSaver interface {
	Save(ctx context.Context, name string, value float64) error
}

// Server exposes the HTTP endpoints.
type Server struct {
	httpServer *http.Server
	controls   Controls
	source     StatusSource
	saver      SetpointSaver
	logger     *slog.Logger
}

// NewServer creates an HTTP server with probe, metrics, and API routes.
func NewServer(addr string, controls Controls, source StatusSource, saver SetpointSaver, logger *slog.Logger) *Server {
	s := &Server{
		controls: controls,
		source:   source,
		saver:    saver,
		logger:   logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/actuators", s.handleActuators).Methods(http.MethodGet)
	api.HandleFunc("/setpoints/{name}", s.handleSetSetpoint).Methods(http.MethodPut)

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPut},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      c.Handler(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.source.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// statusResponse is the payload of GET /api/v1/status.
type statusResponse struct {
	RunID      string               `json:"run_id"`
	Setpoints  domain.Setpoints     `json:"setpoints"`
	Hysteresis domain.Hysteresis    `json:"hysteresis"`
	Actuators  domain.ActuatorState `json:"actuators"`
	Reading    *domain.Readings     `json:"reading,omitempty"`
	Comfort    string               `json:"comfort,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	st := s.controls.Status()
	resp := statusResponse{
		RunID:      s.source.RunID(),
		Setpoints:  st.Setpoints,
		Hysteresis: st.Hysteresis,
		Actuators:  st.Actuators,
	}
	if sample, ok := s.source.Latest(); ok {
		resp.Reading = &sample.Readings
		resp.Comfort = sample.Comfort
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActuators(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.controls.Status().Actuators)
}

// setSetpointRequest is the payload of PUT /api/v1/setpoints/{name}.
type setSetpointRequest struct {
	Value float64 `json:"value"`
}

func (s *Server) handleSetSetpoint(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req setSetpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := s.controls.SetSetpoint(name, req.Value); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// Persistence failures must not undo an applied setpoint.
	if s.saver != nil {
		if err := s.saver.Save(r.Context(), name, req.Value); err != nil {
			s.logger.Warn("persist setpoint failed", "name", name, "error", err)
		}
	}

	s.logger.Info("setpoint changed", "name", name, "value", req.Value)
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "value": req.Value})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
