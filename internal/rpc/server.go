package rpc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/vectorapi/vector-agent/internal/config"
	"github.com/vectorapi/vector-agent/internal/metrics"
	"github.com/vectorapi/vector-agent/internal/telemetry"
	"github.com/vectorapi/vector-agent/internal/vector"
)

// Dispatcher is the slice of the telemetry pipeline the handlers need.
type Dispatcher interface {
	Dispatch(s vector.Sample) telemetry.Outcome
}

// HandlerFunc handles one named RPC method. Args are the raw request body.
type HandlerFunc func(args json.RawMessage) (any, error)

// Server exposes the RPC methods and the /vector HTTP endpoint.
type Server struct {
	cfg      *config.Config
	disp     Dispatcher
	source   metrics.Source
	probe    *metrics.Probe
	handlers map[string]HandlerFunc
	srv      *http.Server
}

func NewServer(cfg *config.Config, disp Dispatcher, source metrics.Source, probe *metrics.Probe) *Server {
	s := &Server{
		cfg:      cfg,
		disp:     disp,
		source:   source,
		probe:    probe,
		handlers: make(map[string]HandlerFunc),
	}

	s.Register("Vector.Create", s.handleVectorCreate)
	s.Register("Device.Status", s.handleDeviceStatus)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/rpc/{method}", s.handleRPC)
	r.HandleFunc("/vector", s.handleVector)

	s.srv = &http.Server{Addr: cfg.RPC.Listen, Handler: r}
	return s
}

// Register binds a handler to a method name.
func (s *Server) Register(method string, h HandlerFunc) {
	s.handlers[method] = h
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Serve() error {
	log.Info().Str("listen", s.cfg.RPC.Listen).Msg("rpc server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("rpc server shutdown failed")
	}
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	method := chi.URLParam(r, "method")
	h, ok := s.handlers[method]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown method: " + method})
		return
	}

	var args json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		// lenient: an empty or malformed body means no args
		args = nil
	}

	result, err := h(args)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response failed")
	}
}
