package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	port      string
	running   int32
	connected int32
}

func New(port string) *Server {
	return &Server{port: port}
}

func (s *Server) SetRunning(ok bool) {
	if ok {
		atomic.StoreInt32(&s.running, 1)
	} else {
		atomic.StoreInt32(&s.running, 0)
	}
}

func (s *Server) SetConnected(ok bool) {
	if ok {
		atomic.StoreInt32(&s.connected, 1)
	} else {
		atomic.StoreInt32(&s.connected, 0)
	}
}

func (s *Server) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe("127.0.0.1:"+s.port, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"running":             atomic.LoadInt32(&s.running) == 1,
		"transport_connected": atomic.LoadInt32(&s.connected) == 1,
	}
	json.NewEncoder(w).Encode(resp)
}
