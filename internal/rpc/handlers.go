package rpc

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vectorapi/vector-agent/internal/telemetry"
	"github.com/vectorapi/vector-agent/internal/vector"
)

// vectorArgs parses leniently: absent coordinates default to zero rather
// than rejecting the request.
type vectorArgs struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type vectorReply struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Magnitude float64 `json:"magnitude"`
}

type statusReply struct {
	Uptime           int64   `json:"uptime"`
	FreeRAM          uint64  `json:"free_ram"`
	LinkUp           bool    `json:"link_up"`
	LatencyMs        float64 `json:"latency_ms"`
	PacketLoss       float64 `json:"packet_loss_pct"`
	Reachable        bool    `json:"reachable"`
	TelemetryEnabled bool    `json:"telemetry_enabled"`
	DeviceID         string  `json:"device_id"`
}

func parseVectorArgs(args json.RawMessage) vectorArgs {
	var v vectorArgs
	if len(args) > 0 {
		// ignore parse errors, missing fields stay zero
		_ = json.Unmarshal(args, &v)
	}
	return v
}

// handleVectorCreate dispatches the vector and replies with the magnitude
// computed directly from the input, so the caller always gets an answer even
// when the dispatch was skipped.
func (s *Server) handleVectorCreate(args json.RawMessage) (any, error) {
	a := parseVectorArgs(args)

	out := s.disp.Dispatch(vector.Sample{X: a.X, Y: a.Y, Z: a.Z})
	log.Debug().
		Str("request_id", uuid.NewString()).
		Str("outcome", out.String()).
		Msg("vector create dispatched")

	return vectorReply{
		X:         telemetry.Round2(a.X),
		Y:         telemetry.Round2(a.Y),
		Z:         telemetry.Round2(a.Z),
		Magnitude: telemetry.Round2(vector.Magnitude(a.X, a.Y, a.Z)),
	}, nil
}

// handleDeviceStatus replies with a health snapshot; it never dispatches.
func (s *Server) handleDeviceStatus(args json.RawMessage) (any, error) {
	probe := s.probe.Stats()
	return statusReply{
		Uptime:           int64(s.source.UptimeSeconds()),
		FreeRAM:          s.source.FreeMemoryBytes(),
		LinkUp:           s.source.LinkUp(),
		LatencyMs:        probe.AvgLatencyMs,
		PacketLoss:       probe.PacketLoss,
		Reachable:        probe.Reachable,
		TelemetryEnabled: s.cfg.Device.Enable,
		DeviceID:         s.cfg.Device.DeviceID,
	}, nil
}

// handleVector is the HTTP surface: POST dispatches a vector, anything else
// gets the device descriptor. Every exchange is self-contained, so the
// connection is closed after the reply.
func (s *Server) handleVector(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Connection", "close")

	if r.Method == http.MethodPost {
		var a vectorArgs
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			a = vectorArgs{}
		}

		s.disp.Dispatch(vector.Sample{X: a.X, Y: a.Y, Z: a.Z})

		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"magnitude": telemetry.Round2(vector.Magnitude(a.X, a.Y, a.Z)),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "Vector API Device",
		"device_id": s.cfg.Device.DeviceID,
	})
}
