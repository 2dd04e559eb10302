package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/vectorapi/vector-agent/internal/config"
	"github.com/vectorapi/vector-agent/internal/transport"
	"github.com/vectorapi/vector-agent/internal/vector"
)

var dispatchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vector_agent_dispatch_outcomes_total",
	Help: "Dispatch results by outcome (sent or skip reason).",
}, []string{"outcome"})

// Dispatcher runs the compute, encode, send pipeline for one sample at a
// time. The transport is injected so a fake can stand in during tests.
type Dispatcher struct {
	cfg *config.Config
	tr  transport.Transport
	now func() time.Time
}

func NewDispatcher(cfg *config.Config, tr transport.Transport) *Dispatcher {
	return &Dispatcher{
		cfg: cfg,
		tr:  tr,
		now: time.Now,
	}
}

// Dispatch fills in the sample magnitude, encodes it, and attempts at most
// one publish. Every call produces exactly one log line so the send path is
// auditable from logs alone. Identity is snapshotted once per call.
func (d *Dispatcher) Dispatch(s vector.Sample) Outcome {
	ident := d.cfg.Device

	if !ident.Enable {
		log.Debug().Msg("telemetry disabled, skipping dispatch")
		return d.done(Skipped(ReasonDisabled))
	}

	if ident.Server == "" {
		log.Warn().Msg("telemetry server not configured, skipping dispatch")
		return d.done(Skipped(ReasonNoServer))
	}

	s.Magnitude = vector.Magnitude(s.X, s.Y, s.Z)
	rec := Encode(s, ident.DeviceID, d.now().Unix())

	payload, err := json.Marshal(rec)
	if err != nil {
		// unreachable for this record shape, kept for completeness
		log.Error().Err(err).Msg("encode telemetry record failed")
		return d.done(Skipped(ReasonPublishFailed))
	}

	topic := Topic(ident.Namespace, ident.DeviceID)

	if !d.tr.IsConnected() {
		log.Info().
			Str("topic", topic).
			RawJSON("record", payload).
			Msg("transport not connected, telemetry not sent")
		return d.done(Skipped(ReasonNotConnected))
	}

	qos := byte(d.cfg.Transport.QoS)
	if err := d.tr.Publish(topic, payload, qos, d.cfg.Transport.Retain); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("telemetry publish failed")
		return d.done(Skipped(ReasonPublishFailed))
	}

	log.Info().
		Str("topic", topic).
		Float64("magnitude", rec.Vector.Magnitude).
		Msg("telemetry published")
	return d.done(Sent())
}

func (d *Dispatcher) done(o Outcome) Outcome {
	dispatchOutcomes.WithLabelValues(o.String()).Inc()
	return o
}

// Topic derives the publish topic for a device id, falling back to the
// unknown token when none is configured.
func Topic(namespace, deviceID string) string {
	if deviceID == "" {
		deviceID = FallbackDeviceID
	}
	return fmt.Sprintf("%s/%s/data", namespace, deviceID)
}
