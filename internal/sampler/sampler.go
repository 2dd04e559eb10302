package sampler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vectorapi/vector-agent/internal/config"
	"github.com/vectorapi/vector-agent/internal/metrics"
	"github.com/vectorapi/vector-agent/internal/telemetry"
	"github.com/vectorapi/vector-agent/internal/vector"
)

// Axis scaling for the synthesized health vector. The mapping is a
// demonstration of the pipeline, not a physical measurement: free memory and
// uptime are scaled down, link state becomes a fixed sentinel.
const (
	memoryScale  = 1000.0
	uptimeScale  = 100.0
	linkSentinel = 100.0
)

type Dispatcher interface {
	Dispatch(s vector.Sample) telemetry.Outcome
}

// Sampler periodically synthesizes a vector from device health and feeds it
// to the dispatcher. The interval is fixed at startup; it is not
// reconfigurable at runtime.
type Sampler struct {
	cfg    *config.Config
	disp   Dispatcher
	source metrics.Source
}

func New(cfg *config.Config, disp Dispatcher, source metrics.Source) *Sampler {
	return &Sampler{
		cfg:    cfg,
		disp:   disp,
		source: source,
	}
}

// Run arms the timer once and ticks until the context is cancelled. A
// non-positive sync interval leaves the sampler idle for the process
// lifetime.
func (s *Sampler) Run(ctx context.Context) {
	interval := s.cfg.Device.SyncIntervalSeconds
	if interval <= 0 {
		log.Info().Msg("periodic telemetry disabled")
		return
	}

	log.Info().Int("interval_seconds", interval).Msg("periodic sampler armed")

	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("periodic sampler stopping")
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick sends one health vector. Outcomes are logged, never escalated.
func (s *Sampler) Tick() {
	if !s.cfg.Device.SendTelemetry {
		return
	}

	link := 0.0
	if s.source.LinkUp() {
		link = linkSentinel
	}

	sm := vector.Sample{
		X: float64(s.source.FreeMemoryBytes()) / memoryScale,
		Y: s.source.UptimeSeconds() / uptimeScale,
		Z: link,
	}

	out := s.disp.Dispatch(sm)
	log.Debug().Str("outcome", out.String()).Msg("periodic telemetry tick")
}
