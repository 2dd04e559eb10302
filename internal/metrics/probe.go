package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/go-ping/ping"
	"github.com/rs/zerolog/log"
)

type ProbeStats struct {
	AvgLatencyMs float64
	PacketLoss   float64
	Reachable    bool
}

// Probe measures reachability of a well-known host so Device.Status can
// report live network quality alongside link state.
type Probe struct {
	host     string
	interval time.Duration
	mutex    sync.RWMutex
	stats    ProbeStats
}

func NewProbe(host string, interval time.Duration) *Probe {
	return &Probe{
		host:     host,
		interval: interval,
	}
}

// Run probes once per interval until the context is cancelled.
func (p *Probe) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RunOnce()
		}
	}
}

func (p *Probe) RunOnce() {
	pinger, err := ping.NewPinger(p.host)
	if err != nil {
		log.Warn().Err(err).Str("host", p.host).Msg("probe create failed")
		return
	}

	pinger.Count = 3
	pinger.Timeout = 5 * time.Second
	pinger.SetPrivileged(true)

	if err := pinger.Run(); err != nil {
		log.Warn().Err(err).Str("host", p.host).Msg("probe run failed")
		return
	}

	stats := pinger.Statistics()

	p.mutex.Lock()
	p.stats = ProbeStats{
		AvgLatencyMs: float64(stats.AvgRtt.Milliseconds()),
		PacketLoss:   stats.PacketLoss,
		Reachable:    stats.PacketsRecv > 0,
	}
	p.mutex.Unlock()
}

func (p *Probe) Stats() ProbeStats {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.stats
}
