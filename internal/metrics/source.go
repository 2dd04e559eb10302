package metrics

import (
	"runtime"
	"time"

	"github.com/vishvananda/netlink"
)

// Source exposes the device health readings the sampler and status handler
// draw from.
type Source interface {
	UptimeSeconds() float64
	FreeMemoryBytes() uint64
	LinkUp() bool
}

// System reads health from the running process and the kernel. Link state
// comes from the operational state of the configured network interface; when
// no interface is configured the link is reported up.
type System struct {
	iface   string
	started time.Time
}

func NewSystem(iface string) *System {
	return &System{
		iface:   iface,
		started: time.Now(),
	}
}

func (s *System) UptimeSeconds() float64 {
	return time.Since(s.started).Seconds()
}

func (s *System) FreeMemoryBytes() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapIdle - m.HeapReleased
}

func (s *System) LinkUp() bool {
	if s.iface == "" {
		return true
	}
	link, err := netlink.LinkByName(s.iface)
	if err != nil {
		return false
	}
	return link.Attrs().OperState == netlink.OperUp
}
