package telemetry

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vectorapi/vector-agent/internal/config"
	"github.com/vectorapi/vector-agent/internal/vector"
)

type publishCall struct {
	topic   string
	payload []byte
	qos     byte
	retain  bool
}

type stubTransport struct {
	connected bool
	published []publishCall
}

func (s *stubTransport) IsConnected() bool { return s.connected }

func (s *stubTransport) Publish(topic string, payload []byte, qos byte, retain bool) error {
	s.published = append(s.published, publishCall{topic, payload, qos, retain})
	return nil
}

func (s *stubTransport) Close() {}

func testConfig() *config.Config {
	return &config.Config{
		Device: config.DeviceConfig{
			Enable:    true,
			Server:    "a.b",
			DeviceID:  "dev1",
			Namespace: "vector-api",
		},
		Transport: config.TransportConfig{QoS: 1},
	}
}

func newTestDispatcher(cfg *config.Config, tr *stubTransport) *Dispatcher {
	d := NewDispatcher(cfg, tr)
	d.now = func() time.Time { return time.Unix(1700000000, 0) }
	return d
}

func TestDispatchSkipsWhenDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Device.Enable = false
	tr := &stubTransport{connected: true}

	out := newTestDispatcher(cfg, tr).Dispatch(vector.Sample{X: 3, Y: 4})

	if out.Sent || out.Reason != ReasonDisabled {
		t.Fatalf("outcome = %+v, want skipped(disabled)", out)
	}
	if len(tr.published) != 0 {
		t.Fatalf("expected no publish, got %d", len(tr.published))
	}
}

func TestDispatchSkipsWithoutServer(t *testing.T) {
	cfg := testConfig()
	cfg.Device.Server = ""
	tr := &stubTransport{connected: true}

	out := newTestDispatcher(cfg, tr).Dispatch(vector.Sample{X: 3, Y: 4})

	if out.Sent || out.Reason != ReasonNoServer {
		t.Fatalf("outcome = %+v, want skipped(no_server_configured)", out)
	}
	if len(tr.published) != 0 {
		t.Fatalf("expected no publish, got %d", len(tr.published))
	}
}

func TestDispatchSkipsWhenNotConnected(t *testing.T) {
	tr := &stubTransport{connected: false}

	out := newTestDispatcher(testConfig(), tr).Dispatch(vector.Sample{X: 3, Y: 4})

	if out.Sent || out.Reason != ReasonNotConnected {
		t.Fatalf("outcome = %+v, want skipped(not_connected)", out)
	}
	if len(tr.published) != 0 {
		t.Fatalf("expected no publish, got %d", len(tr.published))
	}
}

func TestDispatchPublishesOnceWhenConnected(t *testing.T) {
	tr := &stubTransport{connected: true}

	out := newTestDispatcher(testConfig(), tr).Dispatch(vector.Sample{X: 3, Y: 4, Z: 0})

	if !out.Sent {
		t.Fatalf("outcome = %+v, want sent", out)
	}
	if len(tr.published) != 1 {
		t.Fatalf("publish count = %d, want 1", len(tr.published))
	}

	call := tr.published[0]
	if call.topic != "vector-api/dev1/data" {
		t.Fatalf("topic = %q, want vector-api/dev1/data", call.topic)
	}
	if call.qos != 1 || call.retain {
		t.Fatalf("qos/retain = %d/%v, want 1/false", call.qos, call.retain)
	}

	var rec Record
	if err := json.Unmarshal(call.payload, &rec); err != nil {
		t.Fatalf("payload not valid json: %v", err)
	}
	if rec.DeviceID != "dev1" {
		t.Fatalf("device_id = %q, want dev1", rec.DeviceID)
	}
	if rec.Vector.X != 3 || rec.Vector.Y != 4 || rec.Vector.Z != 0 {
		t.Fatalf("vector = %+v, want (3, 4, 0)", rec.Vector)
	}
	if rec.Vector.Magnitude != 5 {
		t.Fatalf("magnitude = %v, want 5", rec.Vector.Magnitude)
	}
	if rec.Timestamp != 1700000000 {
		t.Fatalf("timestamp = %v, want 1700000000", rec.Timestamp)
	}
}

func TestDispatchLogsRecordWhenNotConnected(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = orig }()

	tr := &stubTransport{connected: false}
	newTestDispatcher(testConfig(), tr).Dispatch(vector.Sample{X: 3, Y: 4})

	// the would-be record must land in the log, never silently dropped
	logged := buf.String()
	if !strings.Contains(logged, `"device_id":"dev1"`) {
		t.Fatalf("log output missing device_id: %s", logged)
	}
	if !strings.Contains(logged, `"magnitude":5`) {
		t.Fatalf("log output missing encoded magnitude: %s", logged)
	}
	if !strings.Contains(logged, "vector-api/dev1/data") {
		t.Fatalf("log output missing topic: %s", logged)
	}
}

func TestDispatchUsesUnknownTopicWithoutDeviceID(t *testing.T) {
	cfg := testConfig()
	cfg.Device.DeviceID = ""
	tr := &stubTransport{connected: true}

	out := newTestDispatcher(cfg, tr).Dispatch(vector.Sample{X: 1})

	if !out.Sent {
		t.Fatalf("outcome = %+v, want sent", out)
	}
	if tr.published[0].topic != "vector-api/unknown/data" {
		t.Fatalf("topic = %q, want vector-api/unknown/data", tr.published[0].topic)
	}

	var rec Record
	if err := json.Unmarshal(tr.published[0].payload, &rec); err != nil {
		t.Fatalf("payload not valid json: %v", err)
	}
	if rec.DeviceID != FallbackDeviceID {
		t.Fatalf("device_id = %q, want %q", rec.DeviceID, FallbackDeviceID)
	}
}

func TestDispatchRecomputesMagnitude(t *testing.T) {
	tr := &stubTransport{connected: true}

	// a producer-set magnitude must be overwritten, never trusted
	newTestDispatcher(testConfig(), tr).Dispatch(vector.Sample{X: 3, Y: 4, Magnitude: 99})

	var rec Record
	if err := json.Unmarshal(tr.published[0].payload, &rec); err != nil {
		t.Fatalf("payload not valid json: %v", err)
	}
	if rec.Vector.Magnitude != 5 {
		t.Fatalf("magnitude = %v, want recomputed 5", rec.Vector.Magnitude)
	}
}
