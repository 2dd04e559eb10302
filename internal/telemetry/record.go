package telemetry

import (
	"math"

	"github.com/vectorapi/vector-agent/internal/vector"
)

// FallbackDeviceID is published when no device id is configured.
const FallbackDeviceID = "unknown"

type VectorPayload struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Magnitude float64 `json:"magnitude"`
}

// Record is the wire shape shipped to the backend. Timestamp is seconds
// since epoch, supplied by the caller.
type Record struct {
	DeviceID  string        `json:"device_id"`
	Vector    VectorPayload `json:"vector"`
	Timestamp int64         `json:"timestamp"`
}

// Encode builds a Record from a sample. Axis values are rounded to two
// decimals for transport; internal computation keeps full precision.
func Encode(s vector.Sample, deviceID string, timestamp int64) Record {
	if deviceID == "" {
		deviceID = FallbackDeviceID
	}
	return Record{
		DeviceID: deviceID,
		Vector: VectorPayload{
			X:         Round2(s.X),
			Y:         Round2(s.Y),
			Z:         Round2(s.Z),
			Magnitude: Round2(s.Magnitude),
		},
		Timestamp: timestamp,
	}
}

// Round2 rounds to two decimal places, matching the transport precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
