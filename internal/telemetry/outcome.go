package telemetry

// SkipReason says why a dispatch produced no publish.
type SkipReason string

const (
	ReasonDisabled      SkipReason = "disabled"
	ReasonNoServer      SkipReason = "no_server_configured"
	ReasonNotConnected  SkipReason = "not_connected"
	ReasonPublishFailed SkipReason = "publish_failed"
)

// Outcome is the result of one dispatch call. Connectivity and configuration
// gaps are outcomes, not errors: they are steady-state conditions on an
// intermittently connected device.
type Outcome struct {
	Sent   bool
	Reason SkipReason
}

func Sent() Outcome {
	return Outcome{Sent: true}
}

func Skipped(reason SkipReason) Outcome {
	return Outcome{Reason: reason}
}

func (o Outcome) String() string {
	if o.Sent {
		return "sent"
	}
	return string(o.Reason)
}
