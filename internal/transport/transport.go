package transport

import "context"

// Transport is a connectionful push channel. Publish has enqueue-and-return
// semantics: it never blocks on broker acknowledgement.
type Transport interface {
	IsConnected() bool
	Publish(topic string, payload []byte, qos byte, retain bool) error
	Close()
}

// Connector is implemented by transports that dial a broker at startup.
type Connector interface {
	Connect(ctx context.Context) error
}
