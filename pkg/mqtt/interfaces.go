package mqtt

import "context"

// Client is the broker surface the daemon needs: connect once, publish
// state, disconnect on shutdown. Kept as an interface so telemetry can be
// tested without a broker.
type Client interface {
	// Connect establishes a connection to the MQTT broker.
	Connect(ctx context.Context) error

	// Disconnect closes the connection to the MQTT broker.
	Disconnect()

	// Publish publishes a message to a topic.
	Publish(topic string, qos byte, retained bool, payload []byte) error

	// IsConnected returns whether the client is currently connected.
	IsConnected() bool
}
