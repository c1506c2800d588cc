package events

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSTransport implements Transport over a NATS connection. The client's own
// reconnect handling covers backoff; at-least-once delivery means consumers
// must tolerate duplicates.
type NATSTransport struct {
	conn *nats.Conn
}

func NewNATSTransport(url string) (*NATSTransport, error) {
	conn, err := nats.Connect(url, nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSTransport{conn: conn}, nil
}

func (t *NATSTransport) Subscribe(topic string, handler func(data []byte)) (Subscription, error) {
	sub, err := t.conn.Subscribe(topic, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (t *NATSTransport) IsConnected() bool {
	return t.conn.IsConnected()
}

func (t *NATSTransport) Close() error {
	t.conn.Close()
	return nil
}
