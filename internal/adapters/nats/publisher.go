package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mapdraw/internal/core/domain"
)

// Publisher implements ports.EventPublisher with core NATS publishes. Shape
// events are not persisted.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher connects to NATS.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return NewPublisherFromConn(conn), nil
}

// NewPublisherFromConn publishes over an existing connection.
func NewPublisherFromConn(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) PublishShapeEvent(ctx context.Context, event *domain.ShapeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode shape event: %w", err)
	}
	return p.conn.Publish(ShapeSubject(event.Action, event.SessionID), data)
}

// Connected reports whether the connection is currently up.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

// Conn returns the underlying connection.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
