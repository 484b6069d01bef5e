package natsadapter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mapdraw/internal/core/domain"
)

// Subscriber implements ports.CommandSubscriber over a NATS connection.
type Subscriber struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
	owned  bool
}

// NewSubscriber connects to NATS.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, err
	}
	s := NewSubscriberFromConn(conn)
	s.owned = true
	return s, nil
}

// NewSubscriberFromConn subscribes over an existing connection. Close leaves
// the connection open.
func NewSubscriberFromConn(conn *nats.Conn) *Subscriber {
	return &Subscriber{conn: conn, logger: slog.Default()}
}

// SubscribeRemoveCommands delivers trash actions published by other UIs.
// Undecodable messages are dropped.
func (s *Subscriber) SubscribeRemoveCommands(ctx context.Context, handler func(ctx context.Context, cmd *domain.RemoveCommand) error) error {
	sub, err := s.conn.Subscribe(RemoveCommandSubject, func(msg *nats.Msg) {
		var cmd domain.RemoveCommand
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			s.logger.Warn("malformed remove command", "subject", msg.Subject, "error", err)
			return
		}
		if err := handler(ctx, &cmd); err != nil {
			s.logger.Warn("remove command failed", "session", cmd.SessionID, "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// ShapeMessage is a shape event as seen by a consumer. The shape is kept
// undecoded since its concrete type depends on Kind.
type ShapeMessage struct {
	Subject   string          `json:"-"`
	SessionID string          `json:"session_id"`
	Action    string          `json:"action"`
	IDs       []int           `json:"ids"`
	Kind      string          `json:"kind,omitempty"`
	Shape     json.RawMessage `json:"shape,omitempty"`
}

// SubscribeShapeEvents delivers shape events of every session. An empty
// action subscribes to all actions.
func (s *Subscriber) SubscribeShapeEvents(ctx context.Context, action string, handler func(ctx context.Context, msg *ShapeMessage) error) error {
	subject := ShapeSubjectPrefix + ".>"
	if action != "" {
		subject = ShapeSubjectPrefix + "." + action + ".*"
	}
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		var m ShapeMessage
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			s.logger.Warn("malformed shape event", "subject", msg.Subject, "error", err)
			return
		}
		m.Subject = msg.Subject
		if err := handler(ctx, &m); err != nil {
			s.logger.Warn("shape event handler failed", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	if s.owned {
		_ = s.conn.Drain()
	}
}
