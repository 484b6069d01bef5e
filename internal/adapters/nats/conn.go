package natsadapter

import (
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects used by the service.
const (
	ShapeSubjectPrefix   = "mapdraw.shapes"
	RemoveCommandSubject = "mapdraw.commands.remove"
)

// ShapeSubject returns the subject a shape event is published on.
func ShapeSubject(action, sessionID string) string {
	return ShapeSubjectPrefix + "." + action + "." + sessionID
}

// RawConn creates a plain NATS connection that keeps retrying in the background.
func RawConn(url string, opts ...nats.Option) (*nats.Conn, error) {
	base := []nats.Option{
		nats.Name("mapdraw"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
	}
	return nats.Connect(url, append(base, opts...)...)
}
