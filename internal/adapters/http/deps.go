package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mapdraw/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sketches *usecases.SketchService
	NATS     *nats.Conn

	// RequestTimeout bounds REST handlers; zero means 15s.
	RequestTimeout time.Duration
	// RateLimit is requests per minute per IP; zero means 600.
	RateLimit int
	// DocsPath is the OpenAPI document served at /docs/openapi.yaml.
	DocsPath string
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout <= 0 {
		return 15 * time.Second
	}
	return d.RequestTimeout
}

func (d *Dependencies) rateLimit() int {
	if d.RateLimit <= 0 {
		return 600
	}
	return d.RateLimit
}
