package telemetry

import (
	"context"
	"testing"
)

func TestInitTracer(t *testing.T) {
	// The gRPC exporter connects lazily, so an unreachable endpoint is fine.
	shutdown, err := InitTracer(context.Background(), "mapdraw-test", "127.0.0.1:4317")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, span := Tracer("test").Start(context.Background(), SpanEventPost)
	span.End()
	shutdown()
}
