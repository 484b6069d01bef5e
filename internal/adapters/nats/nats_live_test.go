package natsadapter

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/samirrijal/mapdraw/internal/core/domain"
)

// liveURL returns the broker used by the round-trip tests, skipping when none
// is configured.
func liveURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("MAPDRAW_TEST_NATS_URL")
	if url == "" {
		t.Skip("MAPDRAW_TEST_NATS_URL not set")
	}
	return url
}

func TestShapeEventRoundTrip(t *testing.T) {
	url := liveURL(t)

	pub, err := NewPublisher(url)
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	defer pub.Close()
	sub := NewSubscriberFromConn(pub.Conn())
	defer sub.Close()

	got := make(chan *ShapeMessage, 1)
	ctx := context.Background()
	err = sub.SubscribeShapeEvents(ctx, domain.ActionCreated, func(_ context.Context, m *ShapeMessage) error {
		got <- m
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := pub.Conn().Flush(); err != nil {
		t.Fatal(err)
	}

	ev := &domain.ShapeEvent{
		SessionID: "s1",
		Action:    domain.ActionCreated,
		IDs:       []int{1},
		Kind:      domain.ShapeCircle,
		Shape:     domain.Circle{Center: domain.Coordinate{Longitude: 127, Latitude: 37.5}, RadiusMeters: 120},
	}
	if err := pub.PublishShapeEvent(ctx, ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case m := <-got:
		if m.Subject != "mapdraw.shapes.created.s1" || m.SessionID != "s1" || m.Kind != "circle" {
			t.Errorf("unexpected message %+v", m)
		}
		var c domain.Circle
		if err := json.Unmarshal(m.Shape, &c); err != nil || c.RadiusMeters != 120 {
			t.Errorf("unexpected shape %s (%v)", m.Shape, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("shape event not received")
	}
}

func TestRemoveCommandRoundTrip(t *testing.T) {
	url := liveURL(t)

	sub, err := NewSubscriber(url)
	if err != nil {
		t.Fatalf("subscriber: %v", err)
	}
	defer sub.Close()

	got := make(chan *domain.RemoveCommand, 1)
	err = sub.SubscribeRemoveCommands(context.Background(), func(_ context.Context, cmd *domain.RemoveCommand) error {
		got <- cmd
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	conn, err := RawConn(url)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if err := sub.conn.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := conn.Publish(RemoveCommandSubject, []byte(`{"session":"s2","ids":[3,4]}`)); err != nil {
		t.Fatal(err)
	}

	select {
	case cmd := <-got:
		if cmd.SessionID != "s2" || len(cmd.IDs) != 2 || cmd.IDs[1] != 4 {
			t.Errorf("unexpected command %+v", cmd)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("remove command not received")
	}
}
