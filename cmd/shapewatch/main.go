// Command shapewatch tails the shape events published by mapdraw-api.
//
//	shapewatch            # every action
//	shapewatch deleted    # only deletions
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/mapdraw/internal/adapters/nats"
	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/pkg/config"
	"github.com/samirrijal/mapdraw/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("mapdraw-shapewatch")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	action := ""
	if len(os.Args) > 1 {
		action = os.Args[1]
	}
	switch action {
	case "", domain.ActionCreated, domain.ActionUpdated, domain.ActionDeleted:
	default:
		log.Fatalf("unknown action %q (want created, updated or deleted)", action)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeShapeEvents(ctx, action, func(_ context.Context, m *natsadapter.ShapeMessage) error {
		attrs := []any{"session", m.SessionID, "action", m.Action, "ids", m.IDs}
		if m.Kind != "" {
			attrs = append(attrs, "kind", m.Kind)
		}
		if len(m.Shape) > 0 {
			attrs = append(attrs, "shape", string(m.Shape))
		}
		logger.Info("shape event", attrs...)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("watching shape events", "url", cfg.NATS.URL, "action", action)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shapewatch stopped")
}
