package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mapdraw/internal/adapters/hostmap"
	"github.com/samirrijal/mapdraw/internal/adapters/http"
	natsadapter "github.com/samirrijal/mapdraw/internal/adapters/nats"
	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/core/draw"
	"github.com/samirrijal/mapdraw/internal/core/ports"
	"github.com/samirrijal/mapdraw/internal/core/usecases"
	"github.com/samirrijal/mapdraw/internal/pkg/config"
	"github.com/samirrijal/mapdraw/internal/pkg/logging"
	"github.com/samirrijal/mapdraw/internal/pkg/metrics"
	"github.com/samirrijal/mapdraw/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("mapdraw-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	appLogger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// NATS: shape events out, remove commands in. Drawing works without it.
	var (
		publisher ports.EventPublisher
		natsConn  *nats.Conn
		sub       *natsadapter.Subscriber
	)
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
			natsConn = pub.Conn()
			sub = natsadapter.NewSubscriberFromConn(natsConn)
		}
	}

	sketches := usecases.NewSketchService(usecases.SketchConfig{
		Draw: draw.Options{
			CircleSteps:         cfg.Draw.CircleSteps,
			DefaultRadiusMeters: cfg.Draw.DefaultRadiusM,
			RadiusStepMeters:    cfg.Draw.RadiusStepM,
			Logger:              appLogger,
		},
		MaxSessions: cfg.Sessions.Max,
		NewHost:     func() ports.DispatchingHost { return hostmap.NewBus() },
		Publisher:   publisher,
		Observers:   []ports.ShapeObserver{metrics.ShapeObserver{}},
		OnEvent:     recordEvent,
		OnPublishError: func(action string, _ error) {
			metrics.PublishErrors.WithLabelValues(action).Inc()
		},
		OnSessionsChanged: func(open int) {
			metrics.ActiveSessions.Set(float64(open))
		},
		Logger: appLogger,
	})
	defer sketches.Shutdown()

	if sub != nil {
		if err := sub.SubscribeRemoveCommands(ctx, sketches.HandleRemoveCommand); err != nil {
			slog.Warn("remove command subscription failed", "error", err)
		}
	}

	deps := &http.Dependencies{
		Sketches:       sketches,
		NATS:           natsConn,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		RateLimit:      cfg.Server.RateLimit,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "mapdraw API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, If-None-Match",
		ExposeHeaders:    "ETag, Link, Location",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	if sub != nil {
		sub.Close()
	}

	slog.Info("server stopped")
}

// recordEvent counts every delivered pointer event by outcome.
func recordEvent(_ string, kind domain.EventKind, r usecases.Report, err error) {
	result := metrics.ResultIgnored
	switch {
	case r.Warning != "":
		result = metrics.ResultRejected
		metrics.ValidationWarnings.WithLabelValues(r.Mode.String()).Inc()
	case err != nil:
		result = metrics.ResultRefused
	case r.Consumed:
		result = metrics.ResultConsumed
	}
	metrics.InputEvents.WithLabelValues(string(kind), result).Inc()
}
