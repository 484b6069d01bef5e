package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/core/ports"
	"github.com/samirrijal/mapdraw/internal/core/usecases"
	"github.com/samirrijal/mapdraw/internal/pkg/metrics"
	"github.com/samirrijal/mapdraw/internal/pkg/telemetry"
)

// Control frame types; any other type must name a pointer event.
const (
	frameSelectMode = "selectMode"
	frameCancel     = "cancel"
	frameFinish     = "finish"
)

// wsFrame is sent by the browser map. Pointer events look like
// {"type":"primaryClick","coordinate":{"longitude":127,"latitude":37.5}},
// wheel events carry "delta", and {"type":"selectMode","kind":"circle"}
// switches shapes.
type wsFrame struct {
	Type       string             `json:"type"`
	Coordinate *domain.Coordinate `json:"coordinate,omitempty"`
	Delta      float64            `json:"delta,omitempty"`
	Kind       string             `json:"kind,omitempty"`
}

type wsState struct {
	Type string `json:"type"`
	SessionState
	Report *usecases.Report `json:"report,omitempty"`
}

type wsNotice struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// changeSignal turns collection changes into a wake-up for the push loop.
type changeSignal chan struct{}

func (s changeSignal) notify() {
	select {
	case s <- struct{}{}:
	default:
	}
}

func (s changeSignal) ShapeCreated(int, domain.Shape) { s.notify() }
func (s changeSignal) ShapeUpdated(int, domain.Shape) { s.notify() }
func (s changeSignal) ShapesDeleted([]int)            { s.notify() }

// WebSocketUpgrade rejects non-upgrade requests and unknown sessions before
// the connection is upgraded.
func WebSocketUpgrade(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if id := c.Query("session"); id != "" {
			if _, err := deps.Sketches.Get(id); err != nil {
				return writeError(c, err)
			}
		}
		return c.Next()
	}
}

// WebSocketHandler bridges a browser map to a drawing session. The client is
// the host map: its pointer events are emitted on the session's host and every
// frame is answered with the new session state. Without ?session= a session is
// created for the lifetime of the connection.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		ctx := context.Background()
		logger := slog.Default().With("remote", c.RemoteAddr().String())

		w, owned, err := attachSession(ctx, deps, c.Query("session"))
		if err != nil {
			_ = c.WriteJSON(wsNotice{Type: "error", Message: err.Error()})
			return
		}
		logger = logger.With("session", w.ID)
		logger.Info("ws client connected", "owned", owned)

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		pushState := func(r *usecases.Report) error {
			return writeJSON(wsState{Type: "state", SessionState: stateOf(w), Report: r})
		}

		changed := make(changeSignal, 1)
		stopWatch := w.Watch(changed)
		defer stopWatch()

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-changed:
					// Shapes removed or replaced from outside this connection.
					if err := pushState(nil); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		_ = pushState(nil)

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			var f wsFrame
			if err := json.Unmarshal(msg, &f); err != nil {
				_ = writeJSON(wsNotice{Type: "error", Message: "invalid JSON"})
				continue
			}

			report, err := handleFrame(ctx, w, f)
			switch {
			case err != nil:
				_ = writeJSON(wsNotice{Type: "error", Message: err.Error()})
				continue
			case report != nil && report.Warning != "":
				_ = writeJSON(wsNotice{Type: "warning", Message: report.Warning})
			}
			if err := pushState(report); err != nil {
				break
			}
		}

		close(done)
		if owned {
			_ = deps.Sketches.Close(ctx, w.ID)
		}
		logger.Info("ws client disconnected")
	}
}

func attachSession(ctx context.Context, deps *Dependencies, id string) (*usecases.Workspace, bool, error) {
	if id != "" {
		w, err := deps.Sketches.Get(id)
		return w, false, err
	}
	w, err := deps.Sketches.Create(ctx)
	return w, true, err
}

// handleFrame applies one client frame to the session.
func handleFrame(ctx context.Context, w *usecases.Workspace, f wsFrame) (*usecases.Report, error) {
	ctx, span := tracer.Start(ctx, telemetry.SpanWebSocketFrame)
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrSessionID, w.ID),
		attribute.String(telemetry.AttrFrameType, f.Type),
	)

	switch f.Type {
	case frameSelectMode:
		kind, err := domain.ParseShapeKind(f.Kind)
		if err != nil {
			return nil, err
		}
		_, err = w.SelectMode(kind)
		return nil, err
	case frameCancel:
		_, err := w.Cancel()
		return nil, err
	case frameFinish:
		r, err := w.Finish()
		if err != nil {
			return nil, err
		}
		return &r, nil
	}

	kind, err := domain.ParseEventKind(f.Type)
	if err != nil {
		return nil, err
	}
	r, err := w.Deliver(ctx, kind, ports.HostEvent{Coordinate: f.Coordinate, WheelDelta: f.Delta, Raw: f})
	if err != nil {
		return nil, err
	}
	return &r, nil
}
