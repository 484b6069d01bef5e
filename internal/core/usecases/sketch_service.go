package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/core/draw"
	"github.com/samirrijal/mapdraw/internal/core/ports"
)

// HostFactory creates the host a new workspace listens on.
type HostFactory func() ports.DispatchingHost

// EventHook observes every event delivered to any workspace.
type EventHook func(sessionID string, kind domain.EventKind, r Report, err error)

// SketchConfig configures a SketchService.
type SketchConfig struct {
	Draw        draw.Options
	MaxSessions int
	NewHost     HostFactory
	// Publisher is optional; when set every collection change is published.
	Publisher ports.EventPublisher
	// Observers are attached to every new workspace.
	Observers []ports.ShapeObserver
	// OnEvent, OnPublishError and OnSessionsChanged are optional hooks.
	OnEvent           EventHook
	OnPublishError    func(action string, err error)
	OnSessionsChanged func(open int)
	Logger            *slog.Logger
}

// SketchService is the registry of drawing workspaces.
type SketchService struct {
	cfg    SketchConfig
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Workspace
}

// NewSketchService creates a new SketchService.
func NewSketchService(cfg SketchConfig) *SketchService {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.NewHost == nil {
		panic("usecases: SketchConfig.NewHost is required")
	}
	return &SketchService{
		cfg:      cfg,
		logger:   cfg.Logger,
		sessions: make(map[string]*Workspace),
	}
}

// Create opens a new workspace in Idle mode.
func (s *SketchService) Create(ctx context.Context) (*Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		return nil, fmt.Errorf("%w: limit is %d", domain.ErrTooManySessions, s.cfg.MaxSessions)
	}

	id := uuid.NewString()
	logger := s.logger.With("session", id)
	w := newWorkspace(id, s.cfg.NewHost(), s.cfg.Draw, logger)

	for _, o := range s.cfg.Observers {
		w.shapes.Observe(o)
	}
	if s.cfg.Publisher != nil {
		w.shapes.Observe(&publishBridge{
			session:   id,
			publisher: s.cfg.Publisher,
			logger:    logger,
			onError:   s.cfg.OnPublishError,
		})
	}
	if s.cfg.OnEvent != nil {
		hook := s.cfg.OnEvent
		w.onEvent = func(kind domain.EventKind, r Report, err error) { hook(id, kind, r, err) }
	}

	s.sessions[id] = w
	s.sessionsChanged()
	logger.InfoContext(ctx, "drawing session opened")
	return w, nil
}

// Get returns the workspace with the given id.
func (s *SketchService) Get(id string) (*Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return w, nil
}

// List returns a page of open workspaces ordered by creation time, and the
// total number open.
func (s *SketchService) List(offset, limit int) ([]SessionInfo, int) {
	s.mu.RLock()
	all := make([]*Workspace, 0, len(s.sessions))
	for _, w := range s.sessions {
		all = append(all, w)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	out := make([]SessionInfo, 0, end-offset)
	for _, w := range all[offset:end] {
		out = append(out, w.Info())
	}
	return out, total
}

// Count returns the number of open workspaces.
func (s *SketchService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close tears down and forgets the workspace with the given id.
func (s *SketchService) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	w, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
		s.sessionsChanged()
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	w.Close()
	s.logger.InfoContext(ctx, "drawing session closed", "session", id)
	return nil
}

// HandleRemoveCommand applies an externally issued trash action.
func (s *SketchService) HandleRemoveCommand(ctx context.Context, cmd *domain.RemoveCommand) error {
	w, err := s.Get(cmd.SessionID)
	if err != nil {
		return err
	}
	removed, err := w.RemoveShapes(cmd.IDs...)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "remote remove applied", "session", cmd.SessionID, "requested", len(cmd.IDs), "removed", len(removed))
	return nil
}

// Shutdown closes every workspace.
func (s *SketchService) Shutdown() {
	s.mu.Lock()
	open := s.sessions
	s.sessions = make(map[string]*Workspace)
	s.sessionsChanged()
	s.mu.Unlock()

	for _, w := range open {
		w.Close()
	}
}

// sessionsChanged must be called with mu held.
func (s *SketchService) sessionsChanged() {
	if s.cfg.OnSessionsChanged != nil {
		s.cfg.OnSessionsChanged(len(s.sessions))
	}
}

// publishBridge forwards collection changes of one workspace to the broker.
type publishBridge struct {
	session   string
	publisher ports.EventPublisher
	logger    *slog.Logger
	onError   func(action string, err error)
}

func (b *publishBridge) ShapeCreated(id int, shape domain.Shape) {
	b.publish(&domain.ShapeEvent{SessionID: b.session, Action: domain.ActionCreated, IDs: []int{id}, Kind: shape.Kind(), Shape: shape})
}

func (b *publishBridge) ShapeUpdated(id int, shape domain.Shape) {
	b.publish(&domain.ShapeEvent{SessionID: b.session, Action: domain.ActionUpdated, IDs: []int{id}, Kind: shape.Kind(), Shape: shape})
}

func (b *publishBridge) ShapesDeleted(ids []int) {
	b.publish(&domain.ShapeEvent{SessionID: b.session, Action: domain.ActionDeleted, IDs: ids})
}

func (b *publishBridge) publish(ev *domain.ShapeEvent) {
	if err := b.publisher.PublishShapeEvent(context.Background(), ev); err != nil {
		b.logger.Warn("publish shape event", "action", ev.Action, "error", err)
		if b.onError != nil {
			b.onError(ev.Action, err)
		}
	}
}
