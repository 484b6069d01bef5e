package ports

import (
	"context"

	"github.com/samirrijal/mapdraw/internal/core/domain"
)

// ShapeObserver is notified synchronously when the committed collection changes.
type ShapeObserver interface {
	ShapeCreated(id int, shape domain.Shape)
	ShapeUpdated(id int, shape domain.Shape)
	ShapesDeleted(ids []int)
}

// EventPublisher publishes shape events to a message broker.
type EventPublisher interface {
	PublishShapeEvent(ctx context.Context, event *domain.ShapeEvent) error
}

// CommandSubscriber delivers externally issued commands, such as a trash action
// triggered from another UI.
type CommandSubscriber interface {
	SubscribeRemoveCommands(ctx context.Context, handler func(ctx context.Context, cmd *domain.RemoveCommand) error) error
}
