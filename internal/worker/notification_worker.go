package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/course-service/internal/events"
	"github.com/spec-kit/course-service/internal/service"
)

// ErrQueueFull is returned by Enqueue when the forwarder cannot keep up.
var ErrQueueFull = errors.New("event queue full")

// Publisher delivers an event to an external system.
type Publisher interface {
	PublishEvent(ctx context.Context, event events.Event) error
}

// EventForwarder buffers events and delivers them off the request path.
type EventForwarder struct {
	publisher Publisher
	logger    *zap.Logger
	queue     chan events.Event
	done      chan struct{}
}

// NewEventForwarder creates a forwarder with the given queue capacity.
func NewEventForwarder(publisher Publisher, logger *zap.Logger, capacity int) *EventForwarder {
	if capacity <= 0 {
		capacity = 256
	}
	return &EventForwarder{
		publisher: publisher,
		logger:    logger,
		queue:     make(chan events.Event, capacity),
		done:      make(chan struct{}),
	}
}

// Enqueue hands the event to the forwarder without blocking.
func (f *EventForwarder) Enqueue(_ context.Context, event events.Event) error {
	select {
	case f.queue <- event:
		return nil
	default:
		f.logger.Warn("dropping event", zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))
		return ErrQueueFull
	}
}

// Run delivers queued events until ctx is cancelled, then drains what is left.
func (f *EventForwarder) Run(ctx context.Context) {
	defer close(f.done)
	for {
		select {
		case event := <-f.queue:
			f.deliver(ctx, event)
		case <-ctx.Done():
			f.drain()
			return
		}
	}
}

// Done is closed once Run has returned.
func (f *EventForwarder) Done() <-chan struct{} {
	return f.done
}

func (f *EventForwarder) drain() {
	for {
		select {
		case event := <-f.queue:
			f.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (f *EventForwarder) deliver(ctx context.Context, event events.Event) {
	if err := f.publisher.PublishEvent(ctx, event); err != nil {
		f.logger.Error("event delivery failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
