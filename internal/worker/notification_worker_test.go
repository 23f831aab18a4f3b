package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/course-service/internal/events"
	"github.com/spec-kit/course-service/internal/service"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) PublishEvent(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestEventForwarder_DeliversAndDrains(t *testing.T) {
	pub := &recordingPublisher{}
	fwd := NewEventForwarder(pub, zap.NewNop(), 8)

	ctx, cancel := context.WithCancel(context.Background())
	go fwd.Run(ctx)

	require.NoError(t, fwd.Enqueue(ctx, events.Event{ID: "1", Type: events.EventEnrollmentCreated}))
	require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, fwd.Enqueue(ctx, events.Event{ID: "2", Type: events.EventCoursePublished}))
	cancel()
	<-fwd.Done()

	assert.Equal(t, 2, pub.count())
}

func TestEventForwarder_QueueFull(t *testing.T) {
	fwd := NewEventForwarder(&recordingPublisher{}, zap.NewNop(), 1)

	require.NoError(t, fwd.Enqueue(context.Background(), events.Event{ID: "1"}))
	assert.ErrorIs(t, fwd.Enqueue(context.Background(), events.Event{ID: "2"}), ErrQueueFull)
}

func TestStartNotificationWorker_ForwardsDomainEvents(t *testing.T) {
	pub := &recordingPublisher{}
	fwd := NewEventForwarder(pub, zap.NewNop(), 8)
	dispatcher := events.NewInMemoryDispatcher()

	StartNotificationWorker(service.NewNotificationService(dispatcher, zap.NewNop(), fwd))
	StartNotificationWorker(nil)

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{ID: "e1", Type: events.EventEnrollmentCreated}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fwd.Run(ctx)

	require.Equal(t, 1, pub.count())
	assert.Equal(t, "e1", pub.events[0].ID)
}
