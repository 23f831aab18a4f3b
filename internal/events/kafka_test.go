package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_PublishEvent(t *testing.T) {
	t.Parallel()

	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w}
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := p.PublishEvent(context.Background(), Event{
		ID:        "evt-1",
		Type:      EventEnrollmentCreated,
		ActorID:   "u1",
		Timestamp: ts,
		Payload:   EnrollmentCreatedPayload{UserID: "u1", CourseID: "c1"},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "enrollment_created", string(msg.Key))
	assert.Equal(t, ts, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "evt-1", string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "u1", decoded["actor_id"])
	assert.Equal(t, "c1", decoded["payload"].(map[string]any)["course_id"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
