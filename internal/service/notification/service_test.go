package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu   sync.Mutex
	sent []*notification.Notification
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(ctx context.Context, notifications []*notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, notifications...)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func newTestService(t *testing.T, sinks ...notification.Sink) notification.Service {
	t.Helper()
	svc := NewNotificationService(sse.NewHub(notification.TopicAll), NewDeduplicator(16, time.Minute), sinks, Config{
		FlushInterval: 10 * time.Millisecond,
		WorkerCount:   1,
	})
	t.Cleanup(svc.Stop)
	return svc
}

func TestQueue_DeliversToSinks(t *testing.T) {
	sink := &recordingSink{}
	svc := newTestService(t, sink)

	err := svc.Queue(context.Background(), notification.CreateNotificationRequest{
		Type:    notification.TypeClockIn,
		Title:   "Clock in",
		Message: "Somchai clocked in at 08:15",
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.NotEmpty(t, sink.sent[0].ID)
	assert.Equal(t, notification.TopicAll, sink.sent[0].Topic)
}

func TestQueue_SuppressesDuplicatesInsideWindow(t *testing.T) {
	sink := &recordingSink{}
	svc := newTestService(t, sink)

	req := notification.CreateNotificationRequest{
		Type:     notification.TypeClockOut,
		Message:  "Somchai clocked out at 17:40",
		DedupKey: "clock_out|Somchai|05/03/2568|17:40",
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Queue(context.Background(), req))
	}

	other := req
	other.DedupKey = "clock_out|Somchai|06/03/2568|17:40"
	require.NoError(t, svc.Queue(context.Background(), other))

	assert.Eventually(t, func() bool { return sink.count() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 2, sink.count())
}

func TestStop_FlushesQueuedNotifications(t *testing.T) {
	sink := &recordingSink{}
	svc := NewNotificationService(sse.NewHub(notification.TopicAll), nil, []notification.Sink{sink}, Config{
		FlushInterval: time.Hour,
		WorkerCount:   1,
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Queue(context.Background(), notification.CreateNotificationRequest{Message: "m"}))
	}
	svc.Stop()

	assert.Equal(t, 5, sink.count())
	assert.ErrorIs(t, svc.Queue(context.Background(), notification.CreateNotificationRequest{}), notification.ErrServiceStopped)
}

func TestSubscribe_ReceivesHubSinkEvents(t *testing.T) {
	hub := sse.NewHub(notification.TopicAll)
	svc := NewNotificationService(hub, nil, []notification.Sink{NewHubSink(hub)}, Config{
		FlushInterval: 10 * time.Millisecond,
		WorkerCount:   1,
	})
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	all, cleanupAll := svc.Subscribe(ctx, "")
	defer cleanupAll()
	driver, cleanupDriver := svc.Subscribe(ctx, notification.DriverTopic("Somchai"))
	defer cleanupDriver()

	require.NoError(t, svc.Queue(ctx, notification.CreateNotificationRequest{
		Topic:   notification.DriverTopic("Somchai"),
		Type:    notification.TypeRecordApproved,
		Message: "approved",
	}))

	for _, ch := range []<-chan notification.SSEEvent{all, driver} {
		select {
		case ev := <-ch:
			assert.Equal(t, "notification", ev.Event)
			assert.Equal(t, notification.TypeRecordApproved, ev.Data.Type)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestDeduplicator_ExpiresAfterWindow(t *testing.T) {
	d := NewDeduplicator(8, 20*time.Millisecond)

	assert.False(t, d.Seen("k"))
	assert.True(t, d.Seen("k"))

	assert.Eventually(t, func() bool { return !d.Seen("k") }, time.Second, 10*time.Millisecond)

	d.Forget("k")
	assert.False(t, d.Seen("k"))
	assert.Equal(t, 1, d.Len())
}

func TestDeduplicator_BoundedBySize(t *testing.T) {
	d := NewDeduplicator(2, time.Minute)

	assert.False(t, d.Seen("a"))
	assert.False(t, d.Seen("b"))
	assert.False(t, d.Seen("c"))
	assert.Equal(t, 2, d.Len())

	// the oldest key was evicted
	assert.False(t, d.Seen("a"))
	assert.True(t, d.Seen("c"))
}
