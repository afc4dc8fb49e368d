package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/sse"
	"github.com/google/uuid"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 1 second
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	hub    *sse.Hub
	dedup  *Deduplicator
	sinks  []notification.Sink
	config Config

	queue    chan notification.CreateNotificationRequest
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewNotificationService creates a new notification service with background workers.
// dedup may be nil to disable deduplication.
func NewNotificationService(hub *sse.Hub, dedup *Deduplicator, sinks []notification.Sink, cfg Config) notification.Service {
	// Set defaults
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		hub:    hub,
		dedup:  dedup,
		sinks:  sinks,
		config: cfg,
		queue:  make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh: make(chan struct{}),
		now:    time.Now,
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification service started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval, "sinks", len(sinks))

	return s
}

// worker is the background worker that processes notification queue
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]*notification.Notification, len(batch))
		for i, req := range batch {
			notifications[i] = s.build(req)
		}

		s.deliver(ctx, id, notifications)
		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// drain what is already queued
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Queue queues a notification for async processing. Duplicates inside the dedup window
// are dropped silently.
func (s *service) Queue(ctx context.Context, req notification.CreateNotificationRequest) error {
	select {
	case <-s.stopCh:
		return notification.ErrServiceStopped
	default:
	}

	if req.DedupKey != "" && s.dedup != nil && s.dedup.Seen(req.DedupKey) {
		slog.Debug("duplicate notification suppressed", "dedup_key", req.DedupKey, "type", req.Type)
		return nil
	}

	select {
	case s.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Queue full, deliver directly
		slog.Warn("notification queue full, delivering directly", "type", req.Type)
		s.deliver(ctx, -1, []*notification.Notification{s.build(req)})
		return nil
	}
}

func (s *service) build(req notification.CreateNotificationRequest) *notification.Notification {
	topic := req.Topic
	if topic == "" {
		topic = notification.TopicAll
	}
	return &notification.Notification{
		ID:        uuid.New().String(),
		Topic:     topic,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		Data:      req.Data,
		CreatedAt: s.now(),
	}
}

func (s *service) deliver(ctx context.Context, worker int, notifications []*notification.Notification) {
	for _, sink := range s.sinks {
		if err := sink.Deliver(ctx, notifications); err != nil {
			slog.Error("failed to deliver notifications", "worker", worker, "sink", sink.Name(), "count", len(notifications), "error", err)
		}
	}
}

// Subscribe creates an SSE subscription for a topic
func (s *service) Subscribe(ctx context.Context, topic string) (<-chan notification.SSEEvent, func()) {
	if topic == "" {
		topic = notification.TopicAll
	}
	ch, cleanup := s.hub.Subscribe(topic)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				if resp, ok := event.Data.(notification.NotificationResponse); ok {
					select {
					case out <- notification.SSEEvent{Event: event.Event, Data: resp}:
					case <-ctx.Done():
						return
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop gracefully stops the notification service
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("notification service stopped")
	})
}
