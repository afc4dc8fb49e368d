package notification

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/sse"
)

type hubSink struct {
	hub *sse.Hub
}

// NewHubSink pushes notifications to SSE subscribers of their topic. The hub also
// hands them to the catch-all topic.
func NewHubSink(hub *sse.Hub) notification.Sink {
	return &hubSink{hub: hub}
}

func (s *hubSink) Name() string { return "sse" }

func (s *hubSink) Deliver(ctx context.Context, notifications []*notification.Notification) error {
	for _, n := range notifications {
		resp := notification.NewNotificationResponse(n)
		s.hub.Publish(n.Topic, sse.Event{Event: "notification", Data: resp})
	}
	return nil
}

type logSink struct {
	logger *slog.Logger
}

// NewLogSink writes every notification to the structured log.
func NewLogSink(logger *slog.Logger) notification.Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &logSink{logger: logger}
}

func (s *logSink) Name() string { return "log" }

func (s *logSink) Deliver(ctx context.Context, notifications []*notification.Notification) error {
	for _, n := range notifications {
		s.logger.InfoContext(ctx, n.Message,
			"notification_id", n.ID,
			"topic", n.Topic,
			"type", n.Type,
			"title", n.Title,
		)
	}
	return nil
}
