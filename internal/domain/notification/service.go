package notification

import (
	"context"
)

// Service defines the notification service interface
type Service interface {
	// Queue notification (async processing via background workers)
	Queue(ctx context.Context, req CreateNotificationRequest) error

	// SSE subscription
	Subscribe(ctx context.Context, topic string) (<-chan SSEEvent, func())

	// Lifecycle
	Stop()
}

// Sink delivers notifications somewhere outside the process
type Sink interface {
	Name() string
	Deliver(ctx context.Context, notifications []*Notification) error
}
