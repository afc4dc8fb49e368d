package notification

import (
	"time"
)

// ============= Request DTOs =============

// CreateNotificationRequest represents a request to send a notification. Requests
// with the same non-empty DedupKey inside the dedup window are sent once.
type CreateNotificationRequest struct {
	Topic    string
	Type     NotificationType
	Title    string
	Message  string
	Data     map[string]interface{}
	DedupKey string
}

// ============= Response DTOs =============

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        string                 `json:"id"`
	Topic     string                 `json:"topic"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewNotificationResponse maps a Notification onto its response shape
func NewNotificationResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Topic:     n.Topic,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		CreatedAt: n.CreatedAt,
	}
}

// ============= SSE Event =============

// SSEEvent represents a Server-Sent Event
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}
