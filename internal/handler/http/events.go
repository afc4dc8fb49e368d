package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-ledger/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-ledger/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// EventHandler streams ledger notifications over SSE
type EventHandler interface {
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventHandlerImpl struct {
	notifService notification.Service
	jwtService   jwt.Service
}

// SSETokenResponse represents the SSE token response
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// NewEventHandler creates a new event handler
func NewEventHandler(notifService notification.Service, jwtService jwt.Service) EventHandler {
	return &eventHandlerImpl{
		notifService: notifService,
		jwtService:   jwtService,
	}
}

// GetSSEToken generates a short-lived token for SSE connections
func (h *eventHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	token, _, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil || token.Subject() == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	sseToken, expiresIn, err := h.jwtService.GenerateSSEToken(token.Subject())
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, SSETokenResponse{
		Token:     sseToken,
		ExpiresIn: expiresIn,
	})
}

// Stream handles SSE connection for real-time ledger events. The topic query
// parameter selects a driver ("driver:<name>"); without it every event is streamed.
func (h *eventHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter (SSE doesn't support custom headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	subject, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = notification.TopicAll
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.notifService.Subscribe(r.Context(), topic)
	defer cleanup()

	connected, _ := json.Marshal(map[string]string{"status": "connected", "subscriber": subject, "topic": topic})
	fmt.Fprintf(w, "event: connected\ndata: %s\n\n", connected)
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
