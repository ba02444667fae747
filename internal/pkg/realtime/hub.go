package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campushub/registrar/internal/app/services"
)

// Envelope is the wire format for every event pushed to subscribers.
type Envelope struct {
	// Type is "seat_available" or "course_updated".
	Type      string      `json:"type"`
	CourseID  int64       `json:"courseId"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	eventSeatAvailable = "seat_available"
	eventCourseUpdated = "course_updated"
)

// Hub fans registration engine events out to websocket clients subscribed per
// course. It implements services.EventPublisher, so the engine publishes into
// it without knowing about websockets.
type Hub struct {
	// Connected clients organized by course ID
	clients map[int64]map[*Client]bool

	broadcast  chan *Envelope
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		broadcast:  make(chan *Envelope, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run starts the hub loop, handling registrations and broadcasts.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case envelope := <-h.broadcast:
			h.broadcastEnvelope(envelope)
		}
	}
}

// PublishSeatAvailable implements services.EventPublisher.
func (h *Hub) PublishSeatAvailable(event services.SeatAvailableEvent) {
	h.publish(&Envelope{
		Type:      eventSeatAvailable,
		CourseID:  event.CourseID,
		Payload:   event,
		Timestamp: time.Now(),
	})
}

// PublishCourseUpdated implements services.EventPublisher.
func (h *Hub) PublishCourseUpdated(event services.CourseUpdatedEvent) {
	h.publish(&Envelope{
		Type:      eventCourseUpdated,
		CourseID:  event.CourseID,
		Payload:   event,
		Timestamp: time.Now(),
	})
}

// publish hands the envelope to the hub loop without blocking the engine. A
// full broadcast buffer drops the event; subscribers re-read course state on
// reconnect, so a lost push is not a correctness problem.
func (h *Hub) publish(envelope *Envelope) {
	select {
	case h.broadcast <- envelope:
	default:
		h.logger.Warn().
			Int64("courseID", envelope.CourseID).
			Str("type", envelope.Type).
			Msg("Broadcast buffer full, event dropped")
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	courseID := client.courseID
	if _, ok := h.clients[courseID]; !ok {
		h.clients[courseID] = make(map[*Client]bool)
	}
	h.clients[courseID][client] = true

	h.logger.Info().
		Int64("courseID", courseID).
		Int64("userID", client.userID).
		Msg("Subscriber connected")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	courseID := client.courseID
	if clients, ok := h.clients[courseID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.clients, courseID)
			}

			h.logger.Info().
				Int64("courseID", courseID).
				Int64("userID", client.userID).
				Msg("Subscriber disconnected")
		}
	}
}

func (h *Hub) broadcastEnvelope(envelope *Envelope) {
	h.mu.RLock()
	clients, ok := h.clients[envelope.CourseID]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		h.mu.RUnlock()
		h.logger.Error().
			Err(err).
			Int64("courseID", envelope.CourseID).
			Msg("Failed to marshal event for broadcast")
		return
	}

	var stale []*Client
	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Send buffer full: the client is slow or gone.
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	// Drop stale clients directly. Sending them into h.unregister would
	// block: this method runs on the same goroutine that drains it.
	for _, client := range stale {
		h.unregisterClient(client)
	}

	h.logger.Debug().
		Int64("courseID", envelope.CourseID).
		Str("type", envelope.Type).
		Int("subscribers", len(clients)).
		Msg("Event broadcast to course subscribers")
}

// SubscriberCount returns the number of connected clients for a course.
func (h *Hub) SubscriberCount(courseID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[courseID]; ok {
		return len(clients)
	}
	return 0
}
