package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/registrar/internal/app/services"
)

func newTestClient(hub *Hub, userID, courseID int64, sendBuffer int) *Client {
	return &Client{
		hub:      hub,
		send:     make(chan []byte, sendBuffer),
		userID:   userID,
		courseID: courseID,
		logger:   zerolog.Nop(),
	}
}

func TestHubDeliversEventsToCourseSubscribers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	subscriber := newTestClient(hub, 1, 42, 8)
	hub.register <- subscriber
	require.Eventually(t, func() bool {
		return hub.SubscriberCount(42) == 1
	}, time.Second, 5*time.Millisecond)

	hub.PublishSeatAvailable(services.SeatAvailableEvent{
		CourseID:       42,
		CourseCode:     "CS101",
		CourseName:     "Introduction to Computing",
		AvailableSeats: 1,
	})

	select {
	case data := <-subscriber.send:
		var envelope Envelope
		require.NoError(t, json.Unmarshal(data, &envelope))
		assert.Equal(t, "seat_available", envelope.Type)
		assert.Equal(t, int64(42), envelope.CourseID)
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the published event")
	}
}

func TestHubSkipsOtherCourses(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	subscriber := newTestClient(hub, 1, 7, 8)
	hub.register <- subscriber
	require.Eventually(t, func() bool {
		return hub.SubscriberCount(7) == 1
	}, time.Second, 5*time.Millisecond)

	hub.PublishCourseUpdated(services.CourseUpdatedEvent{CourseID: 8})

	select {
	case <-subscriber.send:
		t.Fatal("received an event for a course the client never subscribed to")
	case <-time.After(50 * time.Millisecond):
	}
}

// A subscriber whose send buffer is full must not stall the hub loop. The
// hub drops it and keeps serving registrations and broadcasts.
func TestHubDropsStalledSubscriberWithoutBlocking(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	stalled := newTestClient(hub, 1, 42, 0)
	hub.register <- stalled
	require.Eventually(t, func() bool {
		return hub.SubscriberCount(42) == 1
	}, time.Second, 5*time.Millisecond)

	hub.PublishSeatAvailable(services.SeatAvailableEvent{CourseID: 42, AvailableSeats: 1})

	// The stalled client is evicted by the broadcast itself.
	require.Eventually(t, func() bool {
		return hub.SubscriberCount(42) == 0
	}, time.Second, 5*time.Millisecond)

	// The loop must still accept new subscribers and deliver to them.
	healthy := newTestClient(hub, 2, 42, 8)
	registered := make(chan struct{})
	go func() {
		hub.register <- healthy
		close(registered)
	}()
	select {
	case <-registered:
	case <-time.After(time.Second):
		t.Fatal("hub loop stopped accepting registrations after evicting a stalled client")
	}

	hub.PublishSeatAvailable(services.SeatAvailableEvent{CourseID: 42, AvailableSeats: 1})

	select {
	case <-healthy.send:
	case <-time.After(time.Second):
		t.Fatal("healthy subscriber never received an event after the eviction")
	}
}
