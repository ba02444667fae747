package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/campushub/registrar/internal/app/repositories"
)

// SeatAvailableEvent is published when a seat frees up on a course whose
// waitlist is non-empty. It only notifies: waitlisted students still have to
// register themselves to claim the seat.
type SeatAvailableEvent struct {
	CourseID       int64  `json:"courseId"`
	CourseCode     string `json:"courseCode"`
	CourseName     string `json:"courseName"`
	AvailableSeats int    `json:"availableSeats"`
}

// CourseUpdatedEvent is published whenever a seat counter changes, so
// connected clients can refresh availability.
type CourseUpdatedEvent struct {
	CourseID       int64  `json:"courseId"`
	CourseCode     string `json:"courseCode"`
	AvailableSeats int    `json:"availableSeats"`
	TotalSeats     int    `json:"totalSeats"`
}

// EventPublisher delivers engine events to subscribed clients. It is injected
// into the engine at construction; delivery is fire-and-forget from the
// engine's point of view.
type EventPublisher interface {
	PublishSeatAvailable(event SeatAvailableEvent)
	PublishCourseUpdated(event CourseUpdatedEvent)
}

// WaitlistNotifier publishes SeatAvailable events. Notify re-reads the
// current course state and is a no-op unless a seat is actually free and the
// waitlist is non-empty, which makes redundant calls harmless.
type WaitlistNotifier struct {
	courses   repositories.CourseStore
	publisher EventPublisher
	logger    zerolog.Logger
}

// NewWaitlistNotifier creates a new waitlist notifier
func NewWaitlistNotifier(courses repositories.CourseStore, publisher EventPublisher, logger zerolog.Logger) *WaitlistNotifier {
	return &WaitlistNotifier{
		courses:   courses,
		publisher: publisher,
		logger:    logger,
	}
}

// Notify publishes a SeatAvailable event for the course if it currently has
// at least one free seat and a non-empty waitlist. Calling it when the
// conditions do not hold is not an error.
func (n *WaitlistNotifier) Notify(ctx context.Context, courseID int64) error {
	course, err := n.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil
		}
		return err
	}

	if course.AvailableSeats <= 0 || len(course.Waitlist) == 0 {
		return nil
	}

	n.publisher.PublishSeatAvailable(SeatAvailableEvent{
		CourseID:       course.ID,
		CourseCode:     course.Code,
		CourseName:     course.Name,
		AvailableSeats: course.AvailableSeats,
	})

	n.logger.Debug().
		Int64("courseID", course.ID).
		Str("courseCode", course.Code).
		Int("waitlisted", len(course.Waitlist)).
		Msg("Seat availability notification published")

	return nil
}
