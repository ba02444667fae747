package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/registrar/internal/app/models"
)

func TestNotifyPublishesWhenSeatAndWaitlistPresent(t *testing.T) {
	courses := newMemCourseStore()
	publisher := &capturingPublisher{}
	notifier := NewWaitlistNotifier(courses, publisher, zerolog.Nop())

	course := &models.Course{Code: "CS101", Name: "Intro", TotalSeats: 5, AvailableSeats: 2}
	require.NoError(t, courses.Create(context.Background(), course))
	_, _, err := courses.JoinWaitlist(context.Background(), course.ID, 7)
	require.NoError(t, err)

	require.NoError(t, notifier.Notify(context.Background(), course.ID))

	events := publisher.SeatAvailableEvents()
	require.Len(t, events, 1)
	assert.Equal(t, course.ID, events[0].CourseID)
	assert.Equal(t, "CS101", events[0].CourseCode)
	assert.Equal(t, "Intro", events[0].CourseName)
	assert.Equal(t, 2, events[0].AvailableSeats)
}

func TestNotifySkipsWhenNoSeats(t *testing.T) {
	courses := newMemCourseStore()
	publisher := &capturingPublisher{}
	notifier := NewWaitlistNotifier(courses, publisher, zerolog.Nop())

	course := &models.Course{Code: "CS101", Name: "Intro", TotalSeats: 5, AvailableSeats: 0}
	require.NoError(t, courses.Create(context.Background(), course))
	_, _, err := courses.JoinWaitlist(context.Background(), course.ID, 7)
	require.NoError(t, err)

	require.NoError(t, notifier.Notify(context.Background(), course.ID))
	assert.Empty(t, publisher.SeatAvailableEvents())
}

func TestNotifySkipsWhenWaitlistEmpty(t *testing.T) {
	courses := newMemCourseStore()
	publisher := &capturingPublisher{}
	notifier := NewWaitlistNotifier(courses, publisher, zerolog.Nop())

	course := &models.Course{Code: "CS101", Name: "Intro", TotalSeats: 5, AvailableSeats: 5}
	require.NoError(t, courses.Create(context.Background(), course))

	require.NoError(t, notifier.Notify(context.Background(), course.ID))
	assert.Empty(t, publisher.SeatAvailableEvents())
}

func TestNotifyToleratesMissingCourse(t *testing.T) {
	courses := newMemCourseStore()
	publisher := &capturingPublisher{}
	notifier := NewWaitlistNotifier(courses, publisher, zerolog.Nop())

	assert.NoError(t, notifier.Notify(context.Background(), 404))
	assert.Empty(t, publisher.SeatAvailableEvents())
}
