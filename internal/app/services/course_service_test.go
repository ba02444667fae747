package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/registrar/internal/app/models"
	"github.com/campushub/registrar/internal/app/repositories"
	"github.com/campushub/registrar/internal/pkg/apperrors"
)

type courseFixture struct {
	courses       *memCourseStore
	registrations *memRegistrationStore
	publisher     *capturingPublisher
	service       *CourseService
}

func newCourseFixture() *courseFixture {
	courses := newMemCourseStore()
	registrations := newMemRegistrationStore()
	publisher := &capturingPublisher{}
	return &courseFixture{
		courses:       courses,
		registrations: registrations,
		publisher:     publisher,
		service:       NewCourseService(courses, registrations, publisher, zerolog.Nop()),
	}
}

func validCourse() *models.Course {
	return &models.Course{
		Code:       "cs101",
		Name:       "Introduction to Computing",
		Department: "CS",
		Credits:    3,
		Schedule:   []models.ScheduleSlot{slot(models.Monday, "09:00", "10:30")},
		TotalSeats: 30, AvailableSeats: 30,
	}
}

func TestCreateCourse(t *testing.T) {
	f := newCourseFixture()

	created, err := f.service.CreateCourse(context.Background(), adminCaller, validCourse())
	require.NoError(t, err)
	assert.Equal(t, "CS101", created.Code, "code is normalized to upper case")
	assert.NotZero(t, created.ID)
}

func TestCreateCourseRejectsDuplicateCode(t *testing.T) {
	f := newCourseFixture()

	_, err := f.service.CreateCourse(context.Background(), adminCaller, validCourse())
	require.NoError(t, err)

	_, err = f.service.CreateCourse(context.Background(), adminCaller, validCourse())
	assert.ErrorIs(t, err, apperrors.ErrCourseCodeTaken)
}

func TestCreateCourseValidation(t *testing.T) {
	f := newCourseFixture()

	tests := []struct {
		name   string
		mutate func(*models.Course)
	}{
		{"empty code", func(c *models.Course) { c.Code = "  " }},
		{"empty name", func(c *models.Course) { c.Name = "" }},
		{"negative credits", func(c *models.Course) { c.Credits = -1 }},
		{"negative seats", func(c *models.Course) { c.TotalSeats = -1 }},
		{"bad weekday", func(c *models.Course) { c.Schedule[0].Day = "Someday" }},
		{"end before start", func(c *models.Course) { c.Schedule[0].EndTime = "08:00" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			course := validCourse()
			tt.mutate(course)
			_, err := f.service.CreateCourse(context.Background(), adminCaller, course)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestCreateCourseAllowsZeroCredits(t *testing.T) {
	f := newCourseFixture()

	course := validCourse()
	course.Credits = 0
	created, err := f.service.CreateCourse(context.Background(), adminCaller, course)
	require.NoError(t, err)
	assert.Equal(t, 0, created.Credits)
}

func TestCreateCourseClampsAvailableSeats(t *testing.T) {
	f := newCourseFixture()

	course := validCourse()
	course.TotalSeats = 10
	course.AvailableSeats = 50

	created, err := f.service.CreateCourse(context.Background(), adminCaller, course)
	require.NoError(t, err)
	assert.Equal(t, 10, created.AvailableSeats)
}

func TestCreateCourseRequiresAdmin(t *testing.T) {
	f := newCourseFixture()

	studentCaller := models.Caller{UserID: 1, Role: models.RoleStudent}
	_, err := f.service.CreateCourse(context.Background(), studentCaller, validCourse())
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestGetCourse(t *testing.T) {
	f := newCourseFixture()

	created, err := f.service.CreateCourse(context.Background(), adminCaller, validCourse())
	require.NoError(t, err)

	got, err := f.service.GetCourse(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Code, got.Code)

	byCode, err := f.service.GetCourseByCode(context.Background(), " cs101 ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCode.ID)

	_, err = f.service.GetCourse(context.Background(), 404)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestUpdateCourse(t *testing.T) {
	f := newCourseFixture()

	created, err := f.service.CreateCourse(context.Background(), adminCaller, validCourse())
	require.NoError(t, err)

	newName := "Computing Fundamentals"
	newCredits := 4
	updated, err := f.service.UpdateCourse(context.Background(), adminCaller, created.ID, repositories.CourseUpdate{
		Name:    &newName,
		Credits: &newCredits,
	})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, 4, updated.Credits)
	assert.NotEmpty(t, f.publisher.CourseUpdatedEvents())

	badCredits := -1
	_, err = f.service.UpdateCourse(context.Background(), adminCaller, created.ID, repositories.CourseUpdate{Credits: &badCredits})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	badSchedule := []models.ScheduleSlot{slot(models.Monday, "11:00", "10:00")}
	_, err = f.service.UpdateCourse(context.Background(), adminCaller, created.ID, repositories.CourseUpdate{Schedule: &badSchedule})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestDeleteCourse(t *testing.T) {
	f := newCourseFixture()

	created, err := f.service.CreateCourse(context.Background(), adminCaller, validCourse())
	require.NoError(t, err)

	t.Run("blocked by active registrations", func(t *testing.T) {
		require.NoError(t, f.registrations.Create(context.Background(), &models.Registration{
			StudentID: 1,
			CourseID:  created.ID,
			Status:    models.RegistrationActive,
		}))

		err := f.service.DeleteCourse(context.Background(), adminCaller, created.ID)
		assert.ErrorIs(t, err, apperrors.ErrCourseHasRegistrations)
	})

	t.Run("allowed once registrations are inactive", func(t *testing.T) {
		entry, err := f.registrations.GetActive(context.Background(), 1, created.ID)
		require.NoError(t, err)
		_, err = f.registrations.MarkDropped(context.Background(), entry.ID)
		require.NoError(t, err)

		require.NoError(t, f.service.DeleteCourse(context.Background(), adminCaller, created.ID))

		_, err = f.service.GetCourse(context.Background(), created.ID)
		assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	})
}

func TestListCourses(t *testing.T) {
	f := newCourseFixture()

	cs := validCourse()
	_, err := f.service.CreateCourse(context.Background(), adminCaller, cs)
	require.NoError(t, err)

	math := validCourse()
	math.Code = "MATH201"
	math.Department = "MATH"
	math.AvailableSeats = 0
	math.Schedule = nil
	created, err := f.service.CreateCourse(context.Background(), adminCaller, math)
	require.NoError(t, err)
	_, _, err = f.courses.SetSeats(context.Background(), created.ID, 30, 0)
	require.NoError(t, err)

	all, err := f.service.ListCourses(context.Background(), repositories.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	csOnly, err := f.service.ListCourses(context.Background(), repositories.CourseFilter{Department: "CS"})
	require.NoError(t, err)
	require.Len(t, csOnly, 1)
	assert.Equal(t, "CS101", csOnly[0].Code)

	open, err := f.service.ListCourses(context.Background(), repositories.CourseFilter{OnlyAvailable: true})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "CS101", open[0].Code)
}

func TestCourseWaitlistQuery(t *testing.T) {
	f := newCourseFixture()

	created, err := f.service.CreateCourse(context.Background(), adminCaller, validCourse())
	require.NoError(t, err)

	waitlist, err := f.service.Waitlist(context.Background(), adminCaller, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{}, waitlist)

	_, _, err = f.courses.JoinWaitlist(context.Background(), created.ID, 7)
	require.NoError(t, err)
	_, _, err = f.courses.JoinWaitlist(context.Background(), created.ID, 9)
	require.NoError(t, err)

	waitlist, err = f.service.Waitlist(context.Background(), adminCaller, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 9}, waitlist)

	studentCaller := models.Caller{UserID: 1, Role: models.RoleStudent}
	_, err = f.service.Waitlist(context.Background(), studentCaller, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
