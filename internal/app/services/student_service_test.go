package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/registrar/internal/app/models"
	"github.com/campushub/registrar/internal/pkg/apperrors"
)

func newStudentFixture(t *testing.T) (*StudentService, *memStudentStore, *memCourseStore) {
	t.Helper()
	students := newMemStudentStore()
	courses := newMemCourseStore()
	return NewStudentService(students, courses, zerolog.Nop()), students, courses
}

func TestGetStudentOwnership(t *testing.T) {
	service, students, _ := newStudentFixture(t)

	student := &models.Student{UserID: 10, Identifier: "S-1"}
	require.NoError(t, students.Create(context.Background(), student))

	got, err := service.GetStudent(context.Background(), models.Caller{UserID: 10, Role: models.RoleStudent}, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "S-1", got.Identifier)

	_, err = service.GetStudent(context.Background(), models.Caller{UserID: 11, Role: models.RoleStudent}, student.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = service.GetStudent(context.Background(), adminCaller, student.ID)
	assert.NoError(t, err)

	_, err = service.GetStudent(context.Background(), adminCaller, 404)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestListStudentsRequiresAdmin(t *testing.T) {
	service, students, _ := newStudentFixture(t)

	require.NoError(t, students.Create(context.Background(), &models.Student{UserID: 10, Identifier: "S-1"}))
	require.NoError(t, students.Create(context.Background(), &models.Student{UserID: 11, Identifier: "S-2"}))

	listed, err := service.ListStudents(context.Background(), adminCaller)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	_, err = service.ListStudents(context.Background(), models.Caller{UserID: 10, Role: models.RoleStudent})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestAddCompletedCourse(t *testing.T) {
	service, students, courses := newStudentFixture(t)

	student := &models.Student{UserID: 10, Identifier: "S-1"}
	require.NoError(t, students.Create(context.Background(), student))
	require.NoError(t, courses.Create(context.Background(), &models.Course{Code: "CS101", Name: "Intro", Credits: 3}))

	updated, err := service.AddCompletedCourse(context.Background(), adminCaller, student.ID, "cs101")
	require.NoError(t, err)
	assert.Equal(t, []string{"CS101"}, updated.CompletedCourses)

	// Re-adding is a no-op, not an error.
	updated, err = service.AddCompletedCourse(context.Background(), adminCaller, student.ID, "CS101")
	require.NoError(t, err)
	assert.Equal(t, []string{"CS101"}, updated.CompletedCourses)

	_, err = service.AddCompletedCourse(context.Background(), adminCaller, student.ID, "NOPE101")
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)

	_, err = service.AddCompletedCourse(context.Background(), adminCaller, 404, "CS101")
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	_, err = service.AddCompletedCourse(context.Background(), models.Caller{UserID: 10, Role: models.RoleStudent}, student.ID, "CS101")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
