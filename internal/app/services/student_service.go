package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/campushub/registrar/internal/app/models"
	"github.com/campushub/registrar/internal/app/repositories"
	"github.com/campushub/registrar/internal/pkg/apperrors"
)

// StudentService exposes student records and their academic history.
type StudentService struct {
	students repositories.StudentStore
	courses  repositories.CourseStore
	logger   zerolog.Logger
}

// NewStudentService creates a new student service instance.
func NewStudentService(students repositories.StudentStore, courses repositories.CourseStore, logger zerolog.Logger) *StudentService {
	return &StudentService{
		students: students,
		courses:  courses,
		logger:   logger,
	}
}

// GetStudent returns a student by ID. Non-admin callers can only read their
// own record.
func (s *StudentService) GetStudent(ctx context.Context, caller models.Caller, id int64) (*models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrStudentNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, apperrors.ErrInternal
	}

	if !caller.IsAdmin() && caller.UserID != student.UserID {
		return nil, apperrors.ErrPermissionDenied
	}

	return student, nil
}

// GetStudentByUser returns the student record attached to a user account.
func (s *StudentService) GetStudentByUser(ctx context.Context, userID int64) (*models.Student, error) {
	student, err := s.students.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrStudentNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, apperrors.ErrInternal
	}
	return student, nil
}

// ListStudents returns every student record.
func (s *StudentService) ListStudents(ctx context.Context, caller models.Caller) ([]*models.Student, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	students, err := s.students.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list students")
		return nil, apperrors.ErrInternal
	}

	return students, nil
}

// AddCompletedCourse records a course code in the student's completed set,
// which feeds the prerequisite check. The code must exist in the catalog.
// Re-adding an already completed code is a no-op.
func (s *StudentService) AddCompletedCourse(ctx context.Context, caller models.Caller, studentID int64, courseCode string) (*models.Student, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	courseCode = strings.ToUpper(strings.TrimSpace(courseCode))
	if courseCode == "" {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "course code is required")
	}

	if _, err := s.courses.GetByCode(ctx, courseCode); err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, apperrors.ErrInternal
	}

	if err := s.students.AddCompletedCourse(ctx, studentID, courseCode); err != nil {
		if errors.Is(err, repositories.ErrStudentNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		s.logger.Error().Err(err).
			Int64("studentID", studentID).
			Str("courseCode", courseCode).
			Msg("Failed to record completed course")
		return nil, apperrors.ErrInternal
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, apperrors.ErrInternal
	}

	s.logger.Info().
		Int64("studentID", studentID).
		Str("courseCode", courseCode).
		Msg("Completed course recorded")

	return student, nil
}
