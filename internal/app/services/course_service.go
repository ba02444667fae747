package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/campushub/registrar/internal/app/models"
	"github.com/campushub/registrar/internal/app/repositories"
	"github.com/campushub/registrar/internal/pkg/apperrors"
)

// CourseService manages the course catalog. Seat counters and waitlists are
// owned by the registration engine; this service only touches catalog fields.
type CourseService struct {
	courses       repositories.CourseStore
	registrations repositories.RegistrationStore
	publisher     EventPublisher
	logger        zerolog.Logger
}

// NewCourseService creates a new course service instance.
func NewCourseService(courses repositories.CourseStore, registrations repositories.RegistrationStore, publisher EventPublisher, logger zerolog.Logger) *CourseService {
	return &CourseService{
		courses:       courses,
		registrations: registrations,
		publisher:     publisher,
		logger:        logger,
	}
}

// CreateCourse adds a course to the catalog. The course code must be unique
// and every schedule slot must be well-formed.
func (s *CourseService) CreateCourse(ctx context.Context, caller models.Caller, course *models.Course) (*models.Course, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	if err := validateCourse(course); err != nil {
		return nil, err
	}

	course.Code = strings.ToUpper(strings.TrimSpace(course.Code))
	if course.AvailableSeats > course.TotalSeats {
		course.AvailableSeats = course.TotalSeats
	}

	if err := s.courses.Create(ctx, course); err != nil {
		if errors.Is(err, repositories.ErrCourseCodeTaken) {
			return nil, apperrors.ErrCourseCodeTaken
		}
		s.logger.Error().Err(err).Str("code", course.Code).Msg("Failed to create course")
		return nil, apperrors.ErrInternal
	}

	s.logger.Info().
		Int64("courseID", course.ID).
		Str("code", course.Code).
		Int("totalSeats", course.TotalSeats).
		Msg("Course created")

	return course, nil
}

// GetCourse returns a course by ID.
func (s *CourseService) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, apperrors.ErrInternal
	}
	return course, nil
}

// GetCourseByCode returns a course by its catalog code.
func (s *CourseService) GetCourseByCode(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.courses.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, apperrors.ErrInternal
	}
	return course, nil
}

// ListCourses returns catalog entries matching the filter.
func (s *CourseService) ListCourses(ctx context.Context, filter repositories.CourseFilter) ([]*models.Course, error) {
	courses, err := s.courses.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list courses")
		return nil, apperrors.ErrInternal
	}
	return courses, nil
}

// UpdateCourse modifies catalog fields of a course. Seat counters are not
// reachable from here; UpdateSeats on the registration engine owns those.
func (s *CourseService) UpdateCourse(ctx context.Context, caller models.Caller, id int64, update repositories.CourseUpdate) (*models.Course, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	if update.Credits != nil && *update.Credits < 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "credits must not be negative")
	}
	if update.Schedule != nil {
		for _, slot := range *update.Schedule {
			if err := ValidateScheduleSlot(slot); err != nil {
				return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, err.Error())
			}
		}
	}

	course, err := s.courses.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		s.logger.Error().Err(err).Int64("courseID", id).Msg("Failed to update course")
		return nil, apperrors.ErrInternal
	}

	s.publisher.PublishCourseUpdated(CourseUpdatedEvent{
		CourseID:       course.ID,
		CourseCode:     course.Code,
		AvailableSeats: course.AvailableSeats,
		TotalSeats:     course.TotalSeats,
	})

	s.logger.Info().Int64("courseID", id).Msg("Course updated")

	return course, nil
}

// DeleteCourse removes a course from the catalog. Courses with active
// registrations cannot be deleted.
func (s *CourseService) DeleteCourse(ctx context.Context, caller models.Caller, id int64) error {
	if !caller.IsAdmin() {
		return apperrors.ErrPermissionDenied
	}

	active, err := s.registrations.CountActiveByCourse(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("courseID", id).Msg("Failed to count registrations")
		return apperrors.ErrInternal
	}
	if active > 0 {
		return apperrors.ErrCourseHasRegistrations
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return apperrors.ErrCourseNotFound
		}
		s.logger.Error().Err(err).Int64("courseID", id).Msg("Failed to delete course")
		return apperrors.ErrInternal
	}

	s.logger.Info().Int64("courseID", id).Msg("Course deleted")

	return nil
}

// Waitlist returns the waitlisted student IDs for a course in FIFO order.
func (s *CourseService) Waitlist(ctx context.Context, caller models.Caller, courseID int64) ([]int64, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, apperrors.ErrInternal
	}

	waitlist, err := s.courses.Waitlist(ctx, courseID)
	if err != nil {
		return nil, apperrors.ErrInternal
	}
	if waitlist == nil {
		waitlist = []int64{}
	}

	return waitlist, nil
}

func validateCourse(course *models.Course) error {
	if strings.TrimSpace(course.Code) == "" {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "course code is required")
	}
	if strings.TrimSpace(course.Name) == "" {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "course name is required")
	}
	if course.Credits < 0 {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "credits must not be negative")
	}
	if course.TotalSeats < 0 || course.AvailableSeats < 0 {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "seat counts must not be negative")
	}
	for i, slot := range course.Schedule {
		if err := ValidateScheduleSlot(slot); err != nil {
			return apperrors.NewCustomError(apperrors.ErrValidationFailed,
				fmt.Sprintf("schedule slot %d: %v", i, err))
		}
	}
	return nil
}
