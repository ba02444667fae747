package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/campushub/registrar/internal/app/models"
	"github.com/campushub/registrar/internal/app/repositories"
	"github.com/campushub/registrar/internal/pkg/apperrors"
)

// RegistrationOutcome distinguishes the two success paths of Register.
type RegistrationOutcome string

const (
	// OutcomeRegistered means a seat was claimed and a ledger entry created.
	OutcomeRegistered RegistrationOutcome = "registered"
	// OutcomeWaitlisted means the course was full and the student was
	// appended to the waitlist.
	OutcomeWaitlisted RegistrationOutcome = "waitlisted"
)

// RegistrationResult is the outcome of a successful Register call.
type RegistrationResult struct {
	Outcome      RegistrationOutcome  `json:"outcome"`
	Registration *models.Registration `json:"registration,omitempty"`
	// WaitlistPosition is the 1-based position when Outcome is waitlisted.
	WaitlistPosition int `json:"waitlistPosition,omitempty"`
}

// PrerequisiteCheck is the result of a standalone prerequisite query.
type PrerequisiteCheck struct {
	Meets   bool     `json:"meets"`
	Missing []string `json:"missing"`
}

// RegistrationService is the registration engine. It orchestrates the
// eligibility check, the atomic seat mutation, the ledger write, and the
// waitlist notification for each operation, and owns the invariants around
// seat counters and the one-active-registration-per-pair rule.
//
// Operations on different courses run fully in parallel; the per-course
// critical section lives in the store's ReserveSeat/ReleaseSeat/SetSeats.
type RegistrationService struct {
	courses       repositories.CourseStore
	registrations repositories.RegistrationStore
	students      repositories.StudentStore
	notifier      *WaitlistNotifier
	publisher     EventPublisher
	seatRetries   int
	logger        zerolog.Logger
}

// NewRegistrationService creates a new registration engine instance.
func NewRegistrationService(
	courses repositories.CourseStore,
	registrations repositories.RegistrationStore,
	students repositories.StudentStore,
	notifier *WaitlistNotifier,
	publisher EventPublisher,
	seatRetries int,
	logger zerolog.Logger,
) *RegistrationService {
	if seatRetries < 1 {
		seatRetries = 1
	}
	return &RegistrationService{
		courses:       courses,
		registrations: registrations,
		students:      students,
		notifier:      notifier,
		publisher:     publisher,
		seatRetries:   seatRetries,
		logger:        logger,
	}
}

// Register enrolls the student in the course, or appends them to the
// waitlist when no seat is free. Validation failures are reported to the
// caller; only the seat mutation itself is retried on transient conflicts.
func (s *RegistrationService) Register(ctx context.Context, caller models.Caller, studentID, courseID int64) (*RegistrationResult, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}

	if err := s.authorizeStudentAction(caller, student); err != nil {
		return nil, err
	}

	if _, err := s.registrations.GetActive(ctx, studentID, courseID); err == nil {
		return nil, apperrors.ErrAlreadyRegistered
	} else if !errors.Is(err, repositories.ErrRegistrationNotFound) {
		return nil, s.translateStoreError(err)
	}

	for _, waitlisted := range course.Waitlist {
		if waitlisted == studentID {
			return nil, apperrors.ErrAlreadyWaitlisted
		}
	}

	activeRegistrations, err := s.registrations.ListByStudent(ctx, studentID, true)
	if err != nil {
		return nil, s.translateStoreError(err)
	}

	eligibility := CheckEligibility(student.CompletedCourses, course, activeRegistrations)
	if !eligibility.PrerequisitesMet {
		return nil, apperrors.NewCustomError(apperrors.ErrPrerequisitesNotMet,
			fmt.Sprintf("missing prerequisites for %s", course.Code)).
			WithDetails(map[string]interface{}{"missingPrerequisites": eligibility.MissingPrerequisites})
	}
	if eligibility.ConflictingCourse != "" {
		return nil, apperrors.NewCustomError(apperrors.ErrScheduleConflict,
			fmt.Sprintf("schedule conflicts with %s", eligibility.ConflictingCourse)).
			WithDetails(map[string]interface{}{"conflictingCourse": eligibility.ConflictingCourse})
	}

	reserved, err := s.reserveSeatWithRetry(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if !reserved {
		// Course is full: fall back to the waitlist. JoinWaitlist is
		// idempotent, so losing a race with a duplicate request is harmless.
		position, _, err := s.courses.JoinWaitlist(ctx, courseID, studentID)
		if err != nil {
			return nil, s.translateStoreError(err)
		}

		s.logger.Info().
			Int64("studentID", studentID).
			Int64("courseID", courseID).
			Int("position", position).
			Msg("Student waitlisted")

		return &RegistrationResult{
			Outcome:          OutcomeWaitlisted,
			WaitlistPosition: position,
		}, nil
	}

	registration := &models.Registration{
		StudentID: studentID,
		CourseID:  courseID,
		Course:    course.Snapshot(),
		Status:    models.RegistrationActive,
	}

	if err := s.registrations.Create(ctx, registration); err != nil {
		// The seat was claimed but the ledger refused the entry; give the
		// seat back before reporting.
		if _, releaseErr := s.releaseSeatWithRetry(ctx, courseID); releaseErr != nil {
			s.logger.Error().Err(releaseErr).
				Int64("courseID", courseID).
				Msg("Failed to release seat after ledger rejection")
		}
		if errors.Is(err, repositories.ErrDuplicateRegistration) {
			return nil, apperrors.ErrAlreadyRegistered
		}
		return nil, s.translateStoreError(err)
	}

	s.publishCourseUpdate(ctx, courseID)

	s.logger.Info().
		Int64("studentID", studentID).
		Int64("courseID", courseID).
		Int64("registrationID", registration.ID).
		Msg("Student registered")

	return &RegistrationResult{
		Outcome:      OutcomeRegistered,
		Registration: registration,
	}, nil
}

// Drop cancels an active registration by ID and returns the freed seat to
// the course. When the course transitions from full to having a free seat
// and its waitlist is non-empty, a SeatAvailable event is published.
func (s *RegistrationService) Drop(ctx context.Context, caller models.Caller, registrationID int64) (*models.Registration, error) {
	registration, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}
	if !registration.IsActive() {
		return nil, apperrors.ErrRegistrationNotFound
	}

	if err := s.authorizeRegistrationAccess(ctx, caller, registration); err != nil {
		return nil, err
	}

	return s.drop(ctx, registration)
}

// DropByCourse cancels the student's active registration for the course.
func (s *RegistrationService) DropByCourse(ctx context.Context, caller models.Caller, studentID, courseID int64) (*models.Registration, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}

	if err := s.authorizeStudentAction(caller, student); err != nil {
		return nil, err
	}

	registration, err := s.registrations.GetActive(ctx, studentID, courseID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}

	return s.drop(ctx, registration)
}

func (s *RegistrationService) drop(ctx context.Context, registration *models.Registration) (*models.Registration, error) {
	dropped, err := s.registrations.MarkDropped(ctx, registration.ID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}

	release, err := s.releaseSeatWithRetry(ctx, registration.CourseID)
	if err != nil {
		// The course may have been deleted since registration; the drop
		// itself still stands.
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return dropped, nil
		}
		if errors.Is(err, apperrors.ErrSeatUpdateConflict) {
			return nil, err
		}
		s.logger.Error().Err(err).
			Int64("courseID", registration.CourseID).
			Msg("Failed to release seat on drop")
		return nil, apperrors.ErrInternal
	}

	s.publishCourseUpdate(ctx, registration.CourseID)

	if release.BecameAvailable {
		if err := s.notifier.Notify(ctx, registration.CourseID); err != nil {
			s.logger.Error().Err(err).
				Int64("courseID", registration.CourseID).
				Msg("Failed to notify waitlist")
		}
	}

	s.logger.Info().
		Int64("registrationID", dropped.ID).
		Int64("courseID", registration.CourseID).
		Msg("Registration dropped")

	return dropped, nil
}

// AdminOverrideRegister enrolls the student without the eligibility check
// and without the waitlist fallback. A seat is claimed only if one is free;
// a full course leaves the counters untouched but still creates the entry.
func (s *RegistrationService) AdminOverrideRegister(ctx context.Context, caller models.Caller, studentID, courseID int64) (*RegistrationResult, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}

	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return nil, s.translateStoreError(err)
	}

	registration := &models.Registration{
		StudentID: studentID,
		CourseID:  courseID,
		Course:    course.Snapshot(),
		Status:    models.RegistrationActive,
	}

	if err := s.registrations.Create(ctx, registration); err != nil {
		if errors.Is(err, repositories.ErrDuplicateRegistration) {
			return nil, apperrors.ErrAlreadyRegistered
		}
		return nil, s.translateStoreError(err)
	}

	reserved, err := s.reserveSeatWithRetry(ctx, courseID)
	if err != nil {
		s.logger.Error().Err(err).
			Int64("courseID", courseID).
			Msg("Override registration created but seat reservation failed")
	} else if reserved {
		s.publishCourseUpdate(ctx, courseID)
	}

	s.logger.Info().
		Int64("studentID", studentID).
		Int64("courseID", courseID).
		Bool("seatClaimed", reserved).
		Msg("Admin override registration")

	return &RegistrationResult{
		Outcome:      OutcomeRegistered,
		Registration: registration,
	}, nil
}

// UpdateSeats overrides a course's seat counters. Available is clamped into
// [0, total]; a transition from zero to positive availability triggers the
// same waitlist notification as a drop.
func (s *RegistrationService) UpdateSeats(ctx context.Context, caller models.Caller, courseID int64, totalSeats, availableSeats int) (*models.Course, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	if totalSeats < 0 || availableSeats < 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed,
			"seat counts must not be negative")
	}

	course, becameAvailable, err := s.setSeatsWithRetry(ctx, courseID, totalSeats, availableSeats)
	if err != nil {
		if errors.Is(err, apperrors.ErrSeatUpdateConflict) {
			return nil, err
		}
		return nil, s.translateStoreError(err)
	}

	s.publisher.PublishCourseUpdated(CourseUpdatedEvent{
		CourseID:       course.ID,
		CourseCode:     course.Code,
		AvailableSeats: course.AvailableSeats,
		TotalSeats:     course.TotalSeats,
	})

	if becameAvailable {
		if err := s.notifier.Notify(ctx, courseID); err != nil {
			s.logger.Error().Err(err).
				Int64("courseID", courseID).
				Msg("Failed to notify waitlist after seat update")
		}
	}

	return course, nil
}

// SubscribeWaitlist appends the student to the course waitlist. It is
// idempotent and independent of seat availability: subscribing to a course
// with free seats is a valid no-op position hold, not an error.
func (s *RegistrationService) SubscribeWaitlist(ctx context.Context, caller models.Caller, courseID, studentID int64) (int, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return 0, s.translateStoreError(err)
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return 0, s.translateStoreError(err)
	}

	if err := s.authorizeStudentAction(caller, student); err != nil {
		return 0, err
	}

	position, _, err := s.courses.JoinWaitlist(ctx, courseID, studentID)
	if err != nil {
		return 0, s.translateStoreError(err)
	}

	return position, nil
}

// UnsubscribeWaitlist removes the student from the course waitlist.
// Removing an absent student is a no-op.
func (s *RegistrationService) UnsubscribeWaitlist(ctx context.Context, caller models.Caller, courseID, studentID int64) error {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return s.translateStoreError(err)
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return s.translateStoreError(err)
	}

	if err := s.authorizeStudentAction(caller, student); err != nil {
		return err
	}

	if _, err := s.courses.LeaveWaitlist(ctx, courseID, studentID); err != nil {
		return s.translateStoreError(err)
	}

	return nil
}

// CheckPrerequisites reports whether the student meets the prerequisites of
// the course, listing any missing codes.
func (s *RegistrationService) CheckPrerequisites(ctx context.Context, studentID, courseID int64) (*PrerequisiteCheck, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}

	missing := MissingPrerequisites(student.CompletedCourses, course.Prerequisites)
	check := &PrerequisiteCheck{
		Meets:   len(missing) == 0,
		Missing: missing,
	}
	if check.Missing == nil {
		check.Missing = []string{}
	}

	return check, nil
}

// ListStudentRegistrations returns the ledger entries for a student.
func (s *RegistrationService) ListStudentRegistrations(ctx context.Context, caller models.Caller, studentID int64, onlyActive bool) ([]*models.Registration, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}

	if err := s.authorizeStudentAction(caller, student); err != nil {
		return nil, err
	}

	registrations, err := s.registrations.ListByStudent(ctx, studentID, onlyActive)
	if err != nil {
		return nil, s.translateStoreError(err)
	}

	return registrations, nil
}

// ListCourseRegistrations returns every ledger entry referencing a course.
func (s *RegistrationService) ListCourseRegistrations(ctx context.Context, caller models.Caller, courseID int64) ([]*models.Registration, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, s.translateStoreError(err)
	}

	registrations, err := s.registrations.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}

	return registrations, nil
}

// reserveSeatWithRetry retries the atomic seat decrement on transient
// storage conflicts. Exhausting the retries surfaces as a conflict to the
// caller, never as corrupted state.
func (s *RegistrationService) reserveSeatWithRetry(ctx context.Context, courseID int64) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < s.seatRetries; attempt++ {
		reserved, err := s.courses.ReserveSeat(ctx, courseID)
		if err == nil {
			return reserved, nil
		}
		if !errors.Is(err, repositories.ErrTransientConflict) {
			s.logger.Error().Err(err).
				Int64("courseID", courseID).
				Msg("Seat reservation failed")
			return false, apperrors.ErrInternal
		}
		lastErr = err
	}

	s.logger.Warn().Err(lastErr).
		Int64("courseID", courseID).
		Int("attempts", s.seatRetries).
		Msg("Seat reservation retries exhausted")

	return false, apperrors.ErrSeatUpdateConflict
}

// releaseSeatWithRetry retries the atomic seat increment on transient
// storage conflicts, mirroring reserveSeatWithRetry. Non-transient errors
// are returned unmapped for the caller to translate.
func (s *RegistrationService) releaseSeatWithRetry(ctx context.Context, courseID int64) (repositories.SeatRelease, error) {
	var lastErr error
	for attempt := 0; attempt < s.seatRetries; attempt++ {
		release, err := s.courses.ReleaseSeat(ctx, courseID)
		if err == nil {
			return release, nil
		}
		if !errors.Is(err, repositories.ErrTransientConflict) {
			return repositories.SeatRelease{}, err
		}
		lastErr = err
	}

	s.logger.Warn().Err(lastErr).
		Int64("courseID", courseID).
		Int("attempts", s.seatRetries).
		Msg("Seat release retries exhausted")

	return repositories.SeatRelease{}, apperrors.ErrSeatUpdateConflict
}

// setSeatsWithRetry retries the seat counter override on transient storage
// conflicts.
func (s *RegistrationService) setSeatsWithRetry(ctx context.Context, courseID int64, total, available int) (*models.Course, bool, error) {
	var lastErr error
	for attempt := 0; attempt < s.seatRetries; attempt++ {
		course, becameAvailable, err := s.courses.SetSeats(ctx, courseID, total, available)
		if err == nil {
			return course, becameAvailable, nil
		}
		if !errors.Is(err, repositories.ErrTransientConflict) {
			return nil, false, err
		}
		lastErr = err
	}

	s.logger.Warn().Err(lastErr).
		Int64("courseID", courseID).
		Int("attempts", s.seatRetries).
		Msg("Seat override retries exhausted")

	return nil, false, apperrors.ErrSeatUpdateConflict
}

// publishCourseUpdate re-reads the course and publishes its current seat
// counters. Failures are logged, never surfaced: events are advisory.
func (s *RegistrationService) publishCourseUpdate(ctx context.Context, courseID int64) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		s.logger.Error().Err(err).
			Int64("courseID", courseID).
			Msg("Failed to load course for update event")
		return
	}

	s.publisher.PublishCourseUpdated(CourseUpdatedEvent{
		CourseID:       course.ID,
		CourseCode:     course.Code,
		AvailableSeats: course.AvailableSeats,
		TotalSeats:     course.TotalSeats,
	})
}

// authorizeStudentAction permits admins and the student's own account.
func (s *RegistrationService) authorizeStudentAction(caller models.Caller, student *models.Student) error {
	if caller.IsAdmin() || caller.UserID == student.UserID {
		return nil
	}
	return apperrors.ErrPermissionDenied
}

// authorizeRegistrationAccess permits admins and the owning student.
func (s *RegistrationService) authorizeRegistrationAccess(ctx context.Context, caller models.Caller, registration *models.Registration) error {
	if caller.IsAdmin() {
		return nil
	}

	student, err := s.students.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return apperrors.ErrPermissionDenied
	}

	if student.ID != registration.StudentID {
		return apperrors.ErrPermissionDenied
	}

	return nil
}

// translateStoreError maps store sentinels into the apperrors taxonomy,
// hiding storage details behind ErrInternal for anything unexpected.
func (s *RegistrationService) translateStoreError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrCourseNotFound):
		return apperrors.ErrCourseNotFound
	case errors.Is(err, repositories.ErrStudentNotFound):
		return apperrors.ErrStudentNotFound
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		return apperrors.ErrRegistrationNotFound
	case errors.Is(err, repositories.ErrDuplicateRegistration):
		return apperrors.ErrAlreadyRegistered
	case errors.Is(err, repositories.ErrTransientConflict):
		return apperrors.ErrSeatUpdateConflict
	default:
		s.logger.Error().Err(err).Msg("Unexpected storage error")
		return apperrors.ErrInternal
	}
}
