package repositories

import (
	"context"
	"errors"

	"github.com/campushub/registrar/internal/app/models"
)

// Store error types. Services translate these into the apperrors taxonomy.
var (
	ErrCourseNotFound        = errors.New("course not found")
	ErrCourseCodeTaken       = errors.New("course with this code already exists")
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrDuplicateRegistration = errors.New("active registration already exists for this student and course")
	ErrStudentNotFound       = errors.New("student not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailTaken            = errors.New("email already exists")
	ErrIdentifierTaken       = errors.New("student identifier already exists")

	// ErrTransientConflict wraps storage-level conflicts (serialization
	// failures, deadlocks) that are safe to retry.
	ErrTransientConflict = errors.New("transient storage conflict")
)

// CourseFilter narrows catalog queries.
type CourseFilter struct {
	Department    string
	Search        string // matches code or name
	OnlyAvailable bool   // courses with at least one free seat
}

// CourseUpdate enumerates the mutable catalog fields of a course. Nil fields
// are left unchanged. Seat counters are deliberately absent: they move only
// through ReserveSeat/ReleaseSeat/SetSeats.
type CourseUpdate struct {
	Name          *string
	Description   *string
	Department    *string
	Credits       *int
	Instructor    *string
	Prerequisites *[]string
	Schedule      *[]models.ScheduleSlot
}

// SeatRelease reports the outcome of returning a seat to a course.
type SeatRelease struct {
	AvailableSeats int
	// BecameAvailable is true when the release moved the course from zero
	// free seats to at least one.
	BecameAvailable bool
}

// CourseStore is the persistence contract for the course catalog, including
// the per-course seat counters and waitlist.
//
// ReserveSeat and ReleaseSeat are the engine's critical section: each call is
// a single atomic conditional update scoped to one course, never a blind
// read-then-write across two calls.
type CourseStore interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	GetByCode(ctx context.Context, code string) (*models.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]*models.Course, error)
	Update(ctx context.Context, id int64, update CourseUpdate) (*models.Course, error)
	Delete(ctx context.Context, id int64) error

	// ReserveSeat atomically decrements the available seat counter if it is
	// positive. It returns false, without error, when the course is full.
	ReserveSeat(ctx context.Context, id int64) (bool, error)

	// ReleaseSeat atomically increments the available seat counter, clamped
	// to the course total.
	ReleaseSeat(ctx context.Context, id int64) (SeatRelease, error)

	// SetSeats overrides both seat counters, clamping available into
	// [0, total]. The returned flag reports a zero-to-positive transition of
	// the available counter.
	SetSeats(ctx context.Context, id int64, total, available int) (*models.Course, bool, error)

	// JoinWaitlist appends the student to the course waitlist if absent and
	// returns the student's 1-based position. added is false when the
	// student was already listed.
	JoinWaitlist(ctx context.Context, courseID, studentID int64) (position int, added bool, err error)

	// LeaveWaitlist removes the student from the waitlist if present.
	LeaveWaitlist(ctx context.Context, courseID, studentID int64) (removed bool, err error)

	// Waitlist returns the waitlisted student IDs in FIFO order.
	Waitlist(ctx context.Context, courseID int64) ([]int64, error)
}

// RegistrationStore is the persistence contract for the registration ledger.
// Create must reject a second active entry for the same (student, course)
// pair with ErrDuplicateRegistration, even under concurrent calls.
type RegistrationStore interface {
	Create(ctx context.Context, registration *models.Registration) error
	GetByID(ctx context.Context, id int64) (*models.Registration, error)
	GetActive(ctx context.Context, studentID, courseID int64) (*models.Registration, error)
	ListByStudent(ctx context.Context, studentID int64, onlyActive bool) ([]*models.Registration, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*models.Registration, error)
	CountActiveByCourse(ctx context.Context, courseID int64) (int, error)

	// MarkDropped transitions an active registration to dropped. It returns
	// ErrRegistrationNotFound when no active entry matches, including when a
	// concurrent drop won the race.
	MarkDropped(ctx context.Context, id int64) (*models.Registration, error)
}

// StudentStore is the persistence contract for student records.
type StudentStore interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
	List(ctx context.Context) ([]*models.Student, error)

	// AddCompletedCourse appends a course code to the student's completed
	// set. Adding a code that is already present is a no-op.
	AddCompletedCourse(ctx context.Context, studentID int64, courseCode string) error
}

// UserStore is the persistence contract for user accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64) error
}
