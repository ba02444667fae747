package models

import "time"

// RegistrationStatus is the lifecycle state of a ledger entry.
type RegistrationStatus string

const (
	// RegistrationActive occupies one seat of the course.
	RegistrationActive RegistrationStatus = "active"
	// RegistrationDropped is terminal; the seat has been returned.
	RegistrationDropped RegistrationStatus = "dropped"
	// RegistrationCompleted is terminal; set by the academic-record process.
	RegistrationCompleted RegistrationStatus = "completed"
)

// CourseSnapshot is the immutable copy of course fields taken when a
// registration is created.
type CourseSnapshot struct {
	Code     string         `json:"courseCode"`
	Name     string         `json:"courseName"`
	Credits  int            `json:"credits"`
	Schedule []ScheduleSlot `json:"schedule"`
}

// Registration is one ledger entry per (student, course) enrollment. At most
// one entry per pair may be in the active status at any time.
type Registration struct {
	ID           int64              `json:"id" db:"id"`
	StudentID    int64              `json:"studentId" db:"student_id"`
	CourseID     int64              `json:"courseId" db:"course_id"`
	Course       CourseSnapshot     `json:"course"`
	Status       RegistrationStatus `json:"status" db:"status"`
	RegisteredAt time.Time          `json:"registrationDate" db:"registered_at"`
}

// IsActive reports whether the registration currently occupies a seat.
func (r *Registration) IsActive() bool {
	return r.Status == RegistrationActive
}
