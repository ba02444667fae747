package dto

import (
	"time"

	"github.com/campushub/registrar/internal/app/models"
)

// RegisterCourseRequest identifies the student registering for a course.
type RegisterCourseRequest struct {
	StudentID int64 `json:"studentId" binding:"required" example:"7"`
}

// CourseSnapshotDTO is the course state frozen into a registration.
type CourseSnapshotDTO struct {
	Code     string            `json:"courseCode" example:"CS301"`
	Name     string            `json:"courseName" example:"Algorithms"`
	Credits  int               `json:"credits" example:"3"`
	Schedule []ScheduleSlotDTO `json:"schedule"`
}

// RegistrationResponse is the public view of a ledger entry.
type RegistrationResponse struct {
	ID           int64             `json:"id" example:"42"`
	StudentID    int64             `json:"studentId" example:"7"`
	CourseID     int64             `json:"courseId" example:"1"`
	Course       CourseSnapshotDTO `json:"course"`
	Status       string            `json:"status" example:"active" enums:"active,dropped,completed"`
	RegisteredAt time.Time         `json:"registrationDate"`
}

// RegistrationOutcomeResponse reports whether a Register call claimed a seat
// or landed on the waitlist.
type RegistrationOutcomeResponse struct {
	Outcome          string                `json:"outcome" example:"registered" enums:"registered,waitlisted"`
	Registration     *RegistrationResponse `json:"registration,omitempty"`
	WaitlistPosition int                   `json:"waitlistPosition,omitempty" example:"2"`
}

// WaitlistPositionResponse reports a student's position after subscribing.
type WaitlistPositionResponse struct {
	CourseID  int64 `json:"courseId" example:"1"`
	StudentID int64 `json:"studentId" example:"7"`
	Position  int   `json:"position" example:"2"`
}

// PrerequisiteCheckResponse reports a standalone prerequisite query.
type PrerequisiteCheckResponse struct {
	Meets   bool     `json:"meets" example:"false"`
	Missing []string `json:"missing" example:"CS201"`
}

// NewRegistrationResponse maps a registration model to its public view.
func NewRegistrationResponse(registration *models.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:        registration.ID,
		StudentID: registration.StudentID,
		CourseID:  registration.CourseID,
		Course: CourseSnapshotDTO{
			Code:     registration.Course.Code,
			Name:     registration.Course.Name,
			Credits:  registration.Course.Credits,
			Schedule: FromScheduleSlots(registration.Course.Schedule),
		},
		Status:       string(registration.Status),
		RegisteredAt: registration.RegisteredAt,
	}
}

// NewRegistrationListResponse maps a slice of registrations.
func NewRegistrationListResponse(registrations []*models.Registration) []RegistrationResponse {
	out := make([]RegistrationResponse, len(registrations))
	for i, registration := range registrations {
		out[i] = NewRegistrationResponse(registration)
	}
	return out
}
