package dto

import (
	"time"

	"github.com/campushub/registrar/internal/app/models"
)

// ScheduleSlotDTO is the wire form of one weekly meeting.
type ScheduleSlotDTO struct {
	Day       string `json:"day" binding:"required" example:"Monday"`
	StartTime string `json:"startTime" binding:"required" example:"09:00"`
	EndTime   string `json:"endTime" binding:"required" example:"10:30"`
	Room      string `json:"room" example:"B-204"`
}

// CreateCourseRequest represents the course creation payload.
type CreateCourseRequest struct {
	Code          string            `json:"courseCode" binding:"required" example:"CS301"`
	Name          string            `json:"name" binding:"required" example:"Algorithms"`
	Description   string            `json:"description" example:"Design and analysis of algorithms"`
	Department    string            `json:"department" example:"CS"`
	Credits       int               `json:"credits" binding:"min=0" example:"3"`
	Instructor    string            `json:"instructor" example:"Dr. Chen"`
	Prerequisites []string          `json:"prerequisites" example:"CS101,CS201"`
	Schedule      []ScheduleSlotDTO `json:"schedule"`
	TotalSeats    int               `json:"totalSeats" binding:"min=0" example:"30"`
}

// UpdateCourseRequest carries optional catalog field updates. Absent fields
// stay unchanged; seat counters have their own endpoint.
type UpdateCourseRequest struct {
	Name          *string            `json:"name,omitempty"`
	Description   *string            `json:"description,omitempty"`
	Department    *string            `json:"department,omitempty"`
	Credits       *int               `json:"credits,omitempty"`
	Instructor    *string            `json:"instructor,omitempty"`
	Prerequisites *[]string          `json:"prerequisites,omitempty"`
	Schedule      *[]ScheduleSlotDTO `json:"schedule,omitempty"`
}

// UpdateSeatsRequest overrides both seat counters of a course.
type UpdateSeatsRequest struct {
	TotalSeats     int `json:"totalSeats" binding:"min=0" example:"40"`
	AvailableSeats int `json:"availableSeats" binding:"min=0" example:"12"`
}

// CourseResponse is the public view of a catalog entry.
type CourseResponse struct {
	ID             int64             `json:"id" example:"1"`
	Code           string            `json:"courseCode" example:"CS301"`
	Name           string            `json:"name" example:"Algorithms"`
	Description    string            `json:"description,omitempty"`
	Department     string            `json:"department,omitempty" example:"CS"`
	Credits        int               `json:"credits" example:"3"`
	Instructor     string            `json:"instructor,omitempty" example:"Dr. Chen"`
	Prerequisites  []string          `json:"prerequisites"`
	Schedule       []ScheduleSlotDTO `json:"schedule"`
	TotalSeats     int               `json:"totalSeats" example:"30"`
	AvailableSeats int               `json:"availableSeats" example:"12"`
	WaitlistLength int               `json:"waitlistLength" example:"3"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// ToScheduleSlots converts wire slots to model slots.
func ToScheduleSlots(slots []ScheduleSlotDTO) []models.ScheduleSlot {
	if slots == nil {
		return nil
	}
	out := make([]models.ScheduleSlot, len(slots))
	for i, s := range slots {
		out[i] = models.ScheduleSlot{
			Day:       models.Weekday(s.Day),
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Room:      s.Room,
		}
	}
	return out
}

// FromScheduleSlots converts model slots to wire slots.
func FromScheduleSlots(slots []models.ScheduleSlot) []ScheduleSlotDTO {
	out := make([]ScheduleSlotDTO, len(slots))
	for i, s := range slots {
		out[i] = ScheduleSlotDTO{
			Day:       string(s.Day),
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Room:      s.Room,
		}
	}
	return out
}

// NewCourseResponse maps a course model to its public view.
func NewCourseResponse(course *models.Course) CourseResponse {
	prerequisites := course.Prerequisites
	if prerequisites == nil {
		prerequisites = []string{}
	}
	return CourseResponse{
		ID:             course.ID,
		Code:           course.Code,
		Name:           course.Name,
		Description:    course.Description,
		Department:     course.Department,
		Credits:        course.Credits,
		Instructor:     course.Instructor,
		Prerequisites:  prerequisites,
		Schedule:       FromScheduleSlots(course.Schedule),
		TotalSeats:     course.TotalSeats,
		AvailableSeats: course.AvailableSeats,
		WaitlistLength: len(course.Waitlist),
		CreatedAt:      course.CreatedAt,
		UpdatedAt:      course.UpdatedAt,
	}
}

// NewCourseListResponse maps a slice of courses to their public views.
func NewCourseListResponse(courses []*models.Course) []CourseResponse {
	out := make([]CourseResponse, len(courses))
	for i, course := range courses {
		out[i] = NewCourseResponse(course)
	}
	return out
}
