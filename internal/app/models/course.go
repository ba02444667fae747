package models

import "time"

// ScheduleSlot is a single weekly meeting of a course. Times are "HH:MM"
// wall-clock strings; a slot never crosses midnight.
type ScheduleSlot struct {
	Day       Weekday `json:"day" db:"day"`
	StartTime string  `json:"startTime" db:"start_time"` // HH:MM
	EndTime   string  `json:"endTime" db:"end_time"`     // HH:MM
	Room      string  `json:"room" db:"room"`
}

// Course represents a course in the catalog. Seat counters are only mutated
// through the registration engine or an admin seat override, and always
// satisfy 0 <= AvailableSeats <= TotalSeats.
type Course struct {
	ID             int64          `json:"id" db:"id"`
	Code           string         `json:"courseCode" db:"code"`
	Name           string         `json:"name" db:"name"`
	Description    string         `json:"description" db:"description"`
	Department     string         `json:"department" db:"department"`
	Credits        int            `json:"credits" db:"credits"`
	Instructor     string         `json:"instructor" db:"instructor"`
	Prerequisites  []string       `json:"prerequisites" db:"prerequisites"` // course codes
	Schedule       []ScheduleSlot `json:"schedule" db:"schedule"`
	TotalSeats     int            `json:"totalSeats" db:"total_seats"`
	AvailableSeats int            `json:"availableSeats" db:"available_seats"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`

	// Waitlist holds the IDs of waitlisted students in FIFO order.
	// Populated when needed.
	Waitlist []int64 `json:"waitlist,omitempty"`
}

// HasAvailableSeats reports whether at least one seat is free.
func (c *Course) HasAvailableSeats() bool {
	return c.AvailableSeats > 0
}

// Snapshot copies the fields of the course that a registration denormalizes
// at registration time. The copy is detached from the live course record, so
// later catalog edits do not rewrite history on existing registrations.
func (c *Course) Snapshot() CourseSnapshot {
	schedule := make([]ScheduleSlot, len(c.Schedule))
	copy(schedule, c.Schedule)
	return CourseSnapshot{
		Code:     c.Code,
		Name:     c.Name,
		Credits:  c.Credits,
		Schedule: schedule,
	}
}
