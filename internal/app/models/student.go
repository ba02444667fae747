package models

// Student defines the student model based on the 'students' table
type Student struct {
	ID         int64  `json:"id" db:"id"`                 // Unique identifier for the student record
	UserID     int64  `json:"userId" db:"user_id"`        // ID of the associated user account
	Identifier string `json:"identifier" db:"identifier"` // Student's roll number

	// CompletedCourses holds the codes of courses the student has passed.
	// It only ever grows and is read for prerequisite checks.
	CompletedCourses []string `json:"completedCourses" db:"completed_courses"`

	// Relations (populated when needed)
	User *User `json:"user,omitempty"`
}

// HasCompleted reports whether the student has completed the given course code.
func (s *Student) HasCompleted(courseCode string) bool {
	for _, code := range s.CompletedCourses {
		if code == courseCode {
			return true
		}
	}
	return false
}
