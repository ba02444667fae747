package dto

import "github.com/campushub/registrar/internal/app/models"

// StudentResponse is the public view of a student record.
type StudentResponse struct {
	ID               int64    `json:"id" example:"7"`
	UserID           int64    `json:"userId" example:"3"`
	Identifier       string   `json:"identifier" example:"2026-0042"`
	CompletedCourses []string `json:"completedCourses" example:"CS101,MATH201"`
}

// CompleteCourseRequest records a passed course on a student's history.
type CompleteCourseRequest struct {
	CourseCode string `json:"courseCode" binding:"required" example:"CS101"`
}

// NewStudentResponse maps a student model to its public view.
func NewStudentResponse(student *models.Student) StudentResponse {
	completed := student.CompletedCourses
	if completed == nil {
		completed = []string{}
	}
	return StudentResponse{
		ID:               student.ID,
		UserID:           student.UserID,
		Identifier:       student.Identifier,
		CompletedCourses: completed,
	}
}

// NewStudentListResponse maps a slice of students.
func NewStudentListResponse(students []*models.Student) []StudentResponse {
	out := make([]StudentResponse, len(students))
	for i, student := range students {
		out[i] = NewStudentResponse(student)
	}
	return out
}

// NewUserResponse maps a user model to its public view.
func NewUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RoleType:  string(user.RoleType),
	}
}
