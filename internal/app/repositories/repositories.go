package repositories

import (
	"github.com/campushub/registrar/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	StudentRepository      *StudentRepository
	CourseRepository       *CourseRepository
	RegistrationRepository *RegistrationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(database),
		StudentRepository:      NewStudentRepository(database),
		CourseRepository:       NewCourseRepository(database),
		RegistrationRepository: NewRegistrationRepository(database),
	}
}
