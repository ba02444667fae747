package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/campushub/registrar/internal/app/models"
	"github.com/campushub/registrar/internal/app/repositories"
	"github.com/campushub/registrar/internal/db"
	"github.com/campushub/registrar/internal/pkg/auth"
)

// CreateDefaultData seeds the default admin account and a small starter
// catalog. Every insert is idempotent: existing rows are left alone.
func CreateDefaultData(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) error {
	repos := repositories.NewRepositories(database)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	if err := seedAdmin(ctx, repos, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}
	if err := seedCourses(ctx, repos, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	return finalErr
}

func seedAdmin(ctx context.Context, repos *repositories.Repositories, lgr zerolog.Logger) error {
	const adminEmail = "admin@registrar.local"

	if _, err := repos.UserRepository.GetByEmail(ctx, adminEmail); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		lgr.Error().Err(err).Msg("Error checking for default admin")
		return err
	}

	hashed, err := auth.HashPassword("change-me-on-first-login")
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:     adminEmail,
		Password:  hashed,
		FirstName: "Default",
		LastName:  "Admin",
		RoleType:  models.RoleAdmin,
		IsActive:  true,
	}

	if err := repos.UserRepository.Create(ctx, admin); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating default admin")
		return err
	}

	lgr.Info().Str("email", adminEmail).Msg("Default admin account created")
	return nil
}

func seedCourses(ctx context.Context, repos *repositories.Repositories, lgr zerolog.Logger) error {
	courses := []*models.Course{
		{
			Code:        "CS101",
			Name:        "Introduction to Computing",
			Description: "Foundations of programming and computational thinking.",
			Department:  "CS",
			Credits:     3,
			Instructor:  "Dr. Chen",
			Schedule: []models.ScheduleSlot{
				{Day: models.Monday, StartTime: "09:00", EndTime: "10:30", Room: "B-101"},
				{Day: models.Wednesday, StartTime: "09:00", EndTime: "10:30", Room: "B-101"},
			},
			TotalSeats:     60,
			AvailableSeats: 60,
		},
		{
			Code:          "CS201",
			Name:          "Data Structures",
			Description:   "Lists, trees, hash tables and their cost models.",
			Department:    "CS",
			Credits:       4,
			Instructor:    "Dr. Osei",
			Prerequisites: []string{"CS101"},
			Schedule: []models.ScheduleSlot{
				{Day: models.Tuesday, StartTime: "11:00", EndTime: "12:30", Room: "B-204"},
				{Day: models.Thursday, StartTime: "11:00", EndTime: "12:30", Room: "B-204"},
			},
			TotalSeats:     40,
			AvailableSeats: 40,
		},
		{
			Code:          "CS301",
			Name:          "Algorithms",
			Description:   "Design and analysis of algorithms.",
			Department:    "CS",
			Credits:       4,
			Instructor:    "Dr. Osei",
			Prerequisites: []string{"CS101", "CS201"},
			Schedule: []models.ScheduleSlot{
				{Day: models.Monday, StartTime: "14:00", EndTime: "15:30", Room: "A-310"},
			},
			TotalSeats:     30,
			AvailableSeats: 30,
		},
		{
			Code:        "MATH201",
			Name:        "Linear Algebra",
			Description: "Vector spaces, matrices and linear maps.",
			Department:  "MATH",
			Credits:     3,
			Instructor:  "Dr. Varga",
			Schedule: []models.ScheduleSlot{
				{Day: models.Friday, StartTime: "10:00", EndTime: "11:30", Room: "C-120"},
			},
			TotalSeats:     50,
			AvailableSeats: 50,
		},
	}

	var finalErr error
	for _, course := range courses {
		if err := repos.CourseRepository.Create(ctx, course); err != nil {
			if errors.Is(err, repositories.ErrCourseCodeTaken) {
				continue
			}
			lgr.Error().Err(err).Str("code", course.Code).Msg("Error seeding course")
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}
