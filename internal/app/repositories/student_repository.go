package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campushub/registrar/internal/app/models"
	"github.com/campushub/registrar/internal/db"
	"github.com/campushub/registrar/internal/pkg/dberrors"
)

// StudentRepository handles database operations for students
type StudentRepository struct {
	db *db.PostgresDB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(database *db.PostgresDB) *StudentRepository {
	return &StudentRepository{
		db: database,
	}
}

// Create creates a new student record
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.CompletedCourses == nil {
		student.CompletedCourses = []string{}
	}

	query := `
		INSERT INTO students (user_id, identifier, completed_courses)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		student.UserID, student.Identifier, student.CompletedCourses).Scan(&student.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_identifier_key") {
			return ErrIdentifierTaken
		}
		return fmt.Errorf("error creating student: %w", err)
	}

	return nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query := `
		SELECT id, user_id, identifier, completed_courses
		FROM students
		WHERE id = $1
	`

	var student models.Student
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&student.ID,
		&student.UserID,
		&student.Identifier,
		&student.CompletedCourses,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	return &student, nil
}

// GetByUserID retrieves a student by the associated user account ID
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	query := `
		SELECT id, user_id, identifier, completed_courses
		FROM students
		WHERE user_id = $1
	`

	var student models.Student
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&student.ID,
		&student.UserID,
		&student.Identifier,
		&student.CompletedCourses,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student by user: %w", err)
	}

	return &student, nil
}

// List retrieves all students
func (r *StudentRepository) List(ctx context.Context) ([]*models.Student, error) {
	query := `
		SELECT id, user_id, identifier, completed_courses
		FROM students
		ORDER BY identifier
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		var student models.Student
		if err := rows.Scan(
			&student.ID,
			&student.UserID,
			&student.Identifier,
			&student.CompletedCourses,
		); err != nil {
			return nil, err
		}
		students = append(students, &student)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}

// AddCompletedCourse appends a course code to the student's completed set.
// The array only grows; re-adding an existing code is a no-op.
func (r *StudentRepository) AddCompletedCourse(ctx context.Context, studentID int64, courseCode string) error {
	query := `
		UPDATE students
		SET completed_courses = array_append(completed_courses, $1)
		WHERE id = $2 AND NOT ($1 = ANY(completed_courses))
	`

	if _, err := r.db.Pool.Exec(ctx, query, courseCode, studentID); err != nil {
		return fmt.Errorf("error adding completed course: %w", err)
	}

	// Distinguish a no-op append from a missing student.
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`, studentID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("error checking student existence: %w", err)
	}
	if !exists {
		return ErrStudentNotFound
	}

	return nil
}
