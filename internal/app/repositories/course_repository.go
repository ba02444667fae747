package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/campushub/registrar/internal/app/models"
	"github.com/campushub/registrar/internal/db"
	"github.com/campushub/registrar/internal/pkg/dberrors"
)

// CourseRepository handles database operations for the course catalog,
// seat counters and waitlists.
type CourseRepository struct {
	db *db.PostgresDB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(database *db.PostgresDB) *CourseRepository {
	return &CourseRepository{
		db: database,
	}
}

const courseColumns = `id, code, name, description, department, credits, instructor,
	prerequisites, schedule, total_seats, available_seats, created_at, updated_at`

// scanCourse scans one course row, decoding the schedule JSON column.
func scanCourse(row pgx.Row) (*models.Course, error) {
	var course models.Course
	var scheduleJSON []byte

	err := row.Scan(
		&course.ID,
		&course.Code,
		&course.Name,
		&course.Description,
		&course.Department,
		&course.Credits,
		&course.Instructor,
		&course.Prerequisites,
		&scheduleJSON,
		&course.TotalSeats,
		&course.AvailableSeats,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(scheduleJSON) > 0 {
		if err := json.Unmarshal(scheduleJSON, &course.Schedule); err != nil {
			return nil, fmt.Errorf("error decoding course schedule: %w", err)
		}
	}

	return &course, nil
}

// Create creates a new course
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	scheduleJSON, err := json.Marshal(course.Schedule)
	if err != nil {
		return fmt.Errorf("error encoding course schedule: %w", err)
	}

	if course.Prerequisites == nil {
		course.Prerequisites = []string{}
	}

	query := `
		INSERT INTO courses (code, name, description, department, credits, instructor,
			prerequisites, schedule, total_seats, available_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err = r.db.Pool.QueryRow(ctx, query,
		course.Code,
		course.Name,
		course.Description,
		course.Department,
		course.Credits,
		course.Instructor,
		course.Prerequisites,
		scheduleJSON,
		course.TotalSeats,
		course.AvailableSeats,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "courses_code_key") {
			return ErrCourseCodeTaken
		}
		return fmt.Errorf("error creating course: %w", err)
	}

	return nil
}

// GetByID retrieves a course by ID, including its waitlist in FIFO order.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	course, err := scanCourse(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	course.Waitlist, err = r.Waitlist(ctx, id)
	if err != nil {
		return nil, err
	}

	return course, nil
}

// GetByCode retrieves a course by its unique course code
func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE code = $1`

	course, err := scanCourse(r.db.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course by code: %w", err)
	}

	course.Waitlist, err = r.Waitlist(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	return course, nil
}

// List retrieves courses matching the filter
func (r *CourseRepository) List(ctx context.Context, filter CourseFilter) ([]*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses`

	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		args = append(args, filter.Department)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(code ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
	}
	if filter.OnlyAvailable {
		conditions = append(conditions, "available_seats > 0")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY code"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

// Update applies the allow-listed field updates to a course.
func (r *CourseRepository) Update(ctx context.Context, id int64, update CourseUpdate) (*models.Course, error) {
	var sets []string
	var args []interface{}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		addSet("name", *update.Name)
	}
	if update.Description != nil {
		addSet("description", *update.Description)
	}
	if update.Department != nil {
		addSet("department", *update.Department)
	}
	if update.Credits != nil {
		addSet("credits", *update.Credits)
	}
	if update.Instructor != nil {
		addSet("instructor", *update.Instructor)
	}
	if update.Prerequisites != nil {
		addSet("prerequisites", *update.Prerequisites)
	}
	if update.Schedule != nil {
		scheduleJSON, err := json.Marshal(*update.Schedule)
		if err != nil {
			return nil, fmt.Errorf("error encoding course schedule: %w", err)
		}
		addSet("schedule", scheduleJSON)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE courses SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), courseColumns)

	course, err := scanCourse(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("error updating course: %w", err)
	}

	course.Waitlist, err = r.Waitlist(ctx, id)
	if err != nil {
		return nil, err
	}

	return course, nil
}

// Delete deletes a course by ID. Waitlist entries are removed by cascade;
// callers are responsible for checking the registration ledger first.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrCourseNotFound
	}

	return nil
}

// ReserveSeat atomically claims one seat. The WHERE clause is the critical
// section: two concurrent calls against a course with one remaining seat can
// never both succeed.
func (r *CourseRepository) ReserveSeat(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE courses
		SET available_seats = available_seats - 1, updated_at = now()
		WHERE id = $1 AND available_seats > 0
	`

	cmdTag, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		if dberrors.IsTransient(err) {
			return false, fmt.Errorf("%w: %v", ErrTransientConflict, err)
		}
		return false, fmt.Errorf("error reserving seat: %w", err)
	}

	return cmdTag.RowsAffected() == 1, nil
}

// ReleaseSeat returns one seat to the course under a row lock so the
// zero-to-positive transition is observed exactly once.
func (r *CourseRepository) ReleaseSeat(ctx context.Context, id int64) (SeatRelease, error) {
	var release SeatRelease

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var available, total int
		err := tx.QueryRow(ctx,
			`SELECT available_seats, total_seats FROM courses WHERE id = $1 FOR UPDATE`,
			id).Scan(&available, &total)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("error locking course row: %w", err)
		}

		newAvailable := available + 1
		if newAvailable > total {
			newAvailable = total
		}

		if _, err := tx.Exec(ctx,
			`UPDATE courses SET available_seats = $1, updated_at = now() WHERE id = $2`,
			newAvailable, id); err != nil {
			return fmt.Errorf("error releasing seat: %w", err)
		}

		release = SeatRelease{
			AvailableSeats:  newAvailable,
			BecameAvailable: available == 0 && newAvailable > 0,
		}
		return nil
	})
	if err != nil && dberrors.IsTransient(err) {
		return SeatRelease{}, fmt.Errorf("%w: %v", ErrTransientConflict, err)
	}

	return release, err
}

// SetSeats overrides the seat counters, clamping available into [0, total].
func (r *CourseRepository) SetSeats(ctx context.Context, id int64, total, available int) (*models.Course, bool, error) {
	var becameAvailable bool

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var oldAvailable int
		err := tx.QueryRow(ctx,
			`SELECT available_seats FROM courses WHERE id = $1 FOR UPDATE`,
			id).Scan(&oldAvailable)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("error locking course row: %w", err)
		}

		if available > total {
			available = total
		}
		if available < 0 {
			available = 0
		}

		if _, err := tx.Exec(ctx,
			`UPDATE courses SET total_seats = $1, available_seats = $2, updated_at = now() WHERE id = $3`,
			total, available, id); err != nil {
			return fmt.Errorf("error updating seats: %w", err)
		}

		becameAvailable = oldAvailable == 0 && available > 0
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	course, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	return course, becameAvailable, nil
}

// JoinWaitlist appends the student to the waitlist if absent. Position is
// the 1-based rank by insertion order.
func (r *CourseRepository) JoinWaitlist(ctx context.Context, courseID, studentID int64) (int, bool, error) {
	var position int
	var added bool

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `
			INSERT INTO waitlist_entries (course_id, student_id)
			VALUES ($1, $2)
			ON CONFLICT (course_id, student_id) DO NOTHING
		`, courseID, studentID)
		if err != nil {
			return fmt.Errorf("error joining waitlist: %w", err)
		}
		added = cmdTag.RowsAffected() == 1

		err = tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM waitlist_entries
			WHERE course_id = $1
			  AND id <= (SELECT id FROM waitlist_entries WHERE course_id = $1 AND student_id = $2)
		`, courseID, studentID).Scan(&position)
		if err != nil {
			return fmt.Errorf("error computing waitlist position: %w", err)
		}

		return nil
	})

	return position, added, err
}

// LeaveWaitlist removes the student from the waitlist if present
func (r *CourseRepository) LeaveWaitlist(ctx context.Context, courseID, studentID int64) (bool, error) {
	cmdTag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM waitlist_entries WHERE course_id = $1 AND student_id = $2`,
		courseID, studentID)
	if err != nil {
		return false, fmt.Errorf("error leaving waitlist: %w", err)
	}

	return cmdTag.RowsAffected() == 1, nil
}

// Waitlist returns the waitlisted student IDs in FIFO order
func (r *CourseRepository) Waitlist(ctx context.Context, courseID int64) ([]int64, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT student_id FROM waitlist_entries WHERE course_id = $1 ORDER BY id`,
		courseID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving waitlist: %w", err)
	}
	defer rows.Close()

	var studentIDs []int64
	for rows.Next() {
		var studentID int64
		if err := rows.Scan(&studentID); err != nil {
			return nil, err
		}
		studentIDs = append(studentIDs, studentID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return studentIDs, nil
}
