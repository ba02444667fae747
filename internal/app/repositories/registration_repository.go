package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campushub/registrar/internal/app/models"
	"github.com/campushub/registrar/internal/db"
	"github.com/campushub/registrar/internal/pkg/dberrors"
)

// RegistrationRepository handles database operations for the registration ledger
type RegistrationRepository struct {
	db *db.PostgresDB
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(database *db.PostgresDB) *RegistrationRepository {
	return &RegistrationRepository{
		db: database,
	}
}

const registrationColumns = `id, student_id, course_id, course_code, course_name,
	credits, schedule, status, registered_at`

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var registration models.Registration
	var scheduleJSON []byte

	err := row.Scan(
		&registration.ID,
		&registration.StudentID,
		&registration.CourseID,
		&registration.Course.Code,
		&registration.Course.Name,
		&registration.Course.Credits,
		&scheduleJSON,
		&registration.Status,
		&registration.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}

	if len(scheduleJSON) > 0 {
		if err := json.Unmarshal(scheduleJSON, &registration.Course.Schedule); err != nil {
			return nil, fmt.Errorf("error decoding registration schedule: %w", err)
		}
	}

	return &registration, nil
}

// Create inserts a new ledger entry. The partial unique index on
// (student_id, course_id) for active rows is the arbiter when two
// registrations for the same pair race.
func (r *RegistrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	scheduleJSON, err := json.Marshal(registration.Course.Schedule)
	if err != nil {
		return fmt.Errorf("error encoding registration schedule: %w", err)
	}

	query := `
		INSERT INTO registrations (student_id, course_id, course_code, course_name,
			credits, schedule, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, registered_at
	`

	err = r.db.Pool.QueryRow(ctx, query,
		registration.StudentID,
		registration.CourseID,
		registration.Course.Code,
		registration.Course.Name,
		registration.Course.Credits,
		scheduleJSON,
		registration.Status,
	).Scan(&registration.ID, &registration.RegisteredAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "uq_registrations_active_pair") {
			return ErrDuplicateRegistration
		}
		return fmt.Errorf("error creating registration: %w", err)
	}

	return nil
}

// GetByID retrieves a ledger entry by ID
func (r *RegistrationRepository) GetByID(ctx context.Context, id int64) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`

	registration, err := scanRegistration(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("error retrieving registration: %w", err)
	}

	return registration, nil
}

// GetActive retrieves the active ledger entry for a (student, course) pair
func (r *RegistrationRepository) GetActive(ctx context.Context, studentID, courseID int64) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations
		WHERE student_id = $1 AND course_id = $2 AND status = 'active'`

	registration, err := scanRegistration(r.db.Pool.QueryRow(ctx, query, studentID, courseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("error retrieving active registration: %w", err)
	}

	return registration, nil
}

// ListByStudent retrieves ledger entries for a student, newest first
func (r *RegistrationRepository) ListByStudent(ctx context.Context, studentID int64, onlyActive bool) ([]*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE student_id = $1`
	if onlyActive {
		query += ` AND status = 'active'`
	}
	query += ` ORDER BY registered_at DESC`

	return r.queryRegistrations(ctx, query, studentID)
}

// ListByCourse retrieves all ledger entries referencing a course
func (r *RegistrationRepository) ListByCourse(ctx context.Context, courseID int64) ([]*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations
		WHERE course_id = $1 ORDER BY registered_at DESC`

	return r.queryRegistrations(ctx, query, courseID)
}

// CountActiveByCourse counts active registrations for a course
func (r *RegistrationRepository) CountActiveByCourse(ctx context.Context, courseID int64) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE course_id = $1 AND status = 'active'`,
		courseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting active registrations: %w", err)
	}

	return count, nil
}

// MarkDropped transitions an active registration to dropped. The status
// predicate makes concurrent drops race safely: only one caller observes the
// transition.
func (r *RegistrationRepository) MarkDropped(ctx context.Context, id int64) (*models.Registration, error) {
	query := `
		UPDATE registrations SET status = 'dropped'
		WHERE id = $1 AND status = 'active'
		RETURNING ` + registrationColumns

	registration, err := scanRegistration(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("error dropping registration: %w", err)
	}

	return registration, nil
}

func (r *RegistrationRepository) queryRegistrations(ctx context.Context, query string, args ...interface{}) ([]*models.Registration, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing registrations: %w", err)
	}
	defer rows.Close()

	var registrations []*models.Registration
	for rows.Next() {
		registration, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		registrations = append(registrations, registration)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return registrations, nil
}
