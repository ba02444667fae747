package services

import (
	"context"
	"sync"
	"time"

	"github.com/campushub/registrar/internal/app/models"
	"github.com/campushub/registrar/internal/app/repositories"
)

// memCourseStore is a mutex-guarded in-memory CourseStore. Seat mutations
// hold the lock for the whole read-modify-write, matching the atomicity the
// real store provides with conditional updates and row locks.
type memCourseStore struct {
	mu        sync.Mutex
	courses   map[int64]*models.Course
	waitlists map[int64][]int64
	nextID    int64
}

func newMemCourseStore() *memCourseStore {
	return &memCourseStore{
		courses:   make(map[int64]*models.Course),
		waitlists: make(map[int64][]int64),
		nextID:    1,
	}
}

func (m *memCourseStore) Create(ctx context.Context, course *models.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.courses {
		if existing.Code == course.Code {
			return repositories.ErrCourseCodeTaken
		}
	}
	course.ID = m.nextID
	m.nextID++
	course.CreatedAt = time.Now()
	course.UpdatedAt = course.CreatedAt
	clone := *course
	m.courses[course.ID] = &clone
	return nil
}

func (m *memCourseStore) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	course, ok := m.courses[id]
	if !ok {
		return nil, repositories.ErrCourseNotFound
	}
	clone := *course
	clone.Waitlist = append([]int64(nil), m.waitlists[id]...)
	return &clone, nil
}

func (m *memCourseStore) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, course := range m.courses {
		if course.Code == code {
			clone := *course
			clone.Waitlist = append([]int64(nil), m.waitlists[id]...)
			return &clone, nil
		}
	}
	return nil, repositories.ErrCourseNotFound
}

func (m *memCourseStore) List(ctx context.Context, filter repositories.CourseFilter) ([]*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Course
	for _, course := range m.courses {
		if filter.Department != "" && course.Department != filter.Department {
			continue
		}
		if filter.OnlyAvailable && course.AvailableSeats <= 0 {
			continue
		}
		clone := *course
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memCourseStore) Update(ctx context.Context, id int64, update repositories.CourseUpdate) (*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	course, ok := m.courses[id]
	if !ok {
		return nil, repositories.ErrCourseNotFound
	}
	if update.Name != nil {
		course.Name = *update.Name
	}
	if update.Description != nil {
		course.Description = *update.Description
	}
	if update.Department != nil {
		course.Department = *update.Department
	}
	if update.Credits != nil {
		course.Credits = *update.Credits
	}
	if update.Instructor != nil {
		course.Instructor = *update.Instructor
	}
	if update.Prerequisites != nil {
		course.Prerequisites = append([]string(nil), (*update.Prerequisites)...)
	}
	if update.Schedule != nil {
		course.Schedule = append([]models.ScheduleSlot(nil), (*update.Schedule)...)
	}
	course.UpdatedAt = time.Now()
	clone := *course
	return &clone, nil
}

func (m *memCourseStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[id]; !ok {
		return repositories.ErrCourseNotFound
	}
	delete(m.courses, id)
	delete(m.waitlists, id)
	return nil
}

func (m *memCourseStore) ReserveSeat(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	course, ok := m.courses[id]
	if !ok {
		return false, repositories.ErrCourseNotFound
	}
	if course.AvailableSeats <= 0 {
		return false, nil
	}
	course.AvailableSeats--
	return true, nil
}

func (m *memCourseStore) ReleaseSeat(ctx context.Context, id int64) (repositories.SeatRelease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	course, ok := m.courses[id]
	if !ok {
		return repositories.SeatRelease{}, repositories.ErrCourseNotFound
	}
	wasZero := course.AvailableSeats == 0
	if course.AvailableSeats < course.TotalSeats {
		course.AvailableSeats++
	}
	return repositories.SeatRelease{
		AvailableSeats:  course.AvailableSeats,
		BecameAvailable: wasZero && course.AvailableSeats > 0,
	}, nil
}

func (m *memCourseStore) SetSeats(ctx context.Context, id int64, total, available int) (*models.Course, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	course, ok := m.courses[id]
	if !ok {
		return nil, false, repositories.ErrCourseNotFound
	}
	wasZero := course.AvailableSeats == 0
	if available > total {
		available = total
	}
	if available < 0 {
		available = 0
	}
	course.TotalSeats = total
	course.AvailableSeats = available
	clone := *course
	clone.Waitlist = append([]int64(nil), m.waitlists[id]...)
	return &clone, wasZero && available > 0, nil
}

func (m *memCourseStore) JoinWaitlist(ctx context.Context, courseID, studentID int64) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[courseID]; !ok {
		return 0, false, repositories.ErrCourseNotFound
	}
	list := m.waitlists[courseID]
	for i, id := range list {
		if id == studentID {
			return i + 1, false, nil
		}
	}
	m.waitlists[courseID] = append(list, studentID)
	return len(list) + 1, true, nil
}

func (m *memCourseStore) LeaveWaitlist(ctx context.Context, courseID, studentID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[courseID]; !ok {
		return false, repositories.ErrCourseNotFound
	}
	list := m.waitlists[courseID]
	for i, id := range list {
		if id == studentID {
			m.waitlists[courseID] = append(list[:i:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memCourseStore) Waitlist(ctx context.Context, courseID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[courseID]; !ok {
		return nil, repositories.ErrCourseNotFound
	}
	return append([]int64(nil), m.waitlists[courseID]...), nil
}

// memRegistrationStore is an in-memory RegistrationStore enforcing the
// one-active-entry-per-pair rule under the lock, like the partial unique
// index does in Postgres.
type memRegistrationStore struct {
	mu      sync.Mutex
	entries map[int64]*models.Registration
	nextID  int64
}

func newMemRegistrationStore() *memRegistrationStore {
	return &memRegistrationStore{
		entries: make(map[int64]*models.Registration),
		nextID:  1,
	}
}

func (m *memRegistrationStore) Create(ctx context.Context, registration *models.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.entries {
		if existing.StudentID == registration.StudentID &&
			existing.CourseID == registration.CourseID &&
			existing.Status == models.RegistrationActive {
			return repositories.ErrDuplicateRegistration
		}
	}
	registration.ID = m.nextID
	m.nextID++
	registration.RegisteredAt = time.Now()
	clone := *registration
	m.entries[registration.ID] = &clone
	return nil
}

func (m *memRegistrationStore) GetByID(ctx context.Context, id int64) (*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	clone := *entry
	return &clone, nil
}

func (m *memRegistrationStore) GetActive(ctx context.Context, studentID, courseID int64) (*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.entries {
		if entry.StudentID == studentID && entry.CourseID == courseID && entry.Status == models.RegistrationActive {
			clone := *entry
			return &clone, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (m *memRegistrationStore) ListByStudent(ctx context.Context, studentID int64, onlyActive bool) ([]*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Registration
	for _, entry := range m.entries {
		if entry.StudentID != studentID {
			continue
		}
		if onlyActive && entry.Status != models.RegistrationActive {
			continue
		}
		clone := *entry
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memRegistrationStore) ListByCourse(ctx context.Context, courseID int64) ([]*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Registration
	for _, entry := range m.entries {
		if entry.CourseID == courseID {
			clone := *entry
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memRegistrationStore) CountActiveByCourse(ctx context.Context, courseID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, entry := range m.entries {
		if entry.CourseID == courseID && entry.Status == models.RegistrationActive {
			count++
		}
	}
	return count, nil
}

func (m *memRegistrationStore) MarkDropped(ctx context.Context, id int64) (*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok || entry.Status != models.RegistrationActive {
		return nil, repositories.ErrRegistrationNotFound
	}
	entry.Status = models.RegistrationDropped
	clone := *entry
	return &clone, nil
}

// memStudentStore is an in-memory StudentStore.
type memStudentStore struct {
	mu       sync.Mutex
	students map[int64]*models.Student
	nextID   int64
}

func newMemStudentStore() *memStudentStore {
	return &memStudentStore{
		students: make(map[int64]*models.Student),
		nextID:   1,
	}
}

func (m *memStudentStore) Create(ctx context.Context, student *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.students {
		if existing.Identifier == student.Identifier {
			return repositories.ErrIdentifierTaken
		}
	}
	student.ID = m.nextID
	m.nextID++
	clone := *student
	m.students[student.ID] = &clone
	return nil
}

func (m *memStudentStore) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	student, ok := m.students[id]
	if !ok {
		return nil, repositories.ErrStudentNotFound
	}
	clone := *student
	clone.CompletedCourses = append([]string(nil), student.CompletedCourses...)
	return &clone, nil
}

func (m *memStudentStore) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, student := range m.students {
		if student.UserID == userID {
			clone := *student
			return &clone, nil
		}
	}
	return nil, repositories.ErrStudentNotFound
}

func (m *memStudentStore) List(ctx context.Context) ([]*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Student
	for _, student := range m.students {
		clone := *student
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memStudentStore) AddCompletedCourse(ctx context.Context, studentID int64, courseCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	student, ok := m.students[studentID]
	if !ok {
		return repositories.ErrStudentNotFound
	}
	for _, code := range student.CompletedCourses {
		if code == courseCode {
			return nil
		}
	}
	student.CompletedCourses = append(student.CompletedCourses, courseCode)
	return nil
}

// memUserStore is an in-memory UserStore.
type memUserStore struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	nextID int64
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		users:  make(map[int64]*models.User),
		nextID: 1,
	}
}

func (m *memUserStore) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repositories.ErrEmailTaken
		}
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *memUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (m *memUserStore) UpdateLastLogin(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.LastLoginAt = time.Now()
	return nil
}

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	mu            sync.Mutex
	seatAvailable []SeatAvailableEvent
	courseUpdated []CourseUpdatedEvent
}

func (p *capturingPublisher) PublishSeatAvailable(event SeatAvailableEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seatAvailable = append(p.seatAvailable, event)
}

func (p *capturingPublisher) PublishCourseUpdated(event CourseUpdatedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.courseUpdated = append(p.courseUpdated, event)
}

func (p *capturingPublisher) SeatAvailableEvents() []SeatAvailableEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]SeatAvailableEvent(nil), p.seatAvailable...)
}

func (p *capturingPublisher) CourseUpdatedEvents() []CourseUpdatedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]CourseUpdatedEvent(nil), p.courseUpdated...)
}

// flakyCourseStore wraps memCourseStore and fails each seat mutation with a
// transient conflict a fixed number of times before succeeding.
type flakyCourseStore struct {
	*memCourseStore
	mu              sync.Mutex
	failures        int
	releaseFailures int
	setFailures     int
}

func (f *flakyCourseStore) ReserveSeat(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return false, repositories.ErrTransientConflict
	}
	f.mu.Unlock()
	return f.memCourseStore.ReserveSeat(ctx, id)
}

func (f *flakyCourseStore) ReleaseSeat(ctx context.Context, id int64) (repositories.SeatRelease, error) {
	f.mu.Lock()
	if f.releaseFailures > 0 {
		f.releaseFailures--
		f.mu.Unlock()
		return repositories.SeatRelease{}, repositories.ErrTransientConflict
	}
	f.mu.Unlock()
	return f.memCourseStore.ReleaseSeat(ctx, id)
}

func (f *flakyCourseStore) SetSeats(ctx context.Context, id int64, total, available int) (*models.Course, bool, error) {
	f.mu.Lock()
	if f.setFailures > 0 {
		f.setFailures--
		f.mu.Unlock()
		return nil, false, repositories.ErrTransientConflict
	}
	f.mu.Unlock()
	return f.memCourseStore.SetSeats(ctx, id, total, available)
}
