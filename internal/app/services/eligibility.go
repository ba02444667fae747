package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/campushub/registrar/internal/app/models"
)

// EligibilityResult reports why a student may not register for a course.
// A zero ConflictingCourse together with PrerequisitesMet means eligible.
type EligibilityResult struct {
	PrerequisitesMet     bool
	MissingPrerequisites []string
	// ConflictingCourse is the code of a currently registered course whose
	// schedule overlaps the candidate. Empty when there is no conflict.
	ConflictingCourse string
}

// Eligible reports whether the student passed both checks.
func (r EligibilityResult) Eligible() bool {
	return r.PrerequisitesMet && r.ConflictingCourse == ""
}

// CheckEligibility validates that the student completed every prerequisite of
// the course and that the course schedule does not overlap any of the
// student's active registrations. It is a pure function: no side effects, safe
// to call concurrently.
func CheckEligibility(completedCourses []string, course *models.Course, activeRegistrations []*models.Registration) EligibilityResult {
	result := EligibilityResult{
		MissingPrerequisites: MissingPrerequisites(completedCourses, course.Prerequisites),
	}
	result.PrerequisitesMet = len(result.MissingPrerequisites) == 0

	if code, conflict := FindScheduleConflict(course.Schedule, activeRegistrations); conflict {
		result.ConflictingCourse = code
	}

	return result
}

// MissingPrerequisites returns the prerequisites absent from the completed
// set, in prerequisite order. An empty prerequisite list is vacuously
// satisfied.
func MissingPrerequisites(completedCourses, prerequisites []string) []string {
	completed := make(map[string]struct{}, len(completedCourses))
	for _, code := range completedCourses {
		completed[code] = struct{}{}
	}

	var missing []string
	for _, code := range prerequisites {
		if _, ok := completed[code]; !ok {
			missing = append(missing, code)
		}
	}
	return missing
}

// FindScheduleConflict checks the candidate schedule against every slot of
// every registered course and returns the code of the first conflicting
// course found.
func FindScheduleConflict(schedule []models.ScheduleSlot, registrations []*models.Registration) (string, bool) {
	for _, registration := range registrations {
		for _, existing := range registration.Course.Schedule {
			for _, candidate := range schedule {
				if SlotsConflict(candidate, existing) {
					return registration.Course.Code, true
				}
			}
		}
	}
	return "", false
}

// SlotsConflict reports whether two slots share a day and their [start, end)
// minute intervals intersect. Slots that merely touch (one ends exactly when
// the other starts) do not conflict.
func SlotsConflict(a, b models.ScheduleSlot) bool {
	if a.Day != b.Day {
		return false
	}

	aStart, err := ClockToMinutes(a.StartTime)
	if err != nil {
		return false
	}
	aEnd, err := ClockToMinutes(a.EndTime)
	if err != nil {
		return false
	}
	bStart, err := ClockToMinutes(b.StartTime)
	if err != nil {
		return false
	}
	bEnd, err := ClockToMinutes(b.EndTime)
	if err != nil {
		return false
	}

	return aStart < bEnd && aEnd > bStart
}

// ClockToMinutes parses an "HH:MM" wall-clock string into minutes since
// midnight.
func ClockToMinutes(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", clock)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in time %q", clock)
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in time %q", clock)
	}

	return hours*60 + minutes, nil
}

// ValidateScheduleSlot checks a slot on course creation: known weekday,
// parseable times, end strictly after start on the same day.
func ValidateScheduleSlot(slot models.ScheduleSlot) error {
	if !models.ValidWeekday(slot.Day) {
		return fmt.Errorf("invalid day %q", slot.Day)
	}

	start, err := ClockToMinutes(slot.StartTime)
	if err != nil {
		return err
	}

	end, err := ClockToMinutes(slot.EndTime)
	if err != nil {
		return err
	}

	if end <= start {
		return fmt.Errorf("slot end %q must be after start %q", slot.EndTime, slot.StartTime)
	}

	return nil
}
