package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/registrar/internal/app/models"
)

func slot(day models.Weekday, start, end string) models.ScheduleSlot {
	return models.ScheduleSlot{Day: day, StartTime: start, EndTime: end}
}

func activeReg(code string, slots ...models.ScheduleSlot) *models.Registration {
	return &models.Registration{
		Status: models.RegistrationActive,
		Course: models.CourseSnapshot{Code: code, Schedule: slots},
	}
}

func TestMissingPrerequisites(t *testing.T) {
	tests := []struct {
		name          string
		completed     []string
		prerequisites []string
		want          []string
	}{
		{
			name:          "no prerequisites",
			completed:     nil,
			prerequisites: nil,
			want:          nil,
		},
		{
			name:          "all satisfied",
			completed:     []string{"CS101", "MATH201"},
			prerequisites: []string{"CS101"},
			want:          nil,
		},
		{
			name:          "some missing",
			completed:     []string{"CS101"},
			prerequisites: []string{"CS101", "CS201", "MATH201"},
			want:          []string{"CS201", "MATH201"},
		},
		{
			name:          "nothing completed",
			completed:     nil,
			prerequisites: []string{"CS101"},
			want:          []string{"CS101"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MissingPrerequisites(tt.completed, tt.prerequisites)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlotsConflict(t *testing.T) {
	tests := []struct {
		name string
		a    models.ScheduleSlot
		b    models.ScheduleSlot
		want bool
	}{
		{
			name: "overlapping same day",
			a:    slot(models.Monday, "09:00", "10:00"),
			b:    slot(models.Monday, "09:30", "10:30"),
			want: true,
		},
		{
			name: "contained interval",
			a:    slot(models.Monday, "09:00", "12:00"),
			b:    slot(models.Monday, "10:00", "11:00"),
			want: true,
		},
		{
			name: "identical interval",
			a:    slot(models.Tuesday, "14:00", "15:30"),
			b:    slot(models.Tuesday, "14:00", "15:30"),
			want: true,
		},
		{
			name: "touching boundaries do not conflict",
			a:    slot(models.Monday, "09:00", "10:00"),
			b:    slot(models.Monday, "10:00", "11:00"),
			want: false,
		},
		{
			name: "touching boundaries reversed",
			a:    slot(models.Monday, "10:00", "11:00"),
			b:    slot(models.Monday, "09:00", "10:00"),
			want: false,
		},
		{
			name: "different days never conflict",
			a:    slot(models.Monday, "09:00", "10:00"),
			b:    slot(models.Tuesday, "09:00", "10:00"),
			want: false,
		},
		{
			name: "disjoint same day",
			a:    slot(models.Friday, "08:00", "09:00"),
			b:    slot(models.Friday, "13:00", "14:00"),
			want: false,
		},
		{
			name: "unparseable time treated as no conflict",
			a:    slot(models.Monday, "garbage", "10:00"),
			b:    slot(models.Monday, "09:00", "10:00"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SlotsConflict(tt.a, tt.b))
		})
	}
}

func TestCheckEligibility(t *testing.T) {
	course := &models.Course{
		Code:          "CS301",
		Prerequisites: []string{"CS101", "CS201"},
		Schedule:      []models.ScheduleSlot{slot(models.Monday, "09:00", "10:30")},
	}

	t.Run("eligible when prerequisites met and no overlap", func(t *testing.T) {
		result := CheckEligibility(
			[]string{"CS101", "CS201"},
			course,
			[]*models.Registration{activeReg("MATH101", slot(models.Tuesday, "09:00", "10:30"))},
		)
		assert.True(t, result.Eligible())
		assert.True(t, result.PrerequisitesMet)
		assert.Empty(t, result.ConflictingCourse)
	})

	t.Run("missing prerequisites reported", func(t *testing.T) {
		result := CheckEligibility([]string{"CS101"}, course, nil)
		assert.False(t, result.Eligible())
		assert.Equal(t, []string{"CS201"}, result.MissingPrerequisites)
	})

	t.Run("schedule conflict names the registered course", func(t *testing.T) {
		result := CheckEligibility(
			[]string{"CS101", "CS201"},
			course,
			[]*models.Registration{activeReg("PHYS101", slot(models.Monday, "10:00", "11:00"))},
		)
		assert.False(t, result.Eligible())
		assert.Equal(t, "PHYS101", result.ConflictingCourse)
	})

	t.Run("back to back slots are eligible", func(t *testing.T) {
		result := CheckEligibility(
			[]string{"CS101", "CS201"},
			course,
			[]*models.Registration{activeReg("PHYS101", slot(models.Monday, "10:30", "12:00"))},
		)
		assert.True(t, result.Eligible())
	})

	t.Run("course without schedule never conflicts", func(t *testing.T) {
		bare := &models.Course{Code: "SEM500"}
		result := CheckEligibility(nil, bare, []*models.Registration{
			activeReg("CS301", slot(models.Monday, "09:00", "10:30")),
		})
		assert.True(t, result.Eligible())
	})
}

func TestClockToMinutes(t *testing.T) {
	minutes, err := ClockToMinutes("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, minutes)

	minutes, err = ClockToMinutes("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)

	minutes, err = ClockToMinutes("23:59")
	require.NoError(t, err)
	assert.Equal(t, 1439, minutes)

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd", "12-30"} {
		_, err := ClockToMinutes(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestValidateScheduleSlot(t *testing.T) {
	assert.NoError(t, ValidateScheduleSlot(slot(models.Monday, "09:00", "10:00")))
	assert.Error(t, ValidateScheduleSlot(slot("Funday", "09:00", "10:00")))
	assert.Error(t, ValidateScheduleSlot(slot(models.Monday, "10:00", "10:00")))
	assert.Error(t, ValidateScheduleSlot(slot(models.Monday, "11:00", "10:00")))
	assert.Error(t, ValidateScheduleSlot(slot(models.Monday, "bad", "10:00")))
}
