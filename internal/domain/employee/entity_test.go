package employee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func TestContract_Overlaps(t *testing.T) {
	closed := Contract{StartDate: day(2024, 1, 1), EndDate: dayPtr(2024, 6, 30)}
	cases := []struct {
		name  string
		other Contract
		want  bool
	}{
		{"starts the day after", Contract{StartDate: day(2024, 7, 1)}, false},
		{"starts on the last day", Contract{StartDate: day(2024, 6, 30)}, true},
		{"ends the day before", Contract{StartDate: day(2023, 1, 1), EndDate: dayPtr(2023, 12, 31)}, false},
		{"open ended from before", Contract{StartDate: day(2023, 1, 1)}, true},
		{"contained", Contract{StartDate: day(2024, 2, 1), EndDate: dayPtr(2024, 3, 1)}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, closed.Overlaps(c.other))
			assert.Equal(t, c.want, c.other.Overlaps(closed))
		})
	}

	assert.True(t, Contract{StartDate: day(2020, 1, 1)}.Overlaps(Contract{StartDate: day(2030, 1, 1)}))
}

func TestContract_ActiveDuring(t *testing.T) {
	start, end := day(2024, 3, 1), day(2024, 4, 1)

	assert.True(t, Contract{StartDate: day(2024, 3, 31)}.ActiveDuring(start, end))
	assert.False(t, Contract{StartDate: day(2024, 4, 1)}.ActiveDuring(start, end))
	assert.True(t, Contract{StartDate: day(2023, 1, 1), EndDate: dayPtr(2024, 3, 1)}.ActiveDuring(start, end))
	assert.False(t, Contract{StartDate: day(2023, 1, 1), EndDate: dayPtr(2024, 2, 29)}.ActiveDuring(start, end))
}

func TestContract_ActiveOn(t *testing.T) {
	c := Contract{StartDate: day(2024, 1, 10), EndDate: dayPtr(2024, 1, 20)}

	assert.False(t, c.ActiveOn(day(2024, 1, 9)))
	assert.True(t, c.ActiveOn(day(2024, 1, 10)))
	assert.True(t, c.ActiveOn(day(2024, 1, 20)))
	assert.False(t, c.ActiveOn(day(2024, 1, 21)))
}

func TestVacation_CanMoveTo(t *testing.T) {
	v := Vacation{Status: VacationStatusScheduled}
	assert.True(t, v.CanMoveTo(VacationStatusInProgress))
	assert.True(t, v.CanMoveTo(VacationStatusCancelled))
	assert.False(t, v.CanMoveTo(VacationStatusCompleted))

	v.Status = VacationStatusCompleted
	assert.False(t, v.CanMoveTo(VacationStatusCancelled))
}

func TestVacationDays(t *testing.T) {
	assert.Equal(t, 1, VacationDays(day(2024, 7, 1), day(2024, 7, 1)))
	assert.Equal(t, 30, VacationDays(day(2024, 7, 1), day(2024, 7, 30)))
}

func TestAcquisitionPeriod(t *testing.T) {
	admission := day(2021, 5, 10)

	start, end := AcquisitionPeriod(admission, day(2024, 3, 1))
	assert.Equal(t, day(2023, 5, 10), start)
	assert.Equal(t, day(2024, 5, 9), end)

	start, end = AcquisitionPeriod(admission, day(2024, 5, 10))
	assert.Equal(t, day(2024, 5, 10), start)
	assert.Equal(t, day(2025, 5, 9), end)

	start, _ = AcquisitionPeriod(admission, day(2021, 6, 1))
	assert.Equal(t, admission, start)
}
