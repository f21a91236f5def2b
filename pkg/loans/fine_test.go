package loans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysLate(t *testing.T) {
	t.Parallel()

	date := func(y int, m time.Month, d, h int) time.Time {
		return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name       string
		dueAt      time.Time
		returnedAt time.Time
		want       int
	}{
		{
			name:       "returned early",
			dueAt:      date(2024, time.June, 15, 0),
			returnedAt: date(2024, time.June, 10, 0),
			want:       0,
		},
		{
			name:       "returned exactly on time",
			dueAt:      date(2024, time.June, 15, 0),
			returnedAt: date(2024, time.June, 15, 0),
			want:       0,
		},
		{
			name:       "late by hours on the due date",
			dueAt:      date(2024, time.June, 15, 9),
			returnedAt: date(2024, time.June, 15, 23),
			want:       0,
		},
		{
			name:       "one day late",
			dueAt:      date(2024, time.June, 15, 0),
			returnedAt: date(2024, time.June, 16, 0),
			want:       1,
		},
		{
			name:       "five days late",
			dueAt:      date(2024, time.June, 15, 0),
			returnedAt: date(2024, time.June, 20, 0),
			want:       5,
		},
		{
			name:       "partial final day truncated",
			dueAt:      date(2024, time.June, 15, 17),
			returnedAt: date(2024, time.June, 20, 9),
			want:       5,
		},
		{
			name:       "spans a year boundary",
			dueAt:      date(2024, time.June, 15, 0),
			returnedAt: date(2025, time.June, 20, 0),
			want:       370,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DaysLate(tt.dueAt, tt.returnedAt))
		})
	}
}

func TestCalculateFine(t *testing.T) {
	t.Parallel()

	dueAt := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	t.Run("on time owes nothing", func(t *testing.T) {
		t.Parallel()
		assert.EqualValues(t, 0, CalculateFine(dueAt, dueAt, 10))
	})

	t.Run("five days at the default rate", func(t *testing.T) {
		t.Parallel()
		returnedAt := dueAt.AddDate(0, 0, 5)
		assert.EqualValues(t, 50, CalculateFine(dueAt, returnedAt, 10))
	})

	t.Run("rate is configurable", func(t *testing.T) {
		t.Parallel()
		returnedAt := dueAt.AddDate(0, 0, 3)
		assert.EqualValues(t, 75, CalculateFine(dueAt, returnedAt, 25))
	})

	t.Run("year spanning lateness", func(t *testing.T) {
		t.Parallel()
		returnedAt := dueAt.AddDate(1, 0, 5)
		assert.EqualValues(t, 3700, CalculateFine(dueAt, returnedAt, 10))
	})
}
