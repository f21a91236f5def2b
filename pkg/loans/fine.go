package loans

import "time"

// DaysLate returns the number of whole calendar days by which returnedAt
// exceeds dueAt. Time of day is discarded, so a return that's late by hours
// on the due date itself counts as zero days.
func DaysLate(dueAt, returnedAt time.Time) int {
	if !returnedAt.After(dueAt) {
		return 0
	}

	due := time.Date(dueAt.Year(), dueAt.Month(), dueAt.Day(), 0, 0, 0, 0, time.UTC)
	ret := time.Date(returnedAt.Year(), returnedAt.Month(), returnedAt.Day(), 0, 0, 0, 0, time.UTC)

	return int(ret.Sub(due).Hours() / 24)
}

// CalculateFine returns the fine owed for a return, dailyRate per whole
// calendar day of lateness. On-time returns owe nothing.
func CalculateFine(dueAt, returnedAt time.Time, dailyRate int64) int64 {
	return dailyRate * int64(DaysLate(dueAt, returnedAt))
}
