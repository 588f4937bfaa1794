package service

import (
	"time"
)

// BookingPolicy holds the configured limits a requested interval must
// satisfy. All values come from deployment configuration, never from code.
type BookingPolicy struct {
	// MaxSpanDays is the maximum number of calendar-day boundaries a
	// booking may cross. 0 means a booking must start and end on the same
	// UTC day.
	MaxSpanDays int
	// EarliestStart is the earliest allowed start, as an offset from
	// midnight UTC.
	EarliestStart time.Duration
	// LatestEnd is the latest allowed end, as an offset from midnight UTC.
	LatestEnd time.Duration
}

// ValidateWindow checks a requested [start, end) interval against the
// policy. Pure: no side effects, no clock access. Both instants are
// evaluated in UTC regardless of the caller's offset.
//
// Equality is checked before ordering so that start == end reports
// ZeroDuration, not InvalidInterval; the two reasons are distinguished in
// responses.
func (p BookingPolicy) ValidateWindow(start, end time.Time) error {
	start = start.UTC()
	end = end.UTC()

	if start.Equal(end) {
		return NewProblem(KindZeroDuration, "Cannot book a room without a duration")
	}
	if start.After(end) {
		return NewProblem(KindInvalidInterval, "Start time must be before end time")
	}
	if days := calendarDaysBetween(start, end); days > p.MaxSpanDays {
		return NewProblem(KindSpanTooLong,
			"Cannot book a room for more than %d day(s)", p.MaxSpanDays+1)
	}
	if timeOfDay(start) < p.EarliestStart {
		return NewProblem(KindTooEarly,
			"Cannot book a room before %s", clockString(p.EarliestStart))
	}
	if timeOfDay(end) > p.LatestEnd {
		return NewProblem(KindTooLate,
			"Cannot book a room after %s", clockString(p.LatestEnd))
	}
	return nil
}

// calendarDaysBetween counts the whole-day boundaries between the UTC dates
// of the two instants: same day -> 0, overnight -> 1, and so on.
func calendarDaysBetween(start, end time.Time) int {
	sd := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	ed := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(ed.Sub(sd) / (24 * time.Hour))
}

// timeOfDay returns the offset from midnight UTC of the given instant.
func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

func clockString(d time.Duration) string {
	return time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format("15:04")
}
