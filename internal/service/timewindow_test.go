package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func defaultPolicy() BookingPolicy {
	return BookingPolicy{
		MaxSpanDays:   0,
		EarliestStart: 6 * time.Hour,
		LatestEnd:     22 * time.Hour,
	}
}

func day(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestValidateWindow(t *testing.T) {
	policy := defaultPolicy()

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		kind  Kind
	}{
		{"valid morning slot", day(10, 0), day(12, 0), ""},
		{"start equals end", day(10, 0), day(10, 0), KindZeroDuration},
		{"start after end", day(12, 0), day(10, 0), KindInvalidInterval},
		{"crosses midnight", day(21, 0), day(21, 0).Add(12 * time.Hour), KindSpanTooLong},
		{"exactly at earliest start", day(6, 0), day(8, 0), ""},
		{"one minute before earliest start", day(5, 59), day(8, 0), KindTooEarly},
		{"exactly at latest end", day(20, 0), day(22, 0), ""},
		{"one minute past latest end", day(20, 0), day(22, 1), KindTooLate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.ValidateWindow(tc.start, tc.end)
			if tc.kind == "" {
				require.NoError(t, err)
				return
			}
			p, ok := AsProblem(err)
			require.True(t, ok, "expected a classified problem, got %v", err)
			require.Equal(t, tc.kind, p.Kind)
		})
	}
}

func TestValidateWindowNormalizesOffsets(t *testing.T) {
	policy := defaultPolicy()

	// 08:00+02:00 is 06:00 UTC, right on the earliest-start boundary.
	zone := time.FixedZone("CEST", 2*3600)
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, zone)
	end := time.Date(2026, 3, 10, 10, 0, 0, 0, zone)
	require.NoError(t, policy.ValidateWindow(start, end))

	// 07:00+02:00 is 05:00 UTC, one hour too early.
	early := time.Date(2026, 3, 10, 7, 0, 0, 0, zone)
	err := policy.ValidateWindow(early, end)
	p, ok := AsProblem(err)
	require.True(t, ok)
	require.Equal(t, KindTooEarly, p.Kind)
}

func TestValidateWindowMultiDayPolicy(t *testing.T) {
	policy := defaultPolicy()
	policy.MaxSpanDays = 1

	start := day(10, 0)
	require.NoError(t, policy.ValidateWindow(start, start.AddDate(0, 0, 1)))

	err := policy.ValidateWindow(start, start.AddDate(0, 0, 2))
	p, ok := AsProblem(err)
	require.True(t, ok)
	require.Equal(t, KindSpanTooLong, p.Kind)
}
