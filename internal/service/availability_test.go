package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"roomdesk/internal/model"
)

type fakeFinder struct {
	allocations []model.Allocation
}

func (f *fakeFinder) FindOverlapping(_ context.Context, roomIDs []uuid.UUID, start, end time.Time) ([]model.Allocation, error) {
	ids := make(map[uuid.UUID]bool, len(roomIDs))
	for _, id := range roomIDs {
		ids[id] = true
	}
	var out []model.Allocation
	for _, a := range f.allocations {
		if ids[a.RoomID] && a.Overlaps(start, end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func TestCheckAvailability(t *testing.T) {
	roomID := model.NewID()
	names := map[uuid.UUID]string{roomID: "hall a"}
	booked := model.Allocation{
		RoomID:    roomID,
		StartTime: day(10, 0),
		EndTime:   day(12, 0),
	}
	store := &fakeFinder{allocations: []model.Allocation{booked}}

	cases := []struct {
		name    string
		start   time.Time
		end     time.Time
		overlap bool
	}{
		{"disjoint before", day(8, 0), day(10, 0), false},
		{"disjoint after", day(12, 0), day(14, 0), false},
		{"overlapping tail", day(11, 0), day(13, 0), true},
		{"overlapping head", day(9, 0), day(11, 0), true},
		{"contained", day(10, 30), day(11, 30), true},
		{"covering", day(9, 0), day(13, 0), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckAvailability(context.Background(), store, []uuid.UUID{roomID}, names, tc.start, tc.end)
			if !tc.overlap {
				require.NoError(t, err)
				return
			}
			p, ok := AsProblem(err)
			require.True(t, ok)
			require.Equal(t, KindOverlap, p.Kind)
			require.Contains(t, p.Detail, "hall a")
		})
	}
}

func TestCheckAvailabilityOtherRoomDoesNotBlock(t *testing.T) {
	free := model.NewID()
	other := model.NewID()
	store := &fakeFinder{allocations: []model.Allocation{{
		RoomID:    other,
		StartTime: day(10, 0),
		EndTime:   day(12, 0),
	}}}

	err := CheckAvailability(context.Background(), store, []uuid.UUID{free}, nil, day(10, 0), day(12, 0))
	require.NoError(t, err)
}
