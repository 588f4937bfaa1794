package service

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"roomdesk/internal/model"
)

type fakeGroups struct {
	sizes map[string]int
}

func (f *fakeGroups) GroupSize(_ context.Context, name string) (int, bool) {
	n, ok := f.sizes[name]
	return n, ok
}

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log.WithField("component", "test")
}

func seatedRoom(seats int) *model.Room {
	return &model.Room{
		ID:              model.NewID(),
		Name:            "hall a",
		Characteristics: model.Characteristics{{Type: model.CharacteristicSeats, Value: seats}},
	}
}

func TestResolveCapacity(t *testing.T) {
	groups := &fakeGroups{sizes: map[string]int{"cs-101": 18, "math-2": 9}}

	cases := []struct {
		name       string
		room       *model.Room
		groupSize  int
		groupNames []string
		kind       Kind
	}{
		{"explicit size fits", seatedRoom(20), 20, nil, ""},
		{"explicit size exceeds", seatedRoom(10), 15, nil, KindCapacityExceeded},
		{"no occupancy info", seatedRoom(10), 0, nil, KindMissingOccupancy},
		{"groups fit", seatedRoom(30), 0, []string{"cs-101", "math-2"}, ""},
		{"groups exceed", seatedRoom(20), 0, []string{"cs-101", "math-2"}, KindCapacityExceeded},
		{"explicit size wins over groups", seatedRoom(10), 5, []string{"cs-101", "math-2"}, ""},
		{"room without seats", &model.Room{Name: "bare"}, 5, nil, KindMissingCapacityConfig},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ResolveCapacity(context.Background(), tc.room, tc.groupSize, tc.groupNames, groups, testLog())
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

func TestResolveCapacityUnknownGroupsCountZero(t *testing.T) {
	// Lookup failures degrade to zero occupants instead of failing the
	// booking; a room is never rejected because the group service is down.
	groups := &fakeGroups{sizes: map[string]int{"known": 8}}
	err := ResolveCapacity(context.Background(), seatedRoom(10), 0, []string{"known", "missing"}, groups, testLog())
	require.NoError(t, err)
}
