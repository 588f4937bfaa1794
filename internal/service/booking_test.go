package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"roomdesk/internal/model"
	"roomdesk/internal/repository"
)

// memStore is an in-memory BookingStore that enforces the same exclusivity
// guarantee as the SQL implementation: the overlap re-check and the insert
// happen under one lock, so concurrent conflicting commits cannot both
// succeed.
type memStore struct {
	mu          sync.Mutex
	bookings    map[uuid.UUID]*model.Booking
	allocations []model.Allocation
	roomNames   map[uuid.UUID]string
	buildingOf  map[uuid.UUID]uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		bookings:   map[uuid.UUID]*model.Booking{},
		roomNames:  map[uuid.UUID]string{},
		buildingOf: map[uuid.UUID]uuid.UUID{},
	}
}

func (s *memStore) FindOverlapping(_ context.Context, roomIDs []uuid.UUID, start, end time.Time) ([]model.Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlapping(roomIDs, start, end), nil
}

func (s *memStore) overlapping(roomIDs []uuid.UUID, start, end time.Time) []model.Allocation {
	ids := make(map[uuid.UUID]bool, len(roomIDs))
	for _, id := range roomIDs {
		ids[id] = true
	}
	var out []model.Allocation
	for _, a := range s.allocations {
		if ids[a.RoomID] && a.Overlaps(start, end) {
			out = append(out, a)
		}
	}
	return out
}

func (s *memStore) CreateWithAllocations(_ context.Context, booking *model.Booking, roomIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conflicts := s.overlapping(roomIDs, booking.StartTime, booking.EndTime); len(conflicts) > 0 {
		return &repository.OverlapError{
			RoomID:   conflicts[0].RoomID,
			RoomName: s.roomNames[conflicts[0].RoomID],
		}
	}

	booking.CreatedAt = time.Now().UTC()
	s.bookings[booking.ID] = booking
	for _, id := range roomIDs {
		s.allocations = append(s.allocations, model.Allocation{
			BookingID: booking.ID,
			RoomID:    id,
			StartTime: booking.StartTime,
			EndTime:   booking.EndTime,
		})
	}
	return nil
}

func (s *memStore) ByID(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return b, nil
}

func (s *memStore) All(_ context.Context) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (s *memStore) DeleteByID(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return repository.ErrBookingNotFound
	}
	delete(s.bookings, id)
	kept := s.allocations[:0]
	for _, a := range s.allocations {
		if a.BookingID != id {
			kept = append(kept, a)
		}
	}
	s.allocations = kept
	return nil
}

func (s *memStore) ByRoomAndDate(_ context.Context, roomID uuid.UUID, date time.Time) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	var out []model.Booking
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.StartTime.Before(dayEnd) && b.EndTime.After(dayStart) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *memStore) ByBuildingAndDate(_ context.Context, buildingID uuid.UUID, date time.Time) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	var out []model.Booking
	for _, b := range s.bookings {
		if s.buildingOf[b.RoomID] == buildingID && b.StartTime.Before(dayEnd) && b.EndTime.After(dayStart) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *memStore) HasCurrentOrFutureAllocation(_ context.Context, roomID uuid.UUID, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.allocations {
		if a.RoomID == roomID && a.EndTime.After(now) {
			return true, nil
		}
	}
	return false, nil
}

// memRooms is a RoomLookup over a fixed set of rooms.
type memRooms struct {
	rooms map[uuid.UUID]*model.Room
}

func (m *memRooms) ByID(_ context.Context, id uuid.UUID) (*model.Room, error) {
	room, ok := m.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	return room, nil
}

type fixture struct {
	svc   *BookingService
	store *memStore
	rooms *memRooms
}

func newFixture(rooms ...*model.Room) *fixture {
	store := newMemStore()
	lookup := &memRooms{rooms: map[uuid.UUID]*model.Room{}}
	for _, r := range rooms {
		lookup.rooms[r.ID] = r
		store.roomNames[r.ID] = r.Name
		store.buildingOf[r.ID] = r.BuildingID
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := NewBookingService(defaultPolicy(), lookup, store, &fakeGroups{}, nil, log)
	return &fixture{svc: svc, store: store, rooms: lookup}
}

func TestCreateBookingSuccessThenConflict(t *testing.T) {
	room := seatedRoom(10)
	f := newFixture(room)
	ctx := context.Background()

	first, err := f.svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID:    room.ID,
		StartTime: day(10, 0),
		EndTime:   day(12, 0),
		GroupSize: 8,
	})
	require.NoError(t, err)
	require.NotNil(t, first)
	require.Equal(t, room.ID, first.RoomID)

	_, err = f.svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID:    room.ID,
		StartTime: day(11, 0),
		EndTime:   day(13, 0),
		GroupSize: 8,
	})
	p, ok := AsProblem(err)
	require.True(t, ok)
	require.Equal(t, KindOverlap, p.Kind)

	// Adjacent interval reuses the boundary instant.
	_, err = f.svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID:    room.ID,
		StartTime: day(12, 0),
		EndTime:   day(14, 0),
		GroupSize: 8,
	})
	require.NoError(t, err)
}

func TestCreateBookingValidationFailuresWriteNothing(t *testing.T) {
	room := seatedRoom(10)
	f := newFixture(room)
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateBookingRequest
		kind Kind
	}{
		{"zero duration", CreateBookingRequest{RoomID: room.ID, StartTime: day(10, 0), EndTime: day(10, 0), GroupSize: 5}, KindZeroDuration},
		{"capacity exceeded", CreateBookingRequest{RoomID: room.ID, StartTime: day(10, 0), EndTime: day(12, 0), GroupSize: 15}, KindCapacityExceeded},
		{"no occupancy", CreateBookingRequest{RoomID: room.ID, StartTime: day(10, 0), EndTime: day(12, 0)}, KindMissingOccupancy},
		{"unknown room", CreateBookingRequest{RoomID: model.NewID(), StartTime: day(10, 0), EndTime: day(12, 0), GroupSize: 5}, KindRoomNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateBooking(ctx, tc.req)
			p, ok := AsProblem(err)
			require.True(t, ok, "expected a classified problem, got %v", err)
			require.Equal(t, tc.kind, p.Kind)
		})
	}
	require.Empty(t, f.store.allocations)
}

func TestCreateBookingDefectiveRoomRejected(t *testing.T) {
	room := seatedRoom(10)
	room.Defects = []string{"water damage"}
	f := newFixture(room)

	_, err := f.svc.CreateBooking(context.Background(), CreateBookingRequest{
		RoomID:    room.ID,
		StartTime: day(10, 0),
		EndTime:   day(12, 0),
		GroupSize: 5,
	})
	p, ok := AsProblem(err)
	require.True(t, ok)
	require.Equal(t, KindRoomDefective, p.Kind)
}

func TestCreateBookingExpandsComposite(t *testing.T) {
	left := seatedRoom(10)
	left.Name = "left"
	right := seatedRoom(10)
	right.Name = "right"
	hall := seatedRoom(20)
	hall.Name = "hall"
	hall.ComposedOf = []model.Room{*left, *right}
	left.ParentID = &hall.ID
	right.ParentID = &hall.ID

	f := newFixture(hall, left, right)
	ctx := context.Background()

	// Booking the hall allocates the hall and both partitions.
	_, err := f.svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID:    hall.ID,
		StartTime: day(10, 0),
		EndTime:   day(12, 0),
		GroupSize: 15,
	})
	require.NoError(t, err)
	require.Len(t, f.store.allocations, 3)

	// The partition is blocked for the same window.
	_, err = f.svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID:    left.ID,
		StartTime: day(11, 0),
		EndTime:   day(13, 0),
		GroupSize: 5,
	})
	p, ok := AsProblem(err)
	require.True(t, ok)
	require.Equal(t, KindOverlap, p.Kind)
}

func TestCreateBookingChildBlocksParent(t *testing.T) {
	left := seatedRoom(10)
	left.Name = "left"
	hall := seatedRoom(20)
	hall.Name = "hall"
	hall.ComposedOf = []model.Room{*left}
	left.ParentID = &hall.ID

	f := newFixture(hall, left)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID:    left.ID,
		StartTime: day(10, 0),
		EndTime:   day(12, 0),
		GroupSize: 5,
	})
	require.NoError(t, err)

	_, err = f.svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID:    hall.ID,
		StartTime: day(11, 0),
		EndTime:   day(13, 0),
		GroupSize: 5,
	})
	p, ok := AsProblem(err)
	require.True(t, ok)
	require.Equal(t, KindOverlap, p.Kind)
}

func TestConcurrentBookingsOnlyOneWins(t *testing.T) {
	room := seatedRoom(10)
	f := newFixture(room)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.CreateBooking(context.Background(), CreateBookingRequest{
				RoomID:    room.ID,
				StartTime: day(10, 0),
				EndTime:   day(12, 0),
				GroupSize: 5,
			})
			errs[i] = err
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		p, ok := AsProblem(err)
		require.True(t, ok, "unexpected error: %v", err)
		require.Equal(t, KindOverlap, p.Kind)
	}
	require.Equal(t, 1, won)
	require.Len(t, f.store.allocations, 1)
}

func TestCancelBookingFreesTheWindow(t *testing.T) {
	room := seatedRoom(10)
	f := newFixture(room)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID:    room.ID,
		StartTime: day(10, 0),
		EndTime:   day(12, 0),
		GroupSize: 5,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelBooking(ctx, booking.ID))

	// Cancelling twice reports not found.
	err = f.svc.CancelBooking(ctx, booking.ID)
	p, ok := AsProblem(err)
	require.True(t, ok)
	require.Equal(t, KindBookingNotFound, p.Kind)

	// The window is available again.
	_, err = f.svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID:    room.ID,
		StartTime: day(10, 0),
		EndTime:   day(12, 0),
		GroupSize: 5,
	})
	require.NoError(t, err)
}

func TestBookingsByRoomAndDate(t *testing.T) {
	room := seatedRoom(10)
	f := newFixture(room)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID:    room.ID,
		StartTime: day(10, 0),
		EndTime:   day(12, 0),
		GroupSize: 5,
	})
	require.NoError(t, err)

	sameDay, err := f.svc.BookingsByRoomAndDate(ctx, room.ID, day(0, 0))
	require.NoError(t, err)
	require.Len(t, sameDay, 1)

	nextDay, err := f.svc.BookingsByRoomAndDate(ctx, room.ID, day(0, 0).AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Empty(t, nextDay)

	_, err = f.svc.BookingsByRoomAndDate(ctx, model.NewID(), day(0, 0))
	p, ok := AsProblem(err)
	require.True(t, ok)
	require.Equal(t, KindRoomNotFound, p.Kind)
}
