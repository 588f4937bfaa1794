package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"roomdesk/internal/metrics"
	"roomdesk/internal/model"
	"roomdesk/internal/queue"
	"roomdesk/internal/repository"
)

// RoomLookup is the slice of the room repository the engine needs: loading
// a room resolves its characteristics, defects, parent reference and
// derived child list.
type RoomLookup interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
}

// BookingStore is the persistence boundary of the engine. The write path
// must be atomic across the booking and its full allocation set, and
// CreateWithAllocations is the final enforcement point for exclusivity: on
// a lost race it returns an error matching repository.ErrOverlapping and
// writes nothing.
type BookingStore interface {
	AllocationFinder
	CreateWithAllocations(ctx context.Context, booking *model.Booking, roomIDs []uuid.UUID) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	All(ctx context.Context) ([]model.Booking, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	ByRoomAndDate(ctx context.Context, roomID uuid.UUID, date time.Time) ([]model.Booking, error)
	ByBuildingAndDate(ctx context.Context, buildingID uuid.UUID, date time.Time) ([]model.Booking, error)
	HasCurrentOrFutureAllocation(ctx context.Context, roomID uuid.UUID, now time.Time) (bool, error)
}

// CreateBookingRequest carries the caller's intent into the engine. Instants
// may arrive with any offset; the engine normalizes to UTC before anything
// is compared or stored. Occupancy is either GroupSize or StudentGroupNames;
// the explicit size wins when both are given.
type CreateBookingRequest struct {
	RoomID            uuid.UUID
	StartTime         time.Time
	EndTime           time.Time
	LecturerIDs       []uuid.UUID
	GroupSize         int
	StudentGroupNames []string
}

// BookingService arbitrates booking requests: it runs the validation
// pipeline (window, defects, capacity), expands the target room across the
// composition hierarchy, pre-checks availability and hands the atomic
// commit to the store. The service itself is stateless; every cross-request
// guarantee lives in the store.
type BookingService struct {
	policy BookingPolicy
	rooms  RoomLookup
	store  BookingStore
	groups GroupSizer
	events *EventPublisher
	log    *logrus.Entry
}

// NewBookingService wires the engine. groups may not be nil; pass a client
// with an empty base URL when no group service is configured. events may be
// nil, which disables lifecycle event publishing.
func NewBookingService(policy BookingPolicy, rooms RoomLookup, store BookingStore, groups GroupSizer, events *EventPublisher, log *logrus.Logger) *BookingService {
	return &BookingService{
		policy: policy,
		rooms:  rooms,
		store:  store,
		groups: groups,
		events: events,
		log:    log.WithField("component", "booking-service"),
	}
}

// CreateBooking validates the request, expands the target room and commits
// the booking with one allocation per expanded room. Validation failures
// are returned before any write; an exclusivity loss at commit time
// surfaces as the same Overlap problem the pre-flight produces, only
// detected later.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*model.Booking, error) {
	if err := s.policy.ValidateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	start := req.StartTime.UTC()
	end := req.EndTime.UTC()

	room, err := s.findRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if err := CheckDefects(room); err != nil {
		return nil, err
	}
	if err := ResolveCapacity(ctx, room, req.GroupSize, req.StudentGroupNames, s.groups, s.log); err != nil {
		return nil, err
	}

	expansion := ExpansionSet(room)
	names := s.roomNames(ctx, room)

	if err := CheckAvailability(ctx, s.store, expansion, names, start, end); err != nil {
		if p, ok := AsProblem(err); ok && p.Kind == KindOverlap {
			metrics.BookingConflicts.Inc()
		}
		return nil, err
	}

	booking := &model.Booking{
		ID:                model.NewID(),
		RoomID:            room.ID,
		StartTime:         start,
		EndTime:           end,
		LecturerIDs:       req.LecturerIDs,
		StudentGroupNames: req.StudentGroupNames,
	}
	if err := s.store.CreateWithAllocations(ctx, booking, expansion); err != nil {
		var overlap *repository.OverlapError
		switch {
		case errors.As(err, &overlap):
			// Lost the commit race; same category as the pre-flight failure.
			metrics.BookingConflicts.Inc()
			return nil, NewProblem(KindOverlap,
				"Booking for room %s from %s to %s overlaps with an existing booking",
				overlap.RoomName, start.Format(time.RFC3339), end.Format(time.RFC3339))
		case errors.Is(err, repository.ErrRoomNotFound):
			return nil, NewProblem(KindRoomNotFound,
				"Room with ID %s does not exist", req.RoomID)
		default:
			return nil, err
		}
	}

	metrics.BookingsCreated.Inc()
	s.log.WithFields(logrus.Fields{
		"booking": booking.ID,
		"room":    room.Name,
		"rooms":   len(expansion),
	}).Info("booking created")

	if s.events != nil {
		s.events.BookingCreated(queue.BookingCreatedEvent{
			BookingID:         booking.ID.String(),
			RoomID:            room.ID.String(),
			RoomName:          room.Name,
			BuildingID:        room.BuildingID.String(),
			AllocatedRoomIDs:  uuidStrings(expansion),
			StartTime:         start.Format(time.RFC3339),
			EndTime:           end.Format(time.RFC3339),
			LecturerIDs:       uuidStrings(booking.LecturerIDs),
			StudentGroupNames: booking.StudentGroupNames,
			CreatedAt:         time.Now().UTC().Format(time.RFC3339),
		})
	}
	return booking, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// CancelBooking destroys a booking and every allocation it created, in one
// transaction. Composition state is not re-validated: cancellation must
// succeed even when rooms of the original expansion set were deleted or
// detached since.
func (s *BookingService) CancelBooking(ctx context.Context, id uuid.UUID) error {
	booking, err := s.store.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return NewProblem(KindBookingNotFound, "Booking with ID %s does not exist", id)
		}
		return err
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return NewProblem(KindBookingNotFound, "Booking with ID %s does not exist", id)
		}
		return err
	}
	metrics.BookingsCancelled.Inc()
	s.log.WithField("booking", id).Info("booking cancelled")

	if s.events != nil {
		s.events.BookingCancelled(queue.BookingCancelledEvent{
			BookingID:   booking.ID.String(),
			RoomID:      booking.RoomID.String(),
			CancelledAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return nil
}

// FindBooking returns a booking by id.
func (s *BookingService) FindBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.store.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, NewProblem(KindBookingNotFound, "Booking with ID %s does not exist", id)
		}
		return nil, err
	}
	return booking, nil
}

// AllBookings returns every known booking.
func (s *BookingService) AllBookings(ctx context.Context) ([]model.Booking, error) {
	return s.store.All(ctx)
}

// BookingsByRoomAndDate lists the bookings of a room intersecting the given
// UTC calendar day.
func (s *BookingService) BookingsByRoomAndDate(ctx context.Context, roomID uuid.UUID, date time.Time) ([]model.Booking, error) {
	if _, err := s.findRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.store.ByRoomAndDate(ctx, roomID, date)
}

// BookingsByBuildingAndDate lists the bookings across a building
// intersecting the given UTC calendar day. Building existence is the
// building service's concern; an unknown id simply yields no rows here.
func (s *BookingService) BookingsByBuildingAndDate(ctx context.Context, buildingID uuid.UUID, date time.Time) ([]model.Booking, error) {
	return s.store.ByBuildingAndDate(ctx, buildingID, date)
}

func (s *BookingService) findRoom(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	room, err := s.rooms.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, NewProblem(KindRoomNotFound, "Room with ID %s does not exist", id)
		}
		return nil, err
	}
	return room, nil
}

// roomNames maps every id of the expansion set to a display name for the
// pre-flight overlap message. The parent is loaded on demand; a lookup
// failure only costs message quality, so it is swallowed.
func (s *BookingService) roomNames(ctx context.Context, room *model.Room) map[uuid.UUID]string {
	names := map[uuid.UUID]string{room.ID: room.Name}
	for _, child := range room.ComposedOf {
		names[child.ID] = child.Name
	}
	if room.ParentID != nil {
		if parent, err := s.rooms.ByID(ctx, *room.ParentID); err == nil {
			names[parent.ID] = parent.Name
		}
	}
	return names
}
