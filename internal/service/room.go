package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"roomdesk/internal/model"
	"roomdesk/internal/repository"
)

// RoomCreateRequest carries the administration input for creating or
// updating a room. Names are case-normalized before storage.
type RoomCreateRequest struct {
	Name            string
	BuildingID      uuid.UUID
	Characteristics model.Characteristics
	Defects         []string
}

// RoomService covers room administration. It lives outside the allocation
// engine proper, but it protects the same structural invariants the engine
// expands over, so the composition guard runs here on every mutation.
type RoomService struct {
	rooms     *repository.RoomRepo
	buildings *repository.BuildingRepo
	bookings  *repository.BookingRepo
	log       *logrus.Entry
}

// NewRoomService constructs a RoomService over the given repositories.
func NewRoomService(rooms *repository.RoomRepo, buildings *repository.BuildingRepo, bookings *repository.BookingRepo, log *logrus.Logger) *RoomService {
	return &RoomService{
		rooms:     rooms,
		buildings: buildings,
		bookings:  bookings,
		log:       log.WithField("component", "room-service"),
	}
}

// CreateRoom validates and persists a new room. Every room must declare a
// seat capacity; a request without one is rejected up front so the
// capacity resolver never meets an unconfigured room through this path.
func (s *RoomService) CreateRoom(ctx context.Context, req RoomCreateRequest) (*model.Room, error) {
	name := strings.ToLower(req.Name)
	if err := s.requireSeats(req.Characteristics); err != nil {
		return nil, err
	}
	if exists, err := s.rooms.ExistsByName(ctx, name); err != nil {
		return nil, err
	} else if exists {
		return nil, NewProblem(KindDuplicateName, "Room with name %s already exists", name)
	}
	if _, err := s.buildings.ByID(ctx, req.BuildingID); err != nil {
		if errors.Is(err, repository.ErrBuildingNotFound) {
			return nil, NewProblem(KindBuildingNotFound, "Building with ID %s does not exist", req.BuildingID)
		}
		return nil, err
	}

	room := &model.Room{
		ID:              model.NewID(),
		Name:            name,
		BuildingID:      req.BuildingID,
		Characteristics: req.Characteristics,
		Defects:         req.Defects,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// FindRoomByID returns a room with its derived child list.
func (s *RoomService) FindRoomByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	room, err := s.rooms.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, NewProblem(KindRoomNotFound, "Room with ID %s does not exist", id)
		}
		return nil, err
	}
	return room, nil
}

// AllRooms returns every known room.
func (s *RoomService) AllRooms(ctx context.Context) ([]model.Room, error) {
	return s.rooms.All(ctx)
}

// RoomsByBuilding returns the rooms of one building.
func (s *RoomService) RoomsByBuilding(ctx context.Context, buildingID uuid.UUID) ([]model.Room, error) {
	return s.rooms.ByBuilding(ctx, buildingID)
}

// UpdateRoom rewrites name, building and traits of an existing room.
func (s *RoomService) UpdateRoom(ctx context.Context, id uuid.UUID, req RoomCreateRequest) (*model.Room, error) {
	room, err := s.FindRoomByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.ToLower(req.Name)
	if err := s.requireSeats(req.Characteristics); err != nil {
		return nil, err
	}
	if room.Name != name {
		if exists, err := s.rooms.ExistsByName(ctx, name); err != nil {
			return nil, err
		} else if exists {
			return nil, NewProblem(KindDuplicateName, "Room with name %s already exists", name)
		}
	}
	if _, err := s.buildings.ByID(ctx, req.BuildingID); err != nil {
		if errors.Is(err, repository.ErrBuildingNotFound) {
			return nil, NewProblem(KindBuildingNotFound, "Building with ID %s does not exist", req.BuildingID)
		}
		return nil, err
	}

	room.Name = name
	room.BuildingID = req.BuildingID
	room.Characteristics = req.Characteristics
	room.Defects = req.Defects
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// AssignChildren turns a room into a composite of the given children. The
// structural guard runs against freshly loaded children; the repository
// re-asserts the single-parent rule inside its transaction in case of a
// concurrent edit.
func (s *RoomService) AssignChildren(ctx context.Context, parentID uuid.UUID, childIDs []uuid.UUID) (*model.Room, error) {
	parent, err := s.FindRoomByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.ParentID != nil {
		return nil, NewProblem(KindBadComposition,
			"Room %s is part of a composite and cannot have children", parent.Name)
	}

	children := make([]*model.Room, 0, len(childIDs))
	for _, id := range childIDs {
		child, err := s.FindRoomByID(ctx, id)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if err := ValidateComposition(parent, children); err != nil {
		return nil, err
	}

	if err := s.rooms.AssignChildren(ctx, parentID, childIDs); err != nil {
		var comp *repository.CompositionError
		if errors.As(err, &comp) {
			return nil, NewProblem(KindBadComposition,
				"Room %s was attached to another composite concurrently", comp.ChildID)
		}
		return nil, err
	}
	return s.FindRoomByID(ctx, parentID)
}

// DeletableRoom reports whether the room can be removed: true iff no
// current-or-future allocation references it, directly or through
// composition.
func (s *RoomService) DeletableRoom(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := s.FindRoomByID(ctx, id); err != nil {
		return false, err
	}
	booked, err := s.bookings.HasCurrentOrFutureAllocation(ctx, id, time.Now().UTC())
	if err != nil {
		return false, err
	}
	return !booked, nil
}

// DeleteRoom removes a room. Without force, a room that still has a
// current-or-future allocation is protected. With force, every booking
// referencing the room is destroyed first. Children of a deleted composite
// are detached, never deleted.
func (s *RoomService) DeleteRoom(ctx context.Context, id uuid.UUID, force bool) error {
	room, err := s.FindRoomByID(ctx, id)
	if err != nil {
		return err
	}

	if force {
		removed, err := s.bookings.DeleteAllByRoom(ctx, id)
		if err != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{"room": room.Name, "bookings": removed}).
			Debug("force deletion removed bookings")
		return s.rooms.Delete(ctx, id)
	}

	booked, err := s.bookings.HasCurrentOrFutureAllocation(ctx, id, time.Now().UTC())
	if err != nil {
		return err
	}
	if booked {
		return NewProblem(KindRoomBooked,
			"Room with name %s is booked and cannot be deleted", room.Name)
	}
	return s.rooms.Delete(ctx, id)
}

// FindAvailableRooms returns the rooms free in [start, end) whose
// characteristics satisfy every predicate. Interval sanity reuses the
// ordering rules of the window validator; policy limits do not apply to an
// inquiry.
func (s *RoomService) FindAvailableRooms(ctx context.Context, start, end time.Time, predicates []model.Predicate) ([]model.Room, error) {
	if !start.Before(end) {
		return nil, NewProblem(KindInvalidInterval, "Start time must be before end time")
	}
	free, err := s.rooms.FreeBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	result := make([]model.Room, 0, len(free))
	for _, room := range free {
		matchesAll := true
		for _, p := range predicates {
			ok, err := p.Matches(room.Characteristics)
			if err != nil {
				return nil, NewProblem(KindBadPredicate, "%s", err.Error())
			}
			if !ok {
				matchesAll = false
				break
			}
		}
		if matchesAll {
			result = append(result, room)
		}
	}
	return result, nil
}

func (s *RoomService) requireSeats(cs model.Characteristics) error {
	if _, ok := cs.IntValue(model.CharacteristicSeats); !ok {
		return NewProblem(KindSeatsRequired, "Room without seats shouldn't exist")
	}
	return nil
}
