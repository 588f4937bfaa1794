package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"roomdesk/internal/model"
	"roomdesk/internal/repository"
)

// BuildingCreateRequest carries the administration input for creating or
// updating a building.
type BuildingCreateRequest struct {
	Name        string
	Description *string
	Address     *string
	State       *string
}

// BuildingService covers building administration.
type BuildingService struct {
	buildings *repository.BuildingRepo
	rooms     *repository.RoomRepo
	log       *logrus.Entry
}

// NewBuildingService constructs a BuildingService over the given repositories.
func NewBuildingService(buildings *repository.BuildingRepo, rooms *repository.RoomRepo, log *logrus.Logger) *BuildingService {
	return &BuildingService{
		buildings: buildings,
		rooms:     rooms,
		log:       log.WithField("component", "building-service"),
	}
}

// CreateBuilding validates and persists a new building.
func (s *BuildingService) CreateBuilding(ctx context.Context, req BuildingCreateRequest) (*model.Building, error) {
	name := strings.ToLower(req.Name)
	if exists, err := s.buildings.ExistsByName(ctx, name); err != nil {
		return nil, err
	} else if exists {
		return nil, NewProblem(KindDuplicateName, "Building with name %s already exists", name)
	}

	building := &model.Building{
		ID:          model.NewID(),
		Name:        name,
		Description: req.Description,
		Address:     req.Address,
		State:       req.State,
	}
	if err := s.buildings.Create(ctx, building); err != nil {
		return nil, err
	}
	return building, nil
}

// FindBuildingByID returns a building by id.
func (s *BuildingService) FindBuildingByID(ctx context.Context, id uuid.UUID) (*model.Building, error) {
	building, err := s.buildings.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBuildingNotFound) {
			return nil, NewProblem(KindBuildingNotFound, "Building with ID %s does not exist", id)
		}
		return nil, err
	}
	return building, nil
}

// AllBuildings returns every known building.
func (s *BuildingService) AllBuildings(ctx context.Context) ([]model.Building, error) {
	return s.buildings.All(ctx)
}

// UpdateBuilding rewrites the fields of an existing building.
func (s *BuildingService) UpdateBuilding(ctx context.Context, id uuid.UUID, req BuildingCreateRequest) (*model.Building, error) {
	building, err := s.FindBuildingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.ToLower(req.Name)
	if building.Name != name {
		if exists, err := s.buildings.ExistsByName(ctx, name); err != nil {
			return nil, err
		} else if exists {
			return nil, NewProblem(KindDuplicateName, "Building with name %s already exists", name)
		}
	}

	building.Name = name
	building.Description = req.Description
	building.Address = req.Address
	building.State = req.State
	if err := s.buildings.Update(ctx, building); err != nil {
		return nil, err
	}
	return building, nil
}

// DeleteBuilding removes an empty building. A building that still contains
// rooms is protected; rooms must be deleted or moved first.
func (s *BuildingService) DeleteBuilding(ctx context.Context, id uuid.UUID) error {
	building, err := s.FindBuildingByID(ctx, id)
	if err != nil {
		return err
	}
	rooms, err := s.rooms.ByBuilding(ctx, id)
	if err != nil {
		return err
	}
	if len(rooms) > 0 {
		return NewProblem(KindBuildingNotEmpty,
			"Building with name %s still contains rooms and cannot be deleted", building.Name)
	}
	return s.buildings.Delete(ctx, id)
}
