package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"roomdesk/internal/service"
)

// BuildingHandler serves building administration.
type BuildingHandler struct {
	buildings *service.BuildingService
}

// NewBuildingHandler constructs a BuildingHandler.
func NewBuildingHandler(buildings *service.BuildingService) *BuildingHandler {
	return &BuildingHandler{buildings: buildings}
}

type buildingBody struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	State       *string `json:"state"`
}

// Create handles POST /v1/buildings.
func (h *BuildingHandler) Create(c echo.Context) error {
	var body buildingBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	building, err := h.buildings.CreateBuilding(c.Request().Context(), service.BuildingCreateRequest{
		Name:        body.Name,
		Description: body.Description,
		Address:     body.Address,
		State:       body.State,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, building)
}

// Get handles GET /v1/buildings/:id.
func (h *BuildingHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	building, err := h.buildings.FindBuildingByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, building)
}

// List handles GET /v1/buildings.
func (h *BuildingHandler) List(c echo.Context) error {
	items, err := h.buildings.AllBuildings(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Update handles PUT /v1/buildings/:id.
func (h *BuildingHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body buildingBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	building, err := h.buildings.UpdateBuilding(c.Request().Context(), id, service.BuildingCreateRequest{
		Name:        body.Name,
		Description: body.Description,
		Address:     body.Address,
		State:       body.State,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, building)
}

// Delete handles DELETE /v1/buildings/:id.
func (h *BuildingHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.buildings.DeleteBuilding(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
