package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"roomdesk/internal/model"
	"roomdesk/internal/service"
)

// RoomHandler serves room administration and the availability search.
type RoomHandler struct {
	rooms *service.RoomService
}

// NewRoomHandler constructs a RoomHandler.
func NewRoomHandler(rooms *service.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

type roomBody struct {
	Name            string                `json:"name"`
	BuildingID      uuid.UUID             `json:"building_id"`
	Characteristics model.Characteristics `json:"characteristics"`
	Defects         []string              `json:"defects"`
}

func (b roomBody) valid() (string, bool) {
	if b.Name == "" {
		return "name is required", false
	}
	if b.BuildingID == uuid.Nil {
		return "building_id is required", false
	}
	return "", true
}

// Create handles POST /v1/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	var body roomBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg, ok := body.valid(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	room, err := h.rooms.CreateRoom(c.Request().Context(), service.RoomCreateRequest{
		Name:            body.Name,
		BuildingID:      body.BuildingID,
		Characteristics: body.Characteristics,
		Defects:         body.Defects,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// Get handles GET /v1/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	room, err := h.rooms.FindRoomByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// List handles GET /v1/rooms, optionally filtered by building_id.
func (h *RoomHandler) List(c echo.Context) error {
	if param := c.QueryParam("building_id"); param != "" {
		buildingID, err := uuid.Parse(param)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid building_id"})
		}
		items, err := h.rooms.RoomsByBuilding(c.Request().Context(), buildingID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"items": items})
	}
	items, err := h.rooms.AllRooms(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Update handles PUT /v1/rooms/:id.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body roomBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg, ok := body.valid(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	room, err := h.rooms.UpdateRoom(c.Request().Context(), id, service.RoomCreateRequest{
		Name:            body.Name,
		BuildingID:      body.BuildingID,
		Characteristics: body.Characteristics,
		Defects:         body.Defects,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// AssignChildren handles PUT /v1/rooms/:id/children, replacing the child set
// of a composite room.
func (h *RoomHandler) AssignChildren(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		RoomIDs []uuid.UUID `json:"room_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	room, err := h.rooms.AssignChildren(c.Request().Context(), id, body.RoomIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Deletable handles GET /v1/rooms/:id/deletable. It answers the pre-check
// without deleting anything.
func (h *RoomHandler) Deletable(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ok, err := h.rooms.DeletableRoom(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deletable": ok})
}

// Delete handles DELETE /v1/rooms/:id. With ?force=true existing bookings
// referencing the room are destroyed along with it.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	force := c.QueryParam("force") == "true"
	if err := h.rooms.DeleteRoom(c.Request().Context(), id, force); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Available handles POST /v1/rooms/available: rooms free in the given window
// whose characteristics satisfy every predicate.
func (h *RoomHandler) Available(c echo.Context) error {
	var body struct {
		StartTime  time.Time         `json:"start_time"`
		EndTime    time.Time         `json:"end_time"`
		Predicates []model.Predicate `json:"predicates"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	items, err := h.rooms.FindAvailableRooms(c.Request().Context(), body.StartTime.UTC(), body.EndTime.UTC(), body.Predicates)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
