package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"roomdesk/internal/service"
)

// BookingHandler serves the booking surface: creation, cancellation and
// listings. It holds no state beyond the service it delegates to.
type BookingHandler struct {
	bookings *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	var body struct {
		RoomID            uuid.UUID   `json:"room_id"`
		StartTime         time.Time   `json:"start_time"`
		EndTime           time.Time   `json:"end_time"`
		LecturerIDs       []uuid.UUID `json:"lecturer_ids"`
		GroupSize         int         `json:"group_size"`
		StudentGroupNames []string    `json:"student_group_names"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.RoomID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id is required"})
	}

	booking, err := h.bookings.CreateBooking(c.Request().Context(), service.CreateBookingRequest{
		RoomID:            body.RoomID,
		StartTime:         body.StartTime,
		EndTime:           body.EndTime,
		LecturerIDs:       body.LecturerIDs,
		GroupSize:         body.GroupSize,
		StudentGroupNames: body.StudentGroupNames,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// Cancel handles DELETE /v1/bookings/:id.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.bookings.CancelBooking(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	booking, err := h.bookings.FindBooking(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// List handles GET /v1/bookings. With room_id and date it lists the bookings
// of one room on that day; with building_id and date it lists across a
// building; with no filters it lists everything.
func (h *BookingHandler) List(c echo.Context) error {
	roomParam := c.QueryParam("room_id")
	buildingParam := c.QueryParam("building_id")
	dateParam := c.QueryParam("date")

	if roomParam == "" && buildingParam == "" {
		items, err := h.bookings.AllBookings(c.Request().Context())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"items": items})
	}

	if dateParam == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required with room_id or building_id"})
	}
	date, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be formatted as YYYY-MM-DD"})
	}

	if roomParam != "" {
		roomID, err := uuid.Parse(roomParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room_id"})
		}
		items, err := h.bookings.BookingsByRoomAndDate(c.Request().Context(), roomID, date)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"items": items})
	}

	buildingID, err := uuid.Parse(buildingParam)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid building_id"})
	}
	items, err := h.bookings.BookingsByBuildingAndDate(c.Request().Context(), buildingID, date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
