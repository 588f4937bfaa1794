// Package handler contains the HTTP handlers of the booking API.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"roomdesk/internal/service"
)

// statusFor maps a problem classification to an HTTP status. Overlaps and
// other collisions with existing state are conflicts, not bad requests; a
// room without a configured capacity is a server-side data problem.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindRoomNotFound, service.KindBookingNotFound, service.KindBuildingNotFound:
		return http.StatusNotFound
	case service.KindOverlap, service.KindDuplicateName, service.KindRoomBooked, service.KindBuildingNotEmpty:
		return http.StatusConflict
	case service.KindMissingCapacityConfig:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// writeError renders any service error as JSON. Unclassified errors are
// reported as opaque internal failures so repository details never leak.
func writeError(c echo.Context, err error) error {
	if p, ok := service.AsProblem(err); ok {
		return c.JSON(statusFor(p.Kind), echo.Map{
			"error":   string(p.Kind),
			"message": p.Detail,
		})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal_error"})
}
