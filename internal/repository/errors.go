// Package repository defines error values shared across repositories.
// These sentinels let higher layers distinguish failure scenarios without
// inspecting driver errors: handlers translate them into HTTP statuses and
// the booking service folds them into its problem taxonomy.
package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrBuildingNotFound indicates that no building row matched the lookup.
var ErrBuildingNotFound = errors.New("building not found")

// ErrRoomNotFound indicates that no room row matched the lookup.
var ErrRoomNotFound = errors.New("room not found")

// ErrBookingNotFound indicates that no booking row matched the lookup.
var ErrBookingNotFound = errors.New("booking not found")

// ErrOverlapping is the sentinel for allocation exclusivity violations.
// Compare with errors.Is; the concrete value carried by the error chain is
// an *OverlapError naming the room that lost the race.
var ErrOverlapping = errors.New("interval overlaps an existing allocation")

// OverlapError reports which room of the expansion set already holds an
// allocation intersecting the requested interval. It unwraps to
// ErrOverlapping so callers can match without caring about the room.
type OverlapError struct {
	RoomID   uuid.UUID
	RoomName string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("room %s is already booked in the requested interval", e.RoomName)
}

func (e *OverlapError) Unwrap() error { return ErrOverlapping }
