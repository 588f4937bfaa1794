// Package service implements the booking allocation engine: time-window
// validation, capacity resolution, composition expansion, availability
// checking and the orchestration that ties them to the store.
package service

import (
	"errors"
	"fmt"
)

// Kind classifies a Problem so the HTTP layer can map it to a status code
// without string matching.
type Kind string

const (
	// Client errors (bad request).
	KindInvalidInterval   Kind = "invalid_interval"
	KindZeroDuration      Kind = "zero_duration"
	KindSpanTooLong       Kind = "span_too_long"
	KindTooEarly          Kind = "too_early"
	KindTooLate           Kind = "too_late"
	KindMissingOccupancy  Kind = "missing_occupancy_info"
	KindCapacityExceeded  Kind = "capacity_exceeded"
	KindRoomDefective     Kind = "room_defective"
	KindDuplicateName     Kind = "duplicate_name"
	KindSeatsRequired     Kind = "seats_required"
	KindBadComposition    Kind = "invalid_composition"
	KindRoomBooked        Kind = "room_booked"
	KindBuildingNotEmpty  Kind = "building_not_empty"
	KindBadPredicate      Kind = "invalid_predicate"

	// Conflict: the request was well-formed but collided with existing
	// state. Distinguished from bad request on purpose.
	KindOverlap Kind = "overlap"

	// Not found.
	KindRoomNotFound     Kind = "room_not_found"
	KindBookingNotFound  Kind = "booking_not_found"
	KindBuildingNotFound Kind = "building_not_found"

	// Server-side data-integrity problem: the room exists but carries no
	// seat capacity. Not a caller mistake.
	KindMissingCapacityConfig Kind = "missing_capacity_configuration"
)

// Problem is the engine's error currency. It intentionally carries no
// stack or cause chain: by the time a Problem exists the failure has been
// classified and the detail string is user-facing.
type Problem struct {
	Kind   Kind
	Detail string
}

func (p *Problem) Error() string { return p.Detail }

// NewProblem builds a Problem with a formatted detail message.
func NewProblem(kind Kind, format string, args ...any) *Problem {
	return &Problem{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// AsProblem extracts a Problem from an error chain.
func AsProblem(err error) (*Problem, bool) {
	var p *Problem
	if errors.As(err, &p) {
		return p, true
	}
	return nil, false
}
