package model

import (
	"time"

	"github.com/google/uuid"
)

// Booking reserves one subject room for a half-open interval
// [StartTime, EndTime). Both instants are stored in UTC; callers may supply
// any offset and the service normalizes before the value reaches this type.
// A booking exclusively owns its Allocations: they are created in the same
// transaction and cascade on delete.
type Booking struct {
	ID                uuid.UUID   `json:"id"`                  // bookings.id
	RoomID            uuid.UUID   `json:"room_id"`             // bookings.room_id
	StartTime         time.Time   `json:"start_time"`          // bookings.start_time (UTC)
	EndTime           time.Time   `json:"end_time"`            // bookings.end_time (UTC)
	LecturerIDs       []uuid.UUID `json:"lecturer_ids"`        // bookings.lecturer_ids (JSON)
	StudentGroupNames []string    `json:"student_group_names"` // bookings.student_group_names (JSON)
	CreatedAt         time.Time   `json:"created_at"`          // bookings.created_at
}

// Expired reports whether the booking's end instant has passed.
func (b *Booking) Expired(now time.Time) bool {
	return !b.EndTime.After(now)
}

// Allocation is the per-room reservation record derived from a booking: one
// row per (booking, room) pair of the expansion set, carrying the booking's
// interval. Allocations are never mutated independently; they exist so that
// overlap detection can run per room.
type Allocation struct {
	BookingID uuid.UUID `json:"booking_id"` // booking_allocations.booking_id
	RoomID    uuid.UUID `json:"room_id"`    // booking_allocations.room_id
	StartTime time.Time `json:"start_time"` // booking_allocations.start_time (UTC)
	EndTime   time.Time `json:"end_time"`   // booking_allocations.end_time (UTC)
}

// Overlaps reports whether the allocation's interval intersects
// [start, end) using open-interval semantics: two intervals that merely
// touch do not overlap.
func (a Allocation) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && a.EndTime.After(start)
}
