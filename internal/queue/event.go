// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an audit trail.
package queue

// BookingCreatedEvent is published after a booking and its allocations are
// committed. It carries enough context for downstream consumers to log or
// notify without querying the primary database.
type BookingCreatedEvent struct {
	BookingID         string   `json:"booking_id"`
	RoomID            string   `json:"room_id"`
	RoomName          string   `json:"room_name"`
	BuildingID        string   `json:"building_id"`
	AllocatedRoomIDs  []string `json:"allocated_room_ids"`
	StartTime         string   `json:"start_time"`
	EndTime           string   `json:"end_time"`
	LecturerIDs       []string `json:"lecturer_ids"`
	StudentGroupNames []string `json:"student_group_names"`
	CreatedAt         string   `json:"created_at"`
}

// BookingCancelledEvent is published after a booking and every allocation it
// held were removed.
type BookingCancelledEvent struct {
	BookingID   string `json:"booking_id"`
	RoomID      string `json:"room_id"`
	CancelledAt string `json:"cancelled_at"`
}
