package model

import (
	"time"

	"github.com/google/uuid"
)

// Room is a bookable space inside a building. Rooms form a two-level
// composition hierarchy: a composite room (a big hall assembled from
// partition rooms) stores no child list of its own — ParentID on the child
// side is the single source of truth and ComposedOf is derived by an index
// query when the room is loaded. A composite may not itself be the child of
// another composite.
//
// Fields:
//  ID              – primary key identifier (UUIDv7).
//  Name            – unique, case-normalized room name.
//  BuildingID      – owning building.
//  ParentID        – composite this room is part of (nil for top-level rooms).
//  Characteristics – typed key/value traits, must include a seat count.
//  Defects         – outstanding defect markers; non-empty blocks booking.
//  ComposedOf      – child rooms, derived from ParentID back-references.
//  CreatedAt       – creation timestamp.
type Room struct {
	ID              uuid.UUID       `json:"id"`               // rooms.id
	Name            string          `json:"name"`             // rooms.name
	BuildingID      uuid.UUID       `json:"building_id"`      // rooms.building_id
	ParentID        *uuid.UUID      `json:"parent_id"`        // rooms.parent_room_id (nullable)
	Characteristics Characteristics `json:"characteristics"`  // rooms.characteristics (JSON)
	Defects         []string        `json:"defects"`          // rooms.defects (JSON, nullable)
	ComposedOf      []Room          `json:"composed_of"`      // derived, not a column
	CreatedAt       time.Time       `json:"created_at"`       // rooms.created_at
}

// Composite reports whether the room has child rooms merged into it.
func (r *Room) Composite() bool {
	return len(r.ComposedOf) > 0
}

// Defective reports whether the room has unresolved defects.
func (r *Room) Defective() bool {
	return len(r.Defects) > 0
}

// Seats returns the room's declared seat capacity. The second return value
// is false when the seats characteristic is missing, which is a
// data-integrity problem rather than a caller mistake.
func (r *Room) Seats() (int, bool) {
	return r.Characteristics.IntValue(CharacteristicSeats)
}
