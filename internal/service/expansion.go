package service

import (
	"github.com/google/uuid"

	"roomdesk/internal/model"
)

// ExpansionSet computes the full set of rooms one booking must reserve: the
// target room, every room it is composed of, and its parent when it has
// one. Reserving a merged hall blocks its partitions; reserving a partition
// blocks the hall. The target room comes first, the rest keeps the child
// ordering, and the parent closes the list.
func ExpansionSet(room *model.Room) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(room.ComposedOf)+2)
	ids = append(ids, room.ID)
	for _, child := range room.ComposedOf {
		ids = append(ids, child.ID)
	}
	if room.ParentID != nil {
		ids = append(ids, *room.ParentID)
	}
	return ids
}

// CheckDefects rejects booking a room that carries unresolved defects, or
// whose children do: a broken partition makes the merged hall unusable too.
func CheckDefects(room *model.Room) error {
	if room.Defective() {
		return NewProblem(KindRoomDefective,
			"Cannot book room %s marked as defective", room.Name)
	}
	for _, child := range room.ComposedOf {
		if child.Defective() {
			return NewProblem(KindRoomDefective,
				"Cannot book room %s: its part %s is marked as defective", room.Name, child.Name)
		}
	}
	return nil
}
