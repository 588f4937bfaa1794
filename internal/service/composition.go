package service

import (
	"roomdesk/internal/model"
)

// ValidateComposition enforces the structural invariants of the room
// hierarchy before children are attached to a parent:
//
//   - a room cannot be composed of itself,
//   - a child may belong to at most one composite,
//   - composition depth is at most two: a room that already has children of
//     its own cannot become a child.
//
// The allocation engine depends on these invariants (the expansion set
// assumes children are leaves), so they are checked here even though
// composition edits arrive through the administration surface.
func ValidateComposition(parent *model.Room, children []*model.Room) error {
	for _, child := range children {
		if child.ID == parent.ID {
			return NewProblem(KindBadComposition,
				"Room %s cannot be composed of itself", parent.Name)
		}
		if child.ParentID != nil && *child.ParentID != parent.ID {
			return NewProblem(KindBadComposition,
				"Room %s already belongs to another composite", child.Name)
		}
		if len(child.ComposedOf) > 0 {
			return NewProblem(KindBadComposition,
				"Room %s is itself a composite and cannot be nested", child.Name)
		}
	}
	return nil
}
