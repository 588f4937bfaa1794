package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"roomdesk/internal/model"
)

// AllocationFinder is the read side of the allocation store used by the
// pre-flight availability check.
type AllocationFinder interface {
	FindOverlapping(ctx context.Context, roomIDs []uuid.UUID, start, end time.Time) ([]model.Allocation, error)
}

// CheckAvailability queries existing allocations for every room of the
// expansion set and fails with an Overlap problem naming the conflicting
// room when any intersects [start, end).
//
// This is a pre-flight optimization only: it produces a friendly failure
// before a write is attempted, but it cannot rule out a race with a
// concurrent request. The store's locked re-check at commit time is the
// actual correctness guarantee; both layers assert the same invariant on
// purpose.
func CheckAvailability(
	ctx context.Context,
	store AllocationFinder,
	roomIDs []uuid.UUID,
	roomNames map[uuid.UUID]string,
	start, end time.Time,
) error {
	allocations, err := store.FindOverlapping(ctx, roomIDs, start, end)
	if err != nil {
		return err
	}
	if len(allocations) == 0 {
		return nil
	}

	conflict := allocations[0]
	name, ok := roomNames[conflict.RoomID]
	if !ok {
		name = conflict.RoomID.String()
	}
	return NewProblem(KindOverlap,
		"Booking for room %s from %s to %s overlaps with an existing booking",
		name, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
}
