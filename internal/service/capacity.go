package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"roomdesk/internal/model"
)

// GroupSizer resolves the member count of a named student group. The bool
// is false when the size is unknown; per the fail-open policy unknown
// groups count as zero occupants and never abort the booking.
type GroupSizer interface {
	GroupSize(ctx context.Context, name string) (int, bool)
}

// ResolveCapacity decides whether the room's declared seat capacity covers
// the requested occupancy. The occupancy is either an explicit group size
// or the summed sizes of named student groups; the explicit size wins when
// both are present.
//
// A room without a seats characteristic is a data-integrity failure: the
// room should never have been persisted that way, so this reports a server
// problem and logs at error severity instead of blaming the caller.
func ResolveCapacity(
	ctx context.Context,
	room *model.Room,
	groupSize int,
	groupNames []string,
	groups GroupSizer,
	log *logrus.Entry,
) error {
	seats, ok := room.Seats()
	if !ok {
		log.WithField("room", room.Name).Error("room has no seats characteristic")
		return NewProblem(KindMissingCapacityConfig,
			"Room %s has no seat capacity configured", room.Name)
	}

	if groupSize <= 0 && len(groupNames) == 0 {
		return NewProblem(KindMissingOccupancy,
			"Either a group size or at least one student group is required")
	}

	if groupSize > 0 {
		if groupSize > seats {
			return NewProblem(KindCapacityExceeded,
				"Room %s seats %d but %d were requested", room.Name, seats, groupSize)
		}
		return nil
	}

	total := 0
	for _, name := range groupNames {
		n, known := groups.GroupSize(ctx, name)
		if !known {
			// Already logged by the client; counts as zero occupants.
			continue
		}
		total += n
	}
	if total > seats {
		return NewProblem(KindCapacityExceeded,
			"Room %s seats %d but the requested groups total %d students", room.Name, seats, total)
	}
	return nil
}
