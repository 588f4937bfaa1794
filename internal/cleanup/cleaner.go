// Package cleanup removes bookings that already ended.
package cleanup

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"roomdesk/internal/metrics"
	"roomdesk/internal/repository"
)

// Cleaner periodically purges bookings whose end instant has passed, along
// with their allocations, keeping the overlap queries on the hot path small.
type Cleaner struct {
	bookings *repository.BookingRepo
	interval time.Duration
	log      *logrus.Entry
}

// New returns a Cleaner running at the given interval.
func New(bookings *repository.BookingRepo, interval time.Duration, log *logrus.Logger) *Cleaner {
	return &Cleaner{
		bookings: bookings,
		interval: interval,
		log:      log.WithField("component", "cleanup"),
	}
}

// Run blocks until ctx is cancelled, doing one pass per tick. An initial
// pass runs immediately so a restart does not wait a full interval.
func (c *Cleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.pass(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.pass(ctx)
		}
	}
}

func (c *Cleaner) pass(ctx context.Context) {
	removed, err := c.bookings.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		c.log.WithError(err).Error("failed to purge expired bookings")
		return
	}
	if removed > 0 {
		metrics.ExpiredBookingsPurged.Add(float64(removed))
		c.log.WithField("bookings", removed).Info("purged expired bookings")
	}
}
