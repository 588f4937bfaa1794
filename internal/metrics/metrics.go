// Package metrics exposes Prometheus counters for the booking engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/labstack/echo/v4"
)

var (
	// BookingsCreated counts successfully committed bookings.
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomdesk_bookings_created_total",
		Help: "Number of bookings committed with their full allocation set.",
	})

	// BookingConflicts counts requests rejected because of an overlapping
	// allocation, whether caught by the pre-flight check or at commit time.
	BookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomdesk_booking_conflicts_total",
		Help: "Number of booking requests rejected due to an overlap.",
	})

	// BookingsCancelled counts cancelled bookings.
	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomdesk_bookings_cancelled_total",
		Help: "Number of bookings cancelled.",
	})

	// ExpiredBookingsPurged counts bookings removed by the background
	// cleaner.
	ExpiredBookingsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomdesk_expired_bookings_purged_total",
		Help: "Number of expired bookings removed by the cleaner.",
	})
)

// Handler adapts the Prometheus HTTP handler to an Echo route.
func Handler() echo.HandlerFunc {
	h := promhttp.Handler()
	return func(c echo.Context) error {
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}
