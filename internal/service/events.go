package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"roomdesk/internal/queue"
)

// EventPublisher hands booking lifecycle events to the broker without
// blocking the request path. Publishing is best-effort: a broker outage is
// logged inside the queue package and otherwise ignored.
type EventPublisher struct {
	log *logrus.Logger
}

// NewEventPublisher returns a publisher writing through the given logger.
func NewEventPublisher(log *logrus.Logger) *EventPublisher {
	return &EventPublisher{log: log}
}

// BookingCreated publishes asynchronously with its own deadline so a slow
// broker cannot hold request resources.
func (p *EventPublisher) BookingCreated(event queue.BookingCreatedEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue.PublishBookingCreated(ctx, p.log, event)
	}()
}

// BookingCancelled publishes asynchronously.
func (p *EventPublisher) BookingCancelled(event queue.BookingCancelledEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue.PublishBookingCancelled(ctx, p.log, event)
	}()
}
