package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// StartAuditConsumer connects to RabbitMQ, declares the booking queues and
// appends one line per event to logs/booking-audit.log. It runs a reconnect
// loop with exponential backoff and never returns under normal operation;
// processing errors are logged and the offending message rejected so the
// server keeps running.
func StartAuditConsumer(log *logrus.Logger) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.WithError(err).WithField("retry_in", backoff.String()).
				Warn("audit consumer failed to dial broker")
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, log); err != nil {
			log.WithError(err).Warn("audit consume loop ended, reconnecting")
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, log *logrus.Logger) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.WithError(err).Warn("audit consumer set QoS failed")
	}

	for _, name := range []string{createdQueueName, cancelledQueueName} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	created, err := ch.Consume(createdQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", createdQueueName, err)
	}
	cancelled, err := ch.Consume(cancelledQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", cancelledQueueName, err)
	}

	for {
		var (
			d  amqp.Delivery
			ok bool
			fn func([]byte) error
		)
		select {
		case d, ok = <-created:
			fn = handleCreated
		case d, ok = <-cancelled:
			fn = handleCancelled
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := fn(d.Body); err != nil {
			log.WithError(err).Warn("audit consumer failed to handle message")
			_ = d.Nack(false, false) // do not requeue, avoids tight loops
			continue
		}
		_ = d.Ack(false)
	}
}

func handleCreated(body []byte) error {
	var ev BookingCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	rooms := "[]"
	if len(ev.AllocatedRoomIDs) > 0 {
		rooms = fmt.Sprintf("[%s]", strings.Join(ev.AllocatedRoomIDs, ","))
	}
	line := fmt.Sprintf("[%s] Booking created | booking_id=%s | room=%q | building_id=%s | from=%s | to=%s | allocated=%s\n",
		ev.CreatedAt, ev.BookingID, ev.RoomName, ev.BuildingID, ev.StartTime, ev.EndTime, rooms)
	return appendAuditLine(line)
}

func handleCancelled(body []byte) error {
	var ev BookingCancelledEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Booking cancelled | booking_id=%s | room_id=%s\n",
		ev.CancelledAt, ev.BookingID, ev.RoomID)
	return appendAuditLine(line)
}

func appendAuditLine(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "booking-audit.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
