package events

import (
	"context"
	"sync"
	"time"

	"reservio/pkg/kafka"
	"reservio/pkg/logger"
	"reservio/pkg/model"
)

const (
	Topic = "reservio.bookings"

	EventBookingCreated = "booking.created"
	EventBookingUpdated = "booking.updated"
	EventBookingDeleted = "booking.deleted"

	schemaVersion  = "1"
	source         = "reservations"
	publishTimeout = 5 * time.Second
)

// Publisher emits booking lifecycle events. Publishing is best effort: event
// delivery never fails a request that already committed.
type Publisher interface {
	BookingCreated(booking *model.Booking)
	BookingUpdated(booking *model.Booking)
	BookingDeleted(booking *model.Booking)
}

// Producer is the subset of the Kafka producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer Producer
	log      *logger.Logger
	wg       sync.WaitGroup
}

func NewKafkaPublisher(producer Producer, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *KafkaPublisher) BookingCreated(booking *model.Booking) {
	p.publish(EventBookingCreated, booking)
}

func (p *KafkaPublisher) BookingUpdated(booking *model.Booking) {
	p.publish(EventBookingUpdated, booking)
}

func (p *KafkaPublisher) BookingDeleted(booking *model.Booking) {
	p.publish(EventBookingDeleted, booking)
}

// Close waits for in-flight publishes to finish, then closes the producer.
func (p *KafkaPublisher) Close() error {
	p.wg.Wait()
	return p.producer.Close()
}

// publish fires asynchronously with its own deadline. The request context is
// not reused: by the time the event ships the request may already be done.
func (p *KafkaPublisher) publish(eventType string, booking *model.Booking) {
	msg := kafka.NewMessage().
		WithKey(booking.ResourceID).
		WithValue(booking).
		WithEventType(eventType).
		WithSchemaVersion(schemaVersion).
		WithSource(source).
		Build()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := p.producer.Publish(ctx, msg); err != nil {
			p.log.Error("Failed to publish booking event",
				"event_type", eventType,
				"booking_id", booking.ID,
				"resource_id", booking.ResourceID,
				"error", err,
			)
			return
		}

		p.log.Debug("Booking event published",
			"event_type", eventType,
			"booking_id", booking.ID,
		)
	}()
}

// NoopPublisher drops every event. Used when the event stream is disabled.
type NoopPublisher struct{}

func (NoopPublisher) BookingCreated(*model.Booking) {}
func (NoopPublisher) BookingUpdated(*model.Booking) {}
func (NoopPublisher) BookingDeleted(*model.Booking) {}
