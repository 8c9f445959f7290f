package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"innkeep/pkg/kafka"
	"innkeep/pkg/logger"
)

type fakeProducer struct {
	published []kafka.Message
	err       error
}

func (f *fakeProducer) Publish(ctx context.Context, msg kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Service: "test"})
}

func TestRecordPublishesEnvelope(t *testing.T) {
	fake := &fakeProducer{}
	pub := &kafkaPublisher{producer: fake, source: "reservations", log: testLogger()}

	pub.Record(context.Background(), Event{
		EventType: EventRefundCalculated,
		Subject:   "res-123",
		Payload:   map[string]interface{}{"refund_amount": 150.0},
	})

	if len(fake.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(fake.published))
	}

	msg := fake.published[0]
	if msg.Key != "res-123" {
		t.Errorf("expected key res-123, got %s", msg.Key)
	}
	if msg.GetEventType() != EventRefundCalculated {
		t.Errorf("expected event type %s, got %s", EventRefundCalculated, msg.GetEventType())
	}
	if msg.GetEventID() == "" {
		t.Error("expected generated event ID")
	}

	var decoded Event
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if decoded.OccurredAt.IsZero() {
		t.Error("expected OccurredAt to be set")
	}
	if decoded.Payload["refund_amount"] != 150.0 {
		t.Errorf("expected refund_amount 150, got %v", decoded.Payload["refund_amount"])
	}
}

func TestRecordSwallowsPublishErrors(t *testing.T) {
	fake := &fakeProducer{err: errors.New("broker down")}
	pub := &kafkaPublisher{producer: fake, source: "reservations", log: testLogger()}

	// Must not panic and must not propagate the error
	pub.Record(context.Background(), Event{
		EventType:  EventReservationRejected,
		Subject:    "res-456",
		OccurredAt: time.Now(),
	})
}

func TestNewPublisherWithoutBrokersIsNoop(t *testing.T) {
	pub, err := NewPublisher(Config{Source: "reservations"}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := pub.(noopPublisher); !ok {
		t.Fatalf("expected noop publisher, got %T", pub)
	}

	pub.Record(context.Background(), Event{EventType: EventReservationCreated, Subject: "x"})
	if err := pub.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
}
