package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"salonbook/backend/internal/domain"
)

type fakeWriter struct {
	writeFn func(ctx context.Context, msgs ...kafka.Message) error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.writeFn == nil {
		panic("WriteMessages not configured")
	}
	return f.writeFn(ctx, msgs...)
}

func (f *fakeWriter) Close() error { return nil }

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaPublisher_AppointmentBooked(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	svcID := uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	appt := domain.Appointment{
		ID:        uuid.MustParse("00000000-0000-0000-0000-000000000901"),
		ClientID:  "c1",
		StaffID:   "s1",
		ServiceID: &svcID,
		Service:   &domain.Service{ID: svcID, Name: "Men's haircut"},
		StartTime: time.Date(2030, 1, 7, 14, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2030, 1, 7, 15, 0, 0, 0, time.UTC),
	}

	var got []kafka.Message
	p := newKafkaPublisher(&fakeWriter{writeFn: func(ctx context.Context, msgs ...kafka.Message) error {
		got = append(got, msgs...)
		return nil
	}}, nil)
	p.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	if err := p.AppointmentBooked(ctx, appt); err != nil {
		t.Fatalf("AppointmentBooked error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("messages = %d, want 1", len(got))
	}
	msg := got[0]
	if string(msg.Key) != "s1" {
		t.Fatalf("key = %q, want staff id", msg.Key)
	}
	if header(msg, "event_type") != EventAppointmentBooked {
		t.Fatalf("event_type = %q", header(msg, "event_type"))
	}
	if header(msg, "event_id") != appt.ID.String() {
		t.Fatalf("event_id = %q", header(msg, "event_id"))
	}
	if header(msg, "traceparent") == "" {
		t.Fatalf("trace context not propagated: %v", msg.Headers)
	}

	var ev BookedEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if ev.ServiceName != "Men's haircut" || ev.ServiceID != svcID.String() || !ev.StartTime.Equal(appt.StartTime) {
		t.Fatalf("payload = %+v", ev)
	}
}

func TestKafkaPublisher_PropagatesWriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := newKafkaPublisher(&fakeWriter{writeFn: func(context.Context, ...kafka.Message) error {
		return boom
	}}, nil)

	err := p.AppointmentBooked(context.Background(), domain.Appointment{ID: uuid.New(), StaffID: "s1"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestNewKafkaPublisher_RequiresBrokersAndTopic(t *testing.T) {
	if _, err := NewKafkaPublisher(nil, "topic", nil); err == nil {
		t.Fatalf("expected error without brokers")
	}
	if _, err := NewKafkaPublisher([]string{"localhost:9092"}, " ", nil); err == nil {
		t.Fatalf("expected error without topic")
	}
}
