package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"salonbook/backend/internal/domain"
)

const EventAppointmentBooked = "salon.appointment.booked.v1"

// BookedEvent is the confirmation payload. Consumers deduplicate on EventID, which is
// the appointment id.
type BookedEvent struct {
	EventID       string    `json:"event_id"`
	AppointmentID string    `json:"appointment_id"`
	ClientID      string    `json:"client_id"`
	StaffID       string    `json:"staff_id"`
	ServiceID     string    `json:"service_id,omitempty"`
	ServiceName   string    `json:"service_name,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewBookedEvent(appt domain.Appointment, now time.Time) BookedEvent {
	ev := BookedEvent{
		EventID:       appt.ID.String(),
		AppointmentID: appt.ID.String(),
		ClientID:      appt.ClientID,
		StaffID:       appt.StaffID,
		StartTime:     appt.StartTime.UTC(),
		EndTime:       appt.EndTime.UTC(),
		OccurredAt:    now.UTC(),
	}
	if appt.ServiceID != nil {
		ev.ServiceID = appt.ServiceID.String()
	}
	if appt.Service != nil {
		ev.ServiceName = appt.Service.Name
	}
	return ev
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w   messageWriter
	log *slog.Logger
	now func() time.Time
}

// NewKafkaPublisher writes confirmation events to topic, keyed by staff id so one
// calendar's events stay ordered.
func NewKafkaPublisher(brokers []string, topic string, log *slog.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, errors.New("kafka topic is required")
	}
	if log == nil {
		log = slog.Default()
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Warn("kafka writer error", "detail", msg, "args", args)
		}),
	}
	return newKafkaPublisher(w, log), nil
}

func newKafkaPublisher(w messageWriter, log *slog.Logger) *KafkaPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &KafkaPublisher{
		w:   w,
		log: log.With(slog.String("component", "notify")),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (p *KafkaPublisher) AppointmentBooked(ctx context.Context, appt domain.Appointment) error {
	ev := NewBookedEvent(appt, p.now())
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	headers := []kafka.Header{
		{Key: "event_id", Value: []byte(ev.EventID)},
		{Key: "event_type", Value: []byte(EventAppointmentBooked)},
	}
	msg := kafka.Message{
		Key:     []byte(appt.StaffID),
		Value:   body,
		Headers: injectTraceHeaders(ctx, headers),
		Time:    ev.OccurredAt,
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return err
	}
	p.log.Info("confirmation published",
		slog.String("appointment_id", ev.AppointmentID),
		slog.String("event_type", EventAppointmentBooked),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Nop discards confirmations. Used when no broker is configured.
type Nop struct{}

func (Nop) AppointmentBooked(context.Context, domain.Appointment) error { return nil }

// ReadyCheck dials the first broker.
func ReadyCheck(brokers []string) func(context.Context) error {
	return func(ctx context.Context) error {
		if len(brokers) == 0 {
			return errors.New("kafka brokers not configured")
		}
		dialer := kafka.Dialer{Timeout: 2 * time.Second}
		conn, err := dialer.DialContext(ctx, "tcp", brokers[0])
		if err != nil {
			return err
		}
		return conn.Close()
	}
}

func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := &headerCarrier{headers: headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.headers
}

type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c *headerCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}
