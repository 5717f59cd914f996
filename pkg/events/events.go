package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bigode/bigode-booking/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url, nats.Name("bigode"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(toMessage(msg))
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(toMessage(msg))
	})
	return err
}

func (n *NATSEventBus) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}

func toMessage(msg *nats.Msg) *Message {
	now := time.Now()
	return &Message{
		Subject:   msg.Subject,
		Data:      msg.Data,
		Timestamp: now,
		ID:        fmt.Sprintf("%d", now.UnixNano()),
	}
}

// NopPublisher drops every event. Used when NATS is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, subject string, _ interface{}) error {
	logger.DebugContext(ctx, "Event bus disabled, dropping event", "subject", subject)
	return nil
}

func (NopPublisher) Close() error { return nil }

// Event subjects
const (
	AppointmentCreated = "bigode.appointment.created"

	QueueJoined = "bigode.queue.joined"
	QueueLeft   = "bigode.queue.left"
	QueueServed = "bigode.queue.served"

	BookingLinkCreated = "bigode.booking_link.created"

	AdminLoggedIn = "bigode.admin.logged_in"

	// All matches every Bigode subject, for consumers that log everything.
	All = "bigode.>"
)

type AppointmentCreatedEvent struct {
	AppointmentID string    `json:"appointment_id"`
	BarbershopID  string    `json:"barbershop_id"`
	BarberID      string    `json:"barber_id"`
	ServiceID     string    `json:"service_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	CreatedAt     time.Time `json:"created_at"`
}

type QueueEvent struct {
	BarberID    string    `json:"barber_id"`
	SessionID   string    `json:"session_id"`
	Position    int       `json:"position,omitempty"`
	QueueLength int       `json:"queue_length"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type BookingLinkCreatedEvent struct {
	BarbershopID  string    `json:"barbershop_id"`
	BarberID      string    `json:"barber_id,omitempty"`
	CustomerPhone string    `json:"customer_phone"`
	ExpiresAt     time.Time `json:"expires_at"`
}

type AdminLoggedInEvent struct {
	AdminID      string    `json:"admin_id"`
	BarbershopID string    `json:"barbershop_id"`
	LoggedInAt   time.Time `json:"logged_in_at"`
}
