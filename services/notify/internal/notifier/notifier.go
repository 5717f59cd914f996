package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bigode/bigode-booking/internal/utils"
	"github.com/bigode/bigode-booking/pkg/events"
	"github.com/bigode/bigode-booking/pkg/logger"
)

// Notification is what a barbershop would be told about an event.
type Notification struct {
	Subject string
	Text    string
}

// Notifier turns bus events into notifications. Delivery is a structured log
// line until a real channel exists.
type Notifier struct {
	loc       *time.Location
	delivered *prometheus.CounterVec
	failed    prometheus.Counter
}

func New(loc *time.Location, reg prometheus.Registerer) *Notifier {
	if loc == nil {
		loc = time.Local
	}
	n := &Notifier{
		loc: loc,
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bigode",
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Notifications produced per event subject",
		}, []string{"subject"}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bigode",
			Subsystem: "notify",
			Name:      "undecodable_events_total",
			Help:      "Events that could not be decoded",
		}),
	}
	if reg != nil {
		reg.MustRegister(n.delivered, n.failed)
	}
	return n
}

// Render builds the notification for one message.
func (n *Notifier) Render(msg *events.Message) (Notification, error) {
	out := Notification{Subject: msg.Subject}
	switch msg.Subject {
	case events.AppointmentCreated:
		var e events.AppointmentCreatedEvent
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			return out, err
		}
		out.Text = fmt.Sprintf("Novo agendamento para %s às %s",
			e.StartTime.In(n.loc).Format("02/01"), e.StartTime.In(n.loc).Format("15:04"))
	case events.QueueJoined:
		var e events.QueueEvent
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			return out, err
		}
		out.Text = fmt.Sprintf("Cliente entrou na fila na posição %d", e.Position)
	case events.QueueLeft:
		var e events.QueueEvent
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			return out, err
		}
		out.Text = fmt.Sprintf("Cliente saiu da fila, %d aguardando", e.QueueLength)
	case events.QueueServed:
		var e events.QueueEvent
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			return out, err
		}
		out.Text = fmt.Sprintf("Próximo cliente chamado, %d aguardando", e.QueueLength)
	case events.BookingLinkCreated:
		var e events.BookingLinkCreatedEvent
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			return out, err
		}
		out.Text = fmt.Sprintf("Link de agendamento enviado para %s, válido até %s",
			utils.FormatPhone(e.CustomerPhone), e.ExpiresAt.In(n.loc).Format("15:04"))
	case events.AdminLoggedIn:
		out.Text = "Novo acesso ao painel"
	default:
		out.Text = "Evento " + msg.Subject
	}
	return out, nil
}

// Handle is the bus callback.
func (n *Notifier) Handle(msg *events.Message) {
	ctx := context.Background()
	note, err := n.Render(msg)
	if err != nil {
		n.failed.Inc()
		logger.WarnContext(ctx, "Dropping undecodable event", "subject", msg.Subject, "error", err)
		return
	}
	n.delivered.WithLabelValues(msg.Subject).Inc()
	logger.InfoContext(ctx, "Notification", "subject", note.Subject, "text", note.Text, "event_id", msg.ID)
}
