package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/pkg/logger"
	"github.com/google/uuid"
)

func (c *Controller) SelectService(serviceID string) error {
	return c.mutate(func() ([]Notification, error) {
		next, err := Transition(c.st.Step, EventServiceChosen)
		if err != nil {
			return nil, err
		}
		svc, ok := findService(c.st.Services, serviceID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownService, serviceID)
		}
		c.st.Selection.SetService(svc)
		c.st.Step = next
		return nil, nil
	})
}

// dayIn truncates t to midnight of its calendar day in loc.
func dayIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DateSelectable reports whether day can be booked with the selected barber:
// not in the past and on a weekday the barber works.
func (c *Controller) DateSelectable(day time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dateSelectableLocked(dayIn(day, c.loc))
}

func (c *Controller) dateSelectableLocked(day time.Time) bool {
	if day.Before(dayIn(c.now(), c.loc)) {
		return false
	}
	return c.st.Selection.Barber != nil && c.st.Selection.Barber.WorksOn(day.Weekday())
}

// SelectDate records the day and moves to the time step, fetching the
// barber's availability for it. A failed fetch does not undo the move: it
// is notified and left in State.SlotsErr.
func (c *Controller) SelectDate(ctx context.Context, date time.Time) error {
	day := dayIn(date, c.loc)
	var (
		gen      uint64
		barberID string
	)
	err := c.mutate(func() ([]Notification, error) {
		next, err := Transition(c.st.Step, EventDateChosen)
		if err != nil {
			return nil, err
		}
		if !c.dateSelectableLocked(day) {
			return nil, fmt.Errorf("%w: %s", ErrDateUnavailable, day.Format(domain.DateLayout))
		}
		c.st.Selection.SetDate(day)
		c.st.Step = next
		gen, barberID = c.beginSlotsFetchLocked()
		return nil, nil
	})
	if err != nil {
		return err
	}
	c.fetchSlots(c.withFlow(ctx), gen, barberID, day)
	return nil
}

// RefreshAvailability re-runs the availability query for the current
// (barber, date). Failed fetches are never retried automatically.
func (c *Controller) RefreshAvailability(ctx context.Context) error {
	var (
		gen      uint64
		barberID string
		day      time.Time
	)
	err := c.mutate(func() ([]Notification, error) {
		if c.st.Step != StepTime {
			return nil, fmt.Errorf("%w: availability outside %s", ErrInvalidTransition, StepTime)
		}
		day = *c.st.Selection.Date
		gen, barberID = c.beginSlotsFetchLocked()
		return nil, nil
	})
	if err != nil {
		return err
	}
	c.fetchSlots(c.withFlow(ctx), gen, barberID, day)
	return nil
}

func (c *Controller) beginSlotsFetchLocked() (uint64, string) {
	c.slotsGen++
	c.st.AvailableSlots = nil
	c.st.SlotsErr = nil
	c.st.LoadingSlots = true
	return c.slotsGen, c.st.Selection.Barber.ID
}

// fetchSlots commits the response only if it still answers the current
// (barber, date) on the time step.
func (c *Controller) fetchSlots(ctx context.Context, gen uint64, barberID string, day time.Time) {
	slots, err := c.backend.GetAvailability(ctx, barberID, day)

	c.update(func() []Notification {
		sel := c.st.Selection
		if c.closed || gen != c.slotsGen || c.st.Step != StepTime ||
			sel.Barber == nil || sel.Barber.ID != barberID ||
			sel.Date == nil || !sel.Date.Equal(day) {
			logger.DebugContext(ctx, "Dropping stale availability", "barber_id", barberID, "date", day.Format(domain.DateLayout))
			return nil
		}
		c.st.LoadingSlots = false
		if err != nil {
			c.st.SlotsErr = err
			logger.WarnContext(ctx, "Availability fetch failed", "barber_id", barberID, "error", err)
			return []Notification{errorNote("Erro ao buscar horários", err, "Não foi possível carregar os horários disponíveis.")}
		}
		c.st.AvailableSlots = slots
		return nil
	})
}

// SelectTimeSlot picks one of the fetched slots by its start time. Busy slots
// are refused without leaving the time step.
func (c *Controller) SelectTimeSlot(startTime string) error {
	return c.mutate(func() ([]Notification, error) {
		next, err := Transition(c.st.Step, EventSlotChosen)
		if err != nil {
			return nil, err
		}
		var (
			slot  domain.TimeSlot
			found bool
		)
		for _, s := range c.st.AvailableSlots {
			if s.StartTime == startTime {
				slot, found = s, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSlot, startTime)
		}
		if slot.Busy() {
			return nil, fmt.Errorf("%w: %s", ErrSlotBusy, startTime)
		}
		c.st.Selection.SetTimeSlot(slot)
		c.st.Step = next
		return nil, nil
	})
}

// ConfirmBooking submits the selection. Retries of the same selection reuse
// one idempotency key. On failure the flow stays on confirmation.
func (c *Controller) ConfirmBooking(ctx context.Context) error {
	ctx = c.withFlow(ctx)
	var req domain.AppointmentRequest
	err := c.mutate(func() ([]Notification, error) {
		if _, err := Transition(c.st.Step, EventBookingSucceeded); err != nil {
			return nil, err
		}
		if c.st.Submitting {
			return nil, ErrInFlight
		}
		sel := c.st.Selection
		if !sel.Complete() {
			return nil, fmt.Errorf("%w: incomplete selection", ErrInvalidTransition)
		}
		start, err := domain.At(*sel.Date, sel.TimeSlot.StartTime, c.loc)
		if err != nil {
			return nil, fmt.Errorf("combine date and time: %w", err)
		}
		if sig := sel.signature(); sig != c.idemSig {
			c.idemSig = sig
			c.idemKey = uuid.NewString()
		}
		req = domain.NewAppointmentRequest(sel.Barber.ID, sel.Service.ID, start)
		req.IdempotencyKey = c.idemKey
		c.st.Submitting = true
		return nil, nil
	})
	if err != nil {
		return err
	}

	appt, err := c.backend.CreateAppointment(ctx, req)

	var result error
	c.update(func() []Notification {
		c.st.Submitting = false
		if err != nil {
			result = fmt.Errorf("create appointment: %w", err)
			logger.WarnContext(ctx, "Booking failed", "error", err)
			return []Notification{errorNote("Erro ao criar agendamento", err, "Não foi possível confirmar o agendamento.")}
		}
		if c.closed {
			logger.WarnContext(ctx, "Booking confirmed after the flow was closed", "appointment_id", appt.ID)
			result = ErrClosed
			return nil
		}
		if c.st.Step != StepConfirmation {
			logger.WarnContext(ctx, "Booking confirmed after the flow moved on", "appointment_id", appt.ID, "step", c.st.Step)
			result = fmt.Errorf("%w: flow left confirmation during submission", ErrInvalidTransition)
			return nil
		}
		next, _ := Transition(c.st.Step, EventBookingSucceeded)
		a := appt
		c.st.Appointment = &a
		c.st.Booked = c.st.Selection.clone()
		c.st.Selection.Clear()
		c.idemKey, c.idemSig = "", ""
		c.st.Step = next
		logger.InfoContext(ctx, "Appointment booked", "appointment_id", appt.ID)
		return []Notification{{Kind: NotifySuccess, Title: "Agendamento confirmado!", Message: "Seu horário foi reservado."}}
	})
	return result
}
