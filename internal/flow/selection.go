package flow

import (
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
)

// Selection accumulates the booking choices. Fields are filled in order and
// setting one drops everything after it.
type Selection struct {
	Barber   *domain.Barber
	Service  *domain.Service
	Date     *time.Time
	TimeSlot *domain.TimeSlot
}

func (s *Selection) SetBarber(b domain.Barber) {
	s.Barber = &b
	s.Service = nil
	s.Date = nil
	s.TimeSlot = nil
}

func (s *Selection) SetService(svc domain.Service) {
	if s.Barber == nil {
		panic("flow: service selected before barber")
	}
	s.Service = &svc
	s.Date = nil
	s.TimeSlot = nil
}

func (s *Selection) SetDate(d time.Time) {
	if s.Service == nil {
		panic("flow: date selected before service")
	}
	s.Date = &d
	s.TimeSlot = nil
}

func (s *Selection) SetTimeSlot(ts domain.TimeSlot) {
	if s.Date == nil {
		panic("flow: time slot selected before date")
	}
	s.TimeSlot = &ts
}

func (s *Selection) Clear() {
	*s = Selection{}
}

// Ordered reports whether no field is set while an earlier one is unset.
func (s Selection) Ordered() bool {
	set := []bool{s.Barber != nil, s.Service != nil, s.Date != nil, s.TimeSlot != nil}
	for i := 1; i < len(set); i++ {
		if set[i] && !set[i-1] {
			return false
		}
	}
	return true
}

func (s Selection) Complete() bool {
	return s.Barber != nil && s.Service != nil && s.Date != nil && s.TimeSlot != nil
}

// clone copies the pointed-to values so snapshots do not alias live state.
func (s Selection) clone() Selection {
	var out Selection
	if s.Barber != nil {
		b := *s.Barber
		b.Schedules = append([]domain.Schedule(nil), s.Barber.Schedules...)
		out.Barber = &b
	}
	if s.Service != nil {
		svc := *s.Service
		out.Service = &svc
	}
	if s.Date != nil {
		d := *s.Date
		out.Date = &d
	}
	if s.TimeSlot != nil {
		ts := *s.TimeSlot
		out.TimeSlot = &ts
	}
	return out
}

// signature identifies the complete choice, used to reuse an idempotency key
// across retries of the same booking.
func (s Selection) signature() string {
	if !s.Complete() {
		return ""
	}
	return s.Barber.ID + "|" + s.Service.ID + "|" + s.Date.Format(domain.DateLayout) + "|" + s.TimeSlot.StartTime
}
