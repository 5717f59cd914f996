package flow

import (
	"errors"
	"testing"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from Step
		ev   Event
		want Step
	}{
		{StepLoading, EventTokenResolved, StepBarber},
		{StepLoading, EventBarberPreselected, StepBarberDetail},
		{StepBarber, EventBarberChosen, StepBarberDetail},
		{StepBarberDetail, EventBookChosen, StepService},
		{StepBarberDetail, EventAppointmentsChosen, StepAppointments},
		{StepBarberDetail, EventQueueChosen, StepQueueJoin},
		{StepAppointments, EventBookChosen, StepService},
		{StepQueueJoin, EventQueueJoined, StepQueuePosition},
		{StepQueuePosition, EventQueueLeft, StepBarberDetail},
		{StepService, EventServiceChosen, StepDate},
		{StepDate, EventDateChosen, StepTime},
		{StepTime, EventSlotChosen, StepConfirmation},
		{StepConfirmation, EventBookingSucceeded, StepSuccess},
	}
	for _, tt := range tests {
		got, err := Transition(tt.from, tt.ev)
		if err != nil {
			t.Fatalf("%s on %s: %v", tt.from, tt.ev, err)
		}
		if got != tt.want {
			t.Fatalf("%s on %s: expected %s, got %s", tt.from, tt.ev, tt.want, got)
		}
	}
}

func TestTransitionRejectsUnknownEvents(t *testing.T) {
	got, err := Transition(StepSuccess, EventBookChosen)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if got != StepSuccess {
		t.Fatalf("expected step unchanged, got %s", got)
	}
	if _, err := Transition(StepDate, EventSlotChosen); err == nil {
		t.Fatal("expected skipping a step to fail")
	}
}

func TestBack(t *testing.T) {
	for _, s := range []Step{StepLoading, StepBarber, StepQueuePosition, StepSuccess} {
		if _, err := Back(s); err == nil {
			t.Fatalf("expected no way back from %s", s)
		}
	}
	if got, _ := Back(StepConfirmation); got != StepTime {
		t.Fatalf("expected time, got %s", got)
	}
	if got, _ := Back(StepQueueJoin); got != StepBarberDetail {
		t.Fatalf("expected barber-detail, got %s", got)
	}
}

func TestOrdinal(t *testing.T) {
	if Ordinal(StepLoading) != -1 || Ordinal(Step("bogus")) != -1 {
		t.Fatal("expected -1 for steps without a stage")
	}
	for _, s := range []Step{StepBarber, StepBarberDetail, StepAppointments, StepQueueJoin, StepQueuePosition} {
		if Ordinal(s) != 0 {
			t.Fatalf("expected %s in the barber stage", s)
		}
	}
	prev := 0
	for _, s := range []Step{StepService, StepDate, StepTime, StepConfirmation, StepSuccess} {
		if Ordinal(s) <= prev {
			t.Fatalf("expected %s to advance the stepper", s)
		}
		prev = Ordinal(s)
	}
	for _, s := range Steps() {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
}

func TestSelectionClearsLaterFields(t *testing.T) {
	var s Selection
	s.SetBarber(domain.Barber{ID: "b1"})
	s.SetService(domain.Service{ID: "s1"})
	s.SetDate(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	s.SetTimeSlot(domain.TimeSlot{StartTime: "10:00"})
	if !s.Complete() || s.signature() == "" {
		t.Fatal("expected complete selection")
	}

	s.SetService(domain.Service{ID: "s2"})
	if s.Date != nil || s.TimeSlot != nil {
		t.Fatal("expected date and slot cleared")
	}
	if !s.Ordered() {
		t.Fatal("expected ordered selection")
	}

	s.SetBarber(domain.Barber{ID: "b2"})
	if s.Service != nil {
		t.Fatal("expected service cleared")
	}
}

func TestSelectionPanicsOutOfOrder(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	var s Selection
	s.SetDate(time.Now())
}

func TestSelectionCloneDoesNotAlias(t *testing.T) {
	var s Selection
	s.SetBarber(domain.Barber{ID: "b1", Name: "Carlos"})
	c := s.clone()
	c.Barber.Name = "Outro"
	if s.Barber.Name != "Carlos" {
		t.Fatal("clone aliases the barber")
	}
	if (Selection{Barber: nil, Service: &domain.Service{}}).Ordered() {
		t.Fatal("expected gap to be reported")
	}
}
