package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBarber_ScheduleFor_FirstEntryWins(t *testing.T) {
	b := Barber{Schedules: []Schedule{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "18:00", IsActive: false},
		{DayOfWeek: 1, StartTime: "10:00", EndTime: "12:00", IsActive: true},
		{DayOfWeek: 2, StartTime: "09:00", EndTime: "18:00", IsActive: true},
	}}

	if b.WorksOn(time.Monday) {
		t.Fatal("first Monday entry is inactive, Monday must be unavailable")
	}
	s, ok := b.ScheduleFor(time.Tuesday)
	if !ok || s.StartTime != "09:00" {
		t.Fatalf("unexpected Tuesday schedule %+v ok=%v", s, ok)
	}
	if b.WorksOn(time.Sunday) {
		t.Fatal("no Sunday entry means unavailable")
	}
}

func TestClockMinutes(t *testing.T) {
	if m, err := ClockMinutes("09:30"); err != nil || m != 570 {
		t.Fatalf("09:30 -> %d, %v", m, err)
	}
	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd"} {
		if _, err := ClockMinutes(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
	if FormatClock(570) != "09:30" {
		t.Fatalf("FormatClock(570) = %q", FormatClock(570))
	}
}

func TestNewAppointmentRequest_SerializesExactBody(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, loc)
	start, err := At(day, "09:00", loc)
	if err != nil {
		t.Fatalf("At: %v", err)
	}

	req := NewAppointmentRequest("b1", "s1", start)
	req.IdempotencyKey = "should-not-leak"
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var body map[string]any
	json.Unmarshal(raw, &body)
	if len(body) != 3 {
		t.Fatalf("body must have exactly 3 fields, got %v", body)
	}
	if body["startTime"] != "2025-03-14T12:00:00.000Z" {
		t.Fatalf("unexpected startTime %v", body["startTime"])
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestQueueTicket(t *testing.T) {
	if !(QueueTicket{Position: 0}).Served() || !(QueueTicket{Position: -1}).Served() {
		t.Fatal("non-positive positions are served")
	}
	if (QueueTicket{Position: 1}).Served() || !(QueueTicket{Position: 1}).Next() {
		t.Fatal("position 1 is next, not served")
	}
}

func TestBookingLinkRequest(t *testing.T) {
	empty := "  "
	req := BookingLinkRequest{BarbershopID: " shop ", BarberID: &empty, CustomerPhone: "(11) 98765-4321"}
	req.Normalize()
	if err := req.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if req.BarberID != nil {
		t.Fatal("blank barber id should become nil")
	}
	if req.CustomerPhone != "+5511987654321" {
		t.Fatalf("phone not normalized: %q", req.CustomerPhone)
	}

	bad := BookingLinkRequest{BarbershopID: "shop", CustomerPhone: "123"}
	bad.Normalize()
	if err := bad.Validate(); err == nil {
		t.Fatal("expected phone validation error")
	}
}

func TestPlanByID(t *testing.T) {
	p, ok := PlanByID("premium")
	if !ok || p.Price != 49.90 {
		t.Fatalf("unexpected premium plan %+v", p)
	}
	if _, ok := PlanByID("enterprise"); ok {
		t.Fatal("unknown plan should not resolve")
	}
}
