package present

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/internal/flow"
)

func TestStepper(t *testing.T) {
	items := Stepper(flow.StepDate, false)
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}
	if !items[0].Completed || !items[1].Completed {
		t.Fatal("expected barber and service completed")
	}
	if !items[2].Active || items[2].Completed {
		t.Fatal("expected date active")
	}
	if items[3].Active {
		t.Fatal("expected time inactive")
	}

	items = Stepper(flow.StepBarberDetail, true)
	if len(items) != 4 || items[0].Label != "Serviço" {
		t.Fatalf("expected barber item hidden, got %+v", items)
	}

	got := RenderStepper(Stepper(flow.StepService, false))
	if !strings.HasPrefix(got, "[x] Barbeiro > [*] Serviço > [ ] Data") {
		t.Fatalf("unexpected render %q", got)
	}
}

func TestGroupSlotsByPeriod(t *testing.T) {
	p := GroupSlotsByPeriod([]domain.TimeSlot{
		{StartTime: "09:00"}, {StartTime: "11:30"}, {StartTime: "12:00"},
		{StartTime: "17:30"}, {StartTime: "18:00"}, {StartTime: "bad"},
	})
	if len(p.Morning) != 2 || len(p.Afternoon) != 2 || len(p.Evening) != 1 {
		t.Fatalf("unexpected grouping %+v", p)
	}
}

func TestFormatBRL(t *testing.T) {
	tests := map[float64]string{
		35:     "R$ 35,00",
		49.9:   "R$ 49,90",
		1234.5: "R$ 1.234,50",
	}
	for in, want := range tests {
		if got := FormatBRL(in); got != want {
			t.Fatalf("FormatBRL(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatWait(t *testing.T) {
	tests := map[int]string{0: "0min", 25: "25min", 60: "1h 00min", 125: "2h 05min", -3: "0min"}
	for in, want := range tests {
		if got := FormatWait(in); got != want {
			t.Fatalf("FormatWait(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestQueueProgressAndHeadline(t *testing.T) {
	if QueueProgress(1) != 90 || QueueProgress(9) != 10 || QueueProgress(20) != 10 || QueueProgress(0) != 100 {
		t.Fatal("unexpected progress values")
	}
	if QueueHeadline(domain.QueueTicket{Position: 1}) != "Você é o próximo!" {
		t.Fatal("expected next headline")
	}
	if QueueHeadline(domain.QueueTicket{Position: 0}) != "Sua vez chegou!" {
		t.Fatal("expected served headline")
	}
	if QueueHeadline(domain.QueueTicket{Position: 4}) != "Você é o 4º da fila" {
		t.Fatal("expected position headline")
	}
}

func TestWorkingDays(t *testing.T) {
	b := domain.Barber{Schedules: []domain.Schedule{
		{DayOfWeek: 1, IsActive: true},
		{DayOfWeek: 6, IsActive: true},
		{DayOfWeek: 3, IsActive: false},
	}}
	got := strings.Join(WorkingDays(b), ",")
	if got != "Seg,Sáb" {
		t.Fatalf("unexpected working days %q", got)
	}
	if LongDate(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)) != "qui, 5 de março" {
		t.Fatalf("unexpected long date %q", LongDate(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)))
	}
}

func TestCalendarLink(t *testing.T) {
	if CalendarLink(flow.Selection{}, time.UTC) != "" {
		t.Fatal("expected empty link for incomplete selection")
	}

	var sel flow.Selection
	sel.SetBarber(domain.Barber{ID: "b1", Name: "Carlos"})
	sel.SetService(domain.Service{ID: "s1", Name: "Corte", Duration: 30})
	sel.SetDate(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	sel.SetTimeSlot(domain.TimeSlot{StartTime: "14:00", EndTime: "14:30"})

	link := CalendarLink(sel, time.UTC)
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Host != "calendar.google.com" {
		t.Fatalf("unexpected host %q", u.Host)
	}
	q := u.Query()
	if q.Get("dates") != "20260305T140000Z/20260305T143000Z" {
		t.Fatalf("unexpected dates %q", q.Get("dates"))
	}
	if q.Get("text") != "Corte - Carlos" {
		t.Fatalf("unexpected text %q", q.Get("text"))
	}
}
