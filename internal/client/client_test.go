package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return New(ts.URL+"/", opts...)
}

func TestClient_ResolveBookingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/booking/abc123" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"barbershopId":"shop-1","barberId":null,"message":"Bem-vindo!"}`))
	})

	info, err := c.ResolveBookingToken(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("ResolveBookingToken() error = %v", err)
	}
	if info.BarbershopID != "shop-1" || info.BarberID != nil {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestClient_GetAvailability_EncodesQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/availability" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("barberId"); got != "b1" {
			t.Fatalf("barberId = %s", got)
		}
		if got := r.URL.Query().Get("date"); got != "2025-03-14" {
			t.Fatalf("date = %s", got)
		}
		w.Write([]byte(`{"slots":[{"startTime":"09:00","endTime":"09:30"},{"startTime":"09:30","endTime":"10:00","status":"busy"}]}`))
	})

	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local)
	slots, err := c.GetAvailability(context.Background(), "b1", day)
	if err != nil {
		t.Fatalf("GetAvailability() error = %v", err)
	}
	if len(slots) != 2 || slots[0].Busy() || !slots[1].Busy() {
		t.Fatalf("unexpected slots %+v", slots)
	}
}

func TestClient_CreateAppointment_SendsBodyAndIdempotencyKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/appointments" {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Idempotency-Key"); got != "key-1" {
			t.Fatalf("Idempotency-Key = %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("body: %v", err)
		}
		if len(body) != 3 || body["barberId"] != "b1" || body["serviceId"] != "s1" || body["startTime"] != "2025-03-14T12:00:00.000Z" {
			t.Fatalf("unexpected body %s", raw)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"apt-1","barberId":"b1","serviceId":"s1","startTime":"2025-03-14T12:00:00Z","endTime":"2025-03-14T12:30:00Z","status":"scheduled"}`))
	})

	req := domain.NewAppointmentRequest("b1", "s1", time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))
	req.IdempotencyKey = "key-1"
	appt, err := c.CreateAppointment(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateAppointment() error = %v", err)
	}
	if appt.ID != "apt-1" || appt.Status != domain.AppointmentScheduled {
		t.Fatalf("unexpected appointment %+v", appt)
	}
}

func TestClient_Queue_SendsSessionHeader(t *testing.T) {
	var sessions []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		sessions = append(sessions, r.Header.Get(SessionHeader))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/barbers/b1/queue/join":
			w.Write([]byte(`{"position":3,"estimatedWaitTime":120,"queueLength":4}`))
		case r.Method == http.MethodGet && r.URL.Path == "/barbers/b1/queue/position":
			w.Write([]byte(`{"position":2,"estimatedWaitTime":80,"queueLength":3}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/barbers/b1/queue/leave":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}, WithSessionID("session-1"))

	ctx := context.Background()
	ticket, err := c.JoinQueue(ctx, "b1")
	if err != nil || ticket.Position != 3 {
		t.Fatalf("JoinQueue() = %+v, %v", ticket, err)
	}
	ticket, err = c.PollQueue(ctx, "b1")
	if err != nil || ticket.Position != 2 {
		t.Fatalf("PollQueue() = %+v, %v", ticket, err)
	}
	if err := c.LeaveQueue(ctx, "b1"); err != nil {
		t.Fatalf("LeaveQueue() error = %v", err)
	}
	for _, s := range sessions {
		if s != "session-1" {
			t.Fatalf("session header = %q", s)
		}
	}
}

func TestClient_Non2xx_ReturnsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"Horário indisponível","code":"SLOT_UNAVAILABLE"}`))
	})

	_, err := c.CreateAppointment(context.Background(), domain.AppointmentRequest{BarberID: "b1", ServiceID: "s1", StartTime: "2025-03-14T12:00:00.000Z"})
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Message != "Horário indisponível" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if !IsCode(err, "SLOT_UNAVAILABLE") || !IsStatus(err, http.StatusConflict) {
		t.Fatal("IsCode/IsStatus should match the wrapped error")
	}
}

func TestClient_Non2xx_PlainBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.ListBarbers(context.Background(), "shop-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "boom" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestClient_BearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("Authorization = %q", got)
		}
		w.Write([]byte(`{"appointments":[{"id":"1","clientName":"João","barberName":"Carlos","servicePrice":45,"status":"scheduled"}]}`))
	}, WithTokenSource(func() string { return "tok" }))

	agenda, err := c.Agenda(context.Background())
	if err != nil || len(agenda) != 1 || agenda[0].ClientName != "João" {
		t.Fatalf("Agenda() = %+v, %v", agenda, err)
	}
}

func TestClient_CreateBookingLink_ValidatesPhone(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		var body domain.BookingLinkRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.CustomerPhone != "+5511987654321" {
			t.Fatalf("phone = %q", body.CustomerPhone)
		}
		w.Write([]byte(`{"bookingUrl":"https://bigode.app/booking/x","expiresAt":"2025-03-14T12:15:00Z"}`))
	})

	if _, err := c.CreateBookingLink(context.Background(), domain.BookingLinkRequest{BarbershopID: "shop-1", CustomerPhone: "123"}); err == nil {
		t.Fatal("expected local validation error")
	}
	if called {
		t.Fatal("invalid phone must not reach the API")
	}

	link, err := c.CreateBookingLink(context.Background(), domain.BookingLinkRequest{BarbershopID: "shop-1", CustomerPhone: "11 98765-4321"})
	if err != nil || link.BookingURL == "" {
		t.Fatalf("CreateBookingLink() = %+v, %v", link, err)
	}
}
