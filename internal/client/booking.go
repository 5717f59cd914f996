package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
)

func (c *Client) ResolveBookingToken(ctx context.Context, token string) (domain.TokenInfo, error) {
	var info domain.TokenInfo
	path := fmt.Sprintf("/auth/booking/%s", url.PathEscape(token))
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: path}, &info); err != nil {
		return domain.TokenInfo{}, fmt.Errorf("resolve booking token: %w", err)
	}
	return info, nil
}

func (c *Client) ListBarbers(ctx context.Context, barbershopID string) ([]domain.Barber, error) {
	var wrapped struct {
		Barbers []domain.Barber `json:"barbers"`
	}
	path := fmt.Sprintf("/barbershops/%s/barbers", url.PathEscape(barbershopID))
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: path}, &wrapped); err != nil {
		return nil, fmt.Errorf("list barbers: %w", err)
	}
	return wrapped.Barbers, nil
}

func (c *Client) ListServices(ctx context.Context, barbershopID string) ([]domain.Service, error) {
	var wrapped struct {
		Services []domain.Service `json:"services"`
	}
	path := fmt.Sprintf("/barbershops/%s/services", url.PathEscape(barbershopID))
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: path}, &wrapped); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return wrapped.Services, nil
}

type availabilityQuery struct {
	BarberID string `url:"barberId"`
	Date     string `url:"date"`
}

// GetAvailability lists the slots of a barber on a calendar day.
func (c *Client) GetAvailability(ctx context.Context, barberID string, date time.Time) ([]domain.TimeSlot, error) {
	var wrapped struct {
		Slots []domain.TimeSlot `json:"slots"`
	}
	q := availabilityQuery{BarberID: barberID, Date: date.Format(domain.DateLayout)}
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/availability", query: q}, &wrapped); err != nil {
		return nil, fmt.Errorf("get availability: %w", err)
	}
	return wrapped.Slots, nil
}

func (c *Client) ListBarberAppointments(ctx context.Context, barberID string) ([]domain.BarberDay, error) {
	var wrapped struct {
		Appointments []domain.BarberDay `json:"appointments"`
	}
	path := fmt.Sprintf("/barbers/%s/appointments", url.PathEscape(barberID))
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: path}, &wrapped); err != nil {
		return nil, fmt.Errorf("list barber appointments: %w", err)
	}
	return wrapped.Appointments, nil
}

// CreateAppointment books a slot. A non-empty IdempotencyKey is sent as the
// Idempotency-Key header so a retried submit does not book twice.
func (c *Client) CreateAppointment(ctx context.Context, req domain.AppointmentRequest) (domain.Appointment, error) {
	var appt domain.Appointment
	r := request{method: http.MethodPost, path: "/appointments", body: req}
	if req.IdempotencyKey != "" {
		r.headers = map[string]string{"Idempotency-Key": req.IdempotencyKey}
	}
	if err := c.doJSON(ctx, r, &appt); err != nil {
		return domain.Appointment{}, fmt.Errorf("create appointment: %w", err)
	}
	return appt, nil
}
