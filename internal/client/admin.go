package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/internal/utils"
)

func (c *Client) RequestOTP(ctx context.Context, phone string) (domain.OTPChallenge, error) {
	var challenge domain.OTPChallenge
	body := domain.OTPRequest{Phone: utils.NormalizePhone(phone)}
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: "/admin/auth/request-otp", body: body}, &challenge); err != nil {
		return domain.OTPChallenge{}, fmt.Errorf("request otp: %w", err)
	}
	return challenge, nil
}

func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (domain.AdminLogin, error) {
	var login domain.AdminLogin
	body := domain.OTPVerifyRequest{Phone: phone, Code: code}
	body.Normalize()
	if err := body.Validate(); err != nil {
		return domain.AdminLogin{}, fmt.Errorf("verify otp: %w", err)
	}
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: "/admin/auth/verify-otp", body: body}, &login); err != nil {
		return domain.AdminLogin{}, fmt.Errorf("verify otp: %w", err)
	}
	return login, nil
}

func (c *Client) Dashboard(ctx context.Context) (domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/admin/dashboard"}, &stats); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("get dashboard: %w", err)
	}
	return stats, nil
}

func (c *Client) Agenda(ctx context.Context) ([]domain.AgendaEntry, error) {
	var wrapped struct {
		Appointments []domain.AgendaEntry `json:"appointments"`
	}
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/admin/agenda"}, &wrapped); err != nil {
		return nil, fmt.Errorf("get agenda: %w", err)
	}
	return wrapped.Appointments, nil
}

func (c *Client) AdminBarbers(ctx context.Context) ([]domain.Barber, error) {
	var wrapped struct {
		Barbers []domain.Barber `json:"barbers"`
	}
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/admin/barbers"}, &wrapped); err != nil {
		return nil, fmt.Errorf("list admin barbers: %w", err)
	}
	return wrapped.Barbers, nil
}

func (c *Client) AdminServices(ctx context.Context) ([]domain.Service, error) {
	var wrapped struct {
		Services []domain.Service `json:"services"`
	}
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/admin/services"}, &wrapped); err != nil {
		return nil, fmt.Errorf("list admin services: %w", err)
	}
	return wrapped.Services, nil
}

// CreateBookingLink validates the customer phone locally before asking the
// API for a link.
func (c *Client) CreateBookingLink(ctx context.Context, req domain.BookingLinkRequest) (domain.BookingLink, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.BookingLink{}, fmt.Errorf("create booking link: %w", err)
	}
	var link domain.BookingLink
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: "/auth/booking-link", body: req}, &link); err != nil {
		return domain.BookingLink{}, fmt.Errorf("create booking link: %w", err)
	}
	return link, nil
}
