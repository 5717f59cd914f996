package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/bigode/bigode-booking/internal/utils"
)

type AdminRole string

const (
	RoleOwner   AdminRole = "owner"
	RoleManager AdminRole = "manager"
	RoleBarber  AdminRole = "barber"
)

type Admin struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone"`
	BarbershopID   string    `json:"barbershopId"`
	BarbershopName string    `json:"barbershopName"`
	Role           AdminRole `json:"role"`
}

type OTPRequest struct {
	Phone string `json:"phone"`
}

type OTPChallenge struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
	DevCode   string    `json:"devCode,omitempty"`
}

type OTPVerifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (r *OTPVerifyRequest) Normalize() {
	r.Phone = utils.NormalizePhone(r.Phone)
	r.Code = strings.TrimSpace(r.Code)
}

func (r OTPVerifyRequest) Validate() error {
	if r.Phone == "" {
		return errors.New("phone is required")
	}
	if len(r.Code) != 6 {
		return errors.New("code must have 6 digits")
	}
	return nil
}

type AdminLogin struct {
	Admin     Admin     `json:"admin"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type WeekRevenue struct {
	Week    string  `json:"week"`
	Revenue float64 `json:"revenue"`
}

type BarberCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Color string `json:"color,omitempty"`
}

type DashboardStats struct {
	TotalAppointments    int           `json:"totalAppointments"`
	Completed            int           `json:"completed"`
	Canceled             int           `json:"canceled"`
	NoShow               int           `json:"noShow"`
	TotalRevenue         float64       `json:"totalRevenue"`
	AppointmentsByDay    []DayCount    `json:"appointmentsByDay"`
	RevenueByWeek        []WeekRevenue `json:"revenueByWeek"`
	AppointmentsByBarber []BarberCount `json:"appointmentsByBarber"`
}

type AgendaEntry struct {
	ID           string            `json:"id"`
	ClientName   string            `json:"clientName"`
	ClientPhone  string            `json:"clientPhone"`
	BarberID     string            `json:"barberId"`
	BarberName   string            `json:"barberName"`
	ServiceID    string            `json:"serviceId"`
	ServiceName  string            `json:"serviceName"`
	ServicePrice float64           `json:"servicePrice"`
	StartTime    time.Time         `json:"startTime"`
	EndTime      time.Time         `json:"endTime"`
	Status       AppointmentStatus `json:"status"`
}

type BookingLinkRequest struct {
	BarbershopID  string  `json:"barbershopId"`
	BarberID      *string `json:"barberId,omitempty"`
	CustomerPhone string  `json:"customerPhone"`
}

// Normalize rewrites the customer phone to E.164. Validate reports the
// problem when it cannot.
func (r *BookingLinkRequest) Normalize() {
	r.BarbershopID = strings.TrimSpace(r.BarbershopID)
	if r.BarberID != nil {
		id := strings.TrimSpace(*r.BarberID)
		if id == "" {
			r.BarberID = nil
		} else {
			r.BarberID = &id
		}
	}
	if e164, err := utils.NormalizeBRPhone(r.CustomerPhone); err == nil {
		r.CustomerPhone = e164
	}
}

func (r BookingLinkRequest) Validate() error {
	if r.BarbershopID == "" {
		return errors.New("barbershopId is required")
	}
	if _, err := utils.NormalizeBRPhone(r.CustomerPhone); err != nil {
		return err
	}
	return nil
}

type BookingLink struct {
	BookingURL string    `json:"bookingUrl"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
