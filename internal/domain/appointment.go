package domain

import (
	"errors"
	"strings"
	"time"
)

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCanceled  AppointmentStatus = "canceled"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(s) {
	case AppointmentScheduled, AppointmentCompleted, AppointmentCanceled, AppointmentNoShow:
		return AppointmentStatus(s), true
	default:
		return "", false
	}
}

type Appointment struct {
	ID        string            `json:"id"`
	BarberID  string            `json:"barberId"`
	ServiceID string            `json:"serviceId"`
	StartTime time.Time         `json:"startTime"`
	EndTime   time.Time         `json:"endTime"`
	Status    AppointmentStatus `json:"status"`
}

// StartTimeLayout is ISO-8601 UTC with milliseconds.
const StartTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// AppointmentRequest is the booking body. Nothing else goes on the wire.
type AppointmentRequest struct {
	BarberID  string `json:"barberId"`
	ServiceID string `json:"serviceId"`
	StartTime string `json:"startTime"`

	IdempotencyKey string `json:"-"`
}

func NewAppointmentRequest(barberID, serviceID string, start time.Time) AppointmentRequest {
	return AppointmentRequest{
		BarberID:  barberID,
		ServiceID: serviceID,
		StartTime: start.UTC().Format(StartTimeLayout),
	}
}

func (r *AppointmentRequest) Normalize() {
	r.BarberID = strings.TrimSpace(r.BarberID)
	r.ServiceID = strings.TrimSpace(r.ServiceID)
	r.StartTime = strings.TrimSpace(r.StartTime)
}

// Start parses StartTime, accepting any RFC 3339 form.
func (r AppointmentRequest) Start() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, r.StartTime)
}

func (r AppointmentRequest) Validate() error {
	if r.BarberID == "" {
		return errors.New("barberId is required")
	}
	if r.ServiceID == "" {
		return errors.New("serviceId is required")
	}
	if _, err := r.Start(); err != nil {
		return errors.New("startTime must be an ISO-8601 timestamp")
	}
	return nil
}

// DayAppointment is one entry of a barber's upcoming agenda.
type DayAppointment struct {
	ID          string            `json:"id"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     time.Time         `json:"endTime"`
	ServiceName string            `json:"serviceName,omitempty"`
	Status      AppointmentStatus `json:"status"`
}

type BarberDay struct {
	Date         string           `json:"date"`
	Appointments []DayAppointment `json:"appointments"`
}
