package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/pkg/events"
	"github.com/bigode/bigode-booking/pkg/logger"
	"github.com/bigode/bigode-booking/services/devapi/internal/repository"
	"github.com/google/uuid"
)

const (
	slotStep      = 30 * time.Minute
	agendaHorizon = 7
)

type BookingService interface {
	ResolveToken(ctx context.Context, token string) (domain.TokenInfo, error)
	Barbers(ctx context.Context, barbershopID string) ([]domain.Barber, error)
	Services(ctx context.Context, barbershopID string) ([]domain.Service, error)
	Availability(ctx context.Context, barberID string, day time.Time) ([]domain.TimeSlot, error)
	BarberAppointments(ctx context.Context, barberID string) ([]domain.BarberDay, error)
	CreateAppointment(ctx context.Context, req domain.AppointmentRequest) (domain.Appointment, error)
}

type bookingService struct {
	catalog      repository.CatalogRepository
	appointments repository.AppointmentRepository
	tokens       repository.TokenRepository
	publisher    events.Publisher
	loc          *time.Location
	now          func() time.Time
}

func NewBookingService(
	catalog repository.CatalogRepository,
	appointments repository.AppointmentRepository,
	tokens repository.TokenRepository,
	publisher events.Publisher,
	loc *time.Location,
) BookingService {
	return &bookingService{
		catalog:      catalog,
		appointments: appointments,
		tokens:       tokens,
		publisher:    publisher,
		loc:          loc,
		now:          time.Now,
	}
}

func (s *bookingService) ResolveToken(ctx context.Context, token string) (domain.TokenInfo, error) {
	info, err := s.tokens.Get(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.TokenInfo{}, ErrNotFound
	}
	if err != nil {
		return domain.TokenInfo{}, fmt.Errorf("get booking token: %w", err)
	}
	return info, nil
}

func (s *bookingService) Barbers(ctx context.Context, barbershopID string) ([]domain.Barber, error) {
	if _, ok := s.catalog.Barbershop(ctx, barbershopID); !ok {
		return nil, ErrNotFound
	}
	var active []domain.Barber
	for _, b := range s.catalog.Barbers(ctx, barbershopID) {
		if b.IsActive {
			active = append(active, b)
		}
	}
	return active, nil
}

func (s *bookingService) Services(ctx context.Context, barbershopID string) ([]domain.Service, error) {
	if _, ok := s.catalog.Barbershop(ctx, barbershopID); !ok {
		return nil, ErrNotFound
	}
	return s.catalog.Services(ctx, barbershopID), nil
}

func (s *bookingService) dayBounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.In(s.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}

// Availability cuts the barber's schedule for the weekday into 30 minute
// slots. Slots that overlap a live appointment or have already started are
// busy.
func (s *bookingService) Availability(ctx context.Context, barberID string, day time.Time) ([]domain.TimeSlot, error) {
	barber, _, ok := s.catalog.Barber(ctx, barberID)
	if !ok {
		return nil, ErrNotFound
	}
	dayStart, dayEnd := s.dayBounds(day)
	sched, ok := barber.ScheduleFor(dayStart.Weekday())
	if !ok {
		return []domain.TimeSlot{}, nil
	}
	open, err := domain.At(dayStart, sched.StartTime, s.loc)
	if err != nil {
		return nil, fmt.Errorf("barber %s schedule: %w", barberID, err)
	}
	closeAt, err := domain.At(dayStart, sched.EndTime, s.loc)
	if err != nil {
		return nil, fmt.Errorf("barber %s schedule: %w", barberID, err)
	}

	booked, err := s.appointments.ListByBarber(ctx, barberID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	now := s.now()
	slots := []domain.TimeSlot{}
	for start := open; !start.Add(slotStep).After(closeAt); start = start.Add(slotStep) {
		end := start.Add(slotStep)
		status := domain.SlotAvailable
		if start.Before(now) || overlapsAny(booked, start, end) {
			status = domain.SlotBusy
		}
		slots = append(slots, domain.TimeSlot{
			StartTime: start.Format("15:04"),
			EndTime:   end.Format("15:04"),
			Status:    status,
		})
	}
	return slots, nil
}

func overlapsAny(recs []repository.AppointmentRecord, start, end time.Time) bool {
	for _, rec := range recs {
		if rec.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// BarberAppointments groups the barber's appointments for the next week by
// day, skipping empty days.
func (s *bookingService) BarberAppointments(ctx context.Context, barberID string) ([]domain.BarberDay, error) {
	if _, _, ok := s.catalog.Barber(ctx, barberID); !ok {
		return nil, ErrNotFound
	}
	from, _ := s.dayBounds(s.now())
	to := from.AddDate(0, 0, agendaHorizon)
	recs, err := s.appointments.ListByBarber(ctx, barberID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	days := []domain.BarberDay{}
	for _, rec := range recs {
		if rec.Status == domain.AppointmentCanceled {
			continue
		}
		date := rec.StartTime.In(s.loc).Format(domain.DateLayout)
		if len(days) == 0 || days[len(days)-1].Date != date {
			days = append(days, domain.BarberDay{Date: date})
		}
		entry := domain.DayAppointment{
			ID:        rec.ID,
			StartTime: rec.StartTime,
			EndTime:   rec.EndTime,
			Status:    rec.Status,
		}
		if svc, ok := s.catalog.Service(ctx, rec.ServiceID); ok {
			entry.ServiceName = svc.Name
		}
		last := &days[len(days)-1]
		last.Appointments = append(last.Appointments, entry)
	}
	return days, nil
}

func (s *bookingService) CreateAppointment(ctx context.Context, req domain.AppointmentRequest) (domain.Appointment, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.Appointment{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	start, _ := req.Start()

	barber, shopID, ok := s.catalog.Barber(ctx, req.BarberID)
	if !ok {
		return domain.Appointment{}, fmt.Errorf("%w: unknown barber", ErrInvalidInput)
	}
	svc, ok := s.catalog.Service(ctx, req.ServiceID)
	if !ok {
		return domain.Appointment{}, fmt.Errorf("%w: unknown service", ErrInvalidInput)
	}
	if start.Before(s.now()) {
		return domain.Appointment{}, ErrPastDateTime
	}
	end := start.Add(time.Duration(svc.Duration) * time.Minute)

	if err := s.withinSchedule(barber, start, end); err != nil {
		return domain.Appointment{}, err
	}
	appt := domain.Appointment{
		ID:        uuid.NewString(),
		BarberID:  barber.ID,
		ServiceID: svc.ID,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		Status:    domain.AppointmentScheduled,
	}
	rec := repository.AppointmentRecord{Appointment: appt, BarbershopID: shopID, ClientName: "Cliente"}
	if err := s.appointments.CreateIfFree(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return domain.Appointment{}, ErrSlotUnavailable
		}
		return domain.Appointment{}, fmt.Errorf("failed to create appointment: %w", err)
	}

	event := events.AppointmentCreatedEvent{
		AppointmentID: appt.ID,
		BarbershopID:  shopID,
		BarberID:      appt.BarberID,
		ServiceID:     appt.ServiceID,
		StartTime:     appt.StartTime,
		EndTime:       appt.EndTime,
		CreatedAt:     s.now(),
	}
	if err := s.publisher.Publish(ctx, events.AppointmentCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish appointment created event", "error", err, "appointment_id", appt.ID)
	}

	logger.InfoContext(ctx, "Appointment created", "appointment_id", appt.ID, "barber_id", appt.BarberID)
	return appt, nil
}

func (s *bookingService) withinSchedule(barber domain.Barber, start, end time.Time) error {
	local := start.In(s.loc)
	sched, ok := barber.ScheduleFor(local.Weekday())
	if !ok {
		return ErrSlotUnavailable
	}
	open, err := domain.At(local, sched.StartTime, s.loc)
	if err != nil {
		return err
	}
	closeAt, err := domain.At(local, sched.EndTime, s.loc)
	if err != nil {
		return err
	}
	if start.Before(open) || end.After(closeAt) {
		return ErrSlotUnavailable
	}
	return nil
}
