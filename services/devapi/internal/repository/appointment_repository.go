package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
)

// AppointmentRecord is an appointment with the fields only the admin agenda
// shows.
type AppointmentRecord struct {
	domain.Appointment
	BarbershopID string
	ClientName   string
	ClientPhone  string
}

// ErrSlotTaken is returned by CreateIfFree when the barber already has an
// active appointment overlapping the new one.
var ErrSlotTaken = errors.New("slot already taken")

// Overlaps reports whether an active appointment intersects [start, end).
func (r AppointmentRecord) Overlaps(start, end time.Time) bool {
	if r.Status == domain.AppointmentCanceled {
		return false
	}
	return r.StartTime.Before(end) && start.Before(r.EndTime)
}

type AppointmentRepository interface {
	Create(ctx context.Context, rec AppointmentRecord) error
	// CreateIfFree checks the barber's agenda and inserts rec under one lock.
	CreateIfFree(ctx context.Context, rec AppointmentRecord) error
	ListByBarber(ctx context.Context, barberID string, from, to time.Time) ([]AppointmentRecord, error)
	ListByBarbershop(ctx context.Context, barbershopID string, from, to time.Time) ([]AppointmentRecord, error)
}

// appointmentRepository keeps appointments in memory, sorted by start time.
type appointmentRepository struct {
	mu    sync.RWMutex
	items []AppointmentRecord
}

func NewAppointmentRepository() AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(ctx context.Context, rec AppointmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(rec)
	return nil
}

func (r *appointmentRepository) CreateIfFree(ctx context.Context, rec AppointmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.BarberID == rec.BarberID && existing.Overlaps(rec.StartTime, rec.EndTime) {
			return ErrSlotTaken
		}
	}
	r.insertLocked(rec)
	return nil
}

func (r *appointmentRepository) insertLocked(rec AppointmentRecord) {
	r.items = append(r.items, rec)
	sort.SliceStable(r.items, func(i, j int) bool {
		return r.items[i].StartTime.Before(r.items[j].StartTime)
	})
}

func (r *appointmentRepository) ListByBarber(ctx context.Context, barberID string, from, to time.Time) ([]AppointmentRecord, error) {
	return r.list(func(rec AppointmentRecord) bool { return rec.BarberID == barberID }, from, to), nil
}

func (r *appointmentRepository) ListByBarbershop(ctx context.Context, barbershopID string, from, to time.Time) ([]AppointmentRecord, error) {
	return r.list(func(rec AppointmentRecord) bool { return rec.BarbershopID == barbershopID }, from, to), nil
}

// list returns the records matching keep that start in [from, to).
func (r *appointmentRepository) list(keep func(AppointmentRecord) bool, from, to time.Time) []AppointmentRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []AppointmentRecord
	for _, rec := range r.items {
		if rec.StartTime.Before(from) || !rec.StartTime.Before(to) {
			continue
		}
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// SeedAgenda books the demo agenda on day, interpreted in loc.
func SeedAgenda(ctx context.Context, repo AppointmentRepository, day time.Time, loc *time.Location) error {
	at := func(h, m int) time.Time {
		y, mo, d := day.In(loc).Date()
		return time.Date(y, mo, d, h, m, 0, 0, loc)
	}
	seed := []AppointmentRecord{
		{Appointment: domain.Appointment{ID: "seed-1", BarberID: BarberCarlosID, ServiceID: ServiceCorteID, StartTime: at(9, 0), EndTime: at(9, 30), Status: domain.AppointmentScheduled}, ClientName: "João Mendes", ClientPhone: "+5511999991001"},
		{Appointment: domain.Appointment{ID: "seed-2", BarberID: BarberRafaelID, ServiceID: ServiceComboID, StartTime: at(10, 0), EndTime: at(11, 0), Status: domain.AppointmentScheduled}, ClientName: "Pedro Alves", ClientPhone: "+5511999991002"},
		{Appointment: domain.Appointment{ID: "seed-3", BarberID: BarberCarlosID, ServiceID: ServiceBarbaID, StartTime: at(11, 0), EndTime: at(11, 30), Status: domain.AppointmentCompleted}, ClientName: "Lucas Ferreira", ClientPhone: "+5511999991003"},
		{Appointment: domain.Appointment{ID: "seed-4", BarberID: BarberFernandoID, ServiceID: ServiceCorteID, StartTime: at(14, 0), EndTime: at(14, 30), Status: domain.AppointmentScheduled}, ClientName: "Marcos Silva", ClientPhone: "+5511999991004"},
		{Appointment: domain.Appointment{ID: "seed-5", BarberID: BarberRafaelID, ServiceID: ServiceCorteID, StartTime: at(15, 30), EndTime: at(16, 0), Status: domain.AppointmentCanceled}, ClientName: "André Costa", ClientPhone: "+5511999991005"},
	}
	for _, rec := range seed {
		rec.BarbershopID = DemoBarbershopID
		if err := repo.Create(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
