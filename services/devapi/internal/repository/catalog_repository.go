package repository

import (
	"context"
	"sync"

	"github.com/bigode/bigode-booking/internal/domain"
)

// Fixture identifiers. The demo booking token resolves to DemoBarbershopID.
const (
	DemoBarbershopID = "550e8400-e29b-41d4-a716-446655440200"
	DemoAdminID      = "550e8400-e29b-41d4-a716-446655440100"

	BarberCarlosID   = "550e8400-e29b-41d4-a716-446655440201"
	BarberRafaelID   = "550e8400-e29b-41d4-a716-446655440202"
	BarberFernandoID = "550e8400-e29b-41d4-a716-446655440203"

	ServiceCorteID       = "550e8400-e29b-41d4-a716-446655440210"
	ServiceBarbaID       = "550e8400-e29b-41d4-a716-446655440211"
	ServiceComboID       = "550e8400-e29b-41d4-a716-446655440212"
	ServiceInfantilID    = "550e8400-e29b-41d4-a716-446655440213"
	ServiceSobrancelhaID = "550e8400-e29b-41d4-a716-446655440214"
)

type Barbershop struct {
	ID   string
	Name string
}

// CatalogRepository is the read side of barbershops, barbers, services and
// their admins.
type CatalogRepository interface {
	Barbershop(ctx context.Context, id string) (Barbershop, bool)
	Barbers(ctx context.Context, barbershopID string) []domain.Barber
	Barber(ctx context.Context, id string) (domain.Barber, string, bool)
	Services(ctx context.Context, barbershopID string) []domain.Service
	Service(ctx context.Context, id string) (domain.Service, bool)
	AdminByPhone(ctx context.Context, phone string) (domain.Admin, bool)
}

// Catalog is an in-memory CatalogRepository.
type Catalog struct {
	mu          sync.RWMutex
	shops       map[string]Barbershop
	barbers     map[string][]domain.Barber
	barberShop  map[string]string
	services    map[string][]domain.Service
	adminsPhone map[string]domain.Admin
}

func NewCatalogRepository() *Catalog {
	return &Catalog{
		shops:       map[string]Barbershop{},
		barbers:     map[string][]domain.Barber{},
		barberShop:  map[string]string{},
		services:    map[string][]domain.Service{},
		adminsPhone: map[string]domain.Admin{},
	}
}

func (r *Catalog) AddBarbershop(shop Barbershop, barbers []domain.Barber, services []domain.Service, admins ...domain.Admin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shops[shop.ID] = shop
	r.barbers[shop.ID] = barbers
	for _, b := range barbers {
		r.barberShop[b.ID] = shop.ID
	}
	r.services[shop.ID] = services
	for _, a := range admins {
		r.adminsPhone[a.Phone] = a
	}
}

func (r *Catalog) Barbershop(ctx context.Context, id string) (Barbershop, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	shop, ok := r.shops[id]
	return shop, ok
}

func (r *Catalog) Barbers(ctx context.Context, barbershopID string) []domain.Barber {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Barber(nil), r.barbers[barbershopID]...)
}

// Barber also returns the id of the barbershop the barber works at.
func (r *Catalog) Barber(ctx context.Context, id string) (domain.Barber, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	shopID, ok := r.barberShop[id]
	if !ok {
		return domain.Barber{}, "", false
	}
	for _, b := range r.barbers[shopID] {
		if b.ID == id {
			return b, shopID, true
		}
	}
	return domain.Barber{}, "", false
}

func (r *Catalog) Services(ctx context.Context, barbershopID string) []domain.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Service(nil), r.services[barbershopID]...)
}

func (r *Catalog) Service(ctx context.Context, id string) (domain.Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, list := range r.services {
		for _, s := range list {
			if s.ID == id {
				return s, true
			}
		}
	}
	return domain.Service{}, false
}

func (r *Catalog) AdminByPhone(ctx context.Context, phone string) (domain.Admin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adminsPhone[phone]
	return a, ok
}

func week(start, end string, days ...int) []domain.Schedule {
	out := make([]domain.Schedule, 0, len(days))
	for _, d := range days {
		out = append(out, domain.Schedule{DayOfWeek: d, StartTime: start, EndTime: end, IsActive: true})
	}
	return out
}

// NewFixtureCatalog returns the demo barbershop with three barbers, five
// services and one owner.
func NewFixtureCatalog() *Catalog {
	r := NewCatalogRepository()

	carlos := week("09:00", "18:00", 1, 2, 3, 4, 5)
	carlos = append(carlos, domain.Schedule{DayOfWeek: 6, StartTime: "09:00", EndTime: "14:00", IsActive: true})
	fernando := week("08:00", "17:00", 2, 3, 4, 5)
	fernando = append(fernando, domain.Schedule{DayOfWeek: 6, StartTime: "08:00", EndTime: "15:00", IsActive: true})

	r.AddBarbershop(
		Barbershop{ID: DemoBarbershopID, Name: "Barbearia do Bigode"},
		[]domain.Barber{
			{ID: BarberCarlosID, Name: "Carlos Silva", Phone: "+5511999990001", Color: "#722F37", IsActive: true, Schedules: carlos},
			{ID: BarberRafaelID, Name: "Rafael Santos", Phone: "+5511999990003", Color: "#D4AF37", IsActive: true, Schedules: week("10:00", "19:00", 1, 2, 3, 4, 5)},
			{ID: BarberFernandoID, Name: "Fernando Oliveira", Phone: "+5511999990004", Color: "#2D5A3D", IsActive: true, Schedules: fernando},
		},
		[]domain.Service{
			{ID: ServiceCorteID, Name: "Corte Masculino", Duration: 30, Price: 45},
			{ID: ServiceBarbaID, Name: "Barba Completa", Duration: 30, Price: 35},
			{ID: ServiceComboID, Name: "Combo Corte + Barba", Duration: 60, Price: 70},
			{ID: ServiceInfantilID, Name: "Corte Infantil", Duration: 25, Price: 35},
			{ID: ServiceSobrancelhaID, Name: "Sobrancelha", Duration: 15, Price: 15},
		},
		domain.Admin{
			ID:             DemoAdminID,
			Name:           "Carlos Silva",
			Phone:          "+5511999990001",
			BarbershopID:   DemoBarbershopID,
			BarbershopName: "Barbearia do Bigode",
			Role:           domain.RoleOwner,
		},
	)
	return r
}
