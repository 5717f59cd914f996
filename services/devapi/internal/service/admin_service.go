package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/internal/utils"
	"github.com/bigode/bigode-booking/pkg/auth"
	"github.com/bigode/bigode-booking/pkg/config"
	"github.com/bigode/bigode-booking/pkg/events"
	"github.com/bigode/bigode-booking/pkg/logger"
	"github.com/bigode/bigode-booking/services/devapi/internal/repository"
	"github.com/google/uuid"
)

const dashboardWeeks = 4

// otpParams are lighter than argon2id.DefaultParams: codes live five minutes.
var otpParams = &argon2id.Params{
	Memory:      16 * 1024,
	Iterations:  2,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

type AdminService interface {
	RequestOTP(ctx context.Context, phone string) (domain.OTPChallenge, error)
	VerifyOTP(ctx context.Context, req domain.OTPVerifyRequest) (domain.AdminLogin, error)
	Dashboard(ctx context.Context, barbershopID string) (domain.DashboardStats, error)
	Agenda(ctx context.Context, barbershopID string, day time.Time) ([]domain.AgendaEntry, error)
	Barbers(ctx context.Context, barbershopID string) ([]domain.Barber, error)
	Services(ctx context.Context, barbershopID string) ([]domain.Service, error)
	CreateBookingLink(ctx context.Context, claims *auth.Claims, req domain.BookingLinkRequest) (domain.BookingLink, error)
}

type adminService struct {
	catalog      repository.CatalogRepository
	appointments repository.AppointmentRepository
	tokens       repository.TokenRepository
	otps         repository.OTPRepository
	publisher    events.Publisher
	cfg          *config.Config
	loc          *time.Location
	now          func() time.Time
}

func NewAdminService(
	catalog repository.CatalogRepository,
	appointments repository.AppointmentRepository,
	tokens repository.TokenRepository,
	otps repository.OTPRepository,
	publisher events.Publisher,
	cfg *config.Config,
) AdminService {
	return &adminService{
		catalog:      catalog,
		appointments: appointments,
		tokens:       tokens,
		otps:         otps,
		publisher:    publisher,
		cfg:          cfg,
		loc:          cfg.Flow.Location(),
		now:          time.Now,
	}
}

// canonicalPhone prefers the E.164 form of a Brazilian mobile number.
func canonicalPhone(raw string) string {
	if e164, err := utils.NormalizeBRPhone(raw); err == nil {
		return e164
	}
	return utils.NormalizePhone(raw)
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// RequestOTP answers the same way for unknown phones so the endpoint does
// not reveal which numbers belong to an admin.
func (s *adminService) RequestOTP(ctx context.Context, phone string) (domain.OTPChallenge, error) {
	phone = canonicalPhone(phone)
	if phone == "" {
		return domain.OTPChallenge{}, fmt.Errorf("%w: phone is required", ErrInvalidInput)
	}
	challenge := domain.OTPChallenge{
		Success:   true,
		Message:   "Código enviado!",
		ExpiresAt: s.now().Add(s.cfg.Auth.OTPTTL),
	}

	if _, ok := s.catalog.AdminByPhone(ctx, phone); !ok {
		logger.WarnContext(ctx, "OTP requested for unknown phone")
		return challenge, nil
	}

	code, err := generateCode()
	if err != nil {
		return domain.OTPChallenge{}, fmt.Errorf("generate code: %w", err)
	}
	hash, err := argon2id.CreateHash(code, otpParams)
	if err != nil {
		return domain.OTPChallenge{}, fmt.Errorf("hash code: %w", err)
	}
	if err := s.otps.Save(ctx, phone, hash, s.cfg.Auth.OTPTTL); err != nil {
		return domain.OTPChallenge{}, fmt.Errorf("store code: %w", err)
	}
	if s.cfg.Auth.DevMode {
		challenge.DevCode = code
	}
	logger.InfoContext(ctx, "OTP issued")
	return challenge, nil
}

func (s *adminService) VerifyOTP(ctx context.Context, req domain.OTPVerifyRequest) (domain.AdminLogin, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.AdminLogin{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	phone := canonicalPhone(req.Phone)

	hash, err := s.otps.Get(ctx, phone)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.AdminLogin{}, ErrInvalidOTP
	}
	if err != nil {
		return domain.AdminLogin{}, fmt.Errorf("load code: %w", err)
	}
	ok, err := argon2id.ComparePasswordAndHash(req.Code, hash)
	if err != nil || !ok {
		return domain.AdminLogin{}, ErrInvalidOTP
	}
	if err := s.otps.Delete(ctx, phone); err != nil {
		logger.WarnContext(ctx, "Failed to delete used OTP", "error", err)
	}

	admin, found := s.catalog.AdminByPhone(ctx, phone)
	if !found {
		return domain.AdminLogin{}, ErrInvalidOTP
	}
	token, expiresAt, err := auth.NewAdminToken(admin.ID, admin.Phone, string(admin.Role), admin.BarbershopID, s.cfg.Auth.JWTSecret, s.cfg.Auth.AccessTokenTTL)
	if err != nil {
		return domain.AdminLogin{}, fmt.Errorf("sign token: %w", err)
	}

	event := events.AdminLoggedInEvent{AdminID: admin.ID, BarbershopID: admin.BarbershopID, LoggedInAt: s.now()}
	if err := s.publisher.Publish(ctx, events.AdminLoggedIn, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish admin login event", "error", err)
	}
	return domain.AdminLogin{Admin: admin, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *adminService) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

// Dashboard summarises the last four weeks of the barbershop.
func (s *adminService) Dashboard(ctx context.Context, barbershopID string) (domain.DashboardStats, error) {
	if _, ok := s.catalog.Barbershop(ctx, barbershopID); !ok {
		return domain.DashboardStats{}, ErrNotFound
	}
	to := s.today().AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -7*dashboardWeeks)
	recs, err := s.appointments.ListByBarbershop(ctx, barbershopID, from, to)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("list appointments: %w", err)
	}

	var stats domain.DashboardStats
	dayLabels := []string{"Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}
	byDay := make(map[time.Weekday]int)
	revenue := make([]float64, dashboardWeeks)
	byBarber := make(map[string]int)

	for _, rec := range recs {
		stats.TotalAppointments++
		switch rec.Status {
		case domain.AppointmentCompleted:
			stats.Completed++
			if svc, ok := s.catalog.Service(ctx, rec.ServiceID); ok {
				stats.TotalRevenue += svc.Price
				week := int(rec.StartTime.Sub(from).Hours()/24) / 7
				if week >= 0 && week < dashboardWeeks {
					revenue[week] += svc.Price
				}
			}
		case domain.AppointmentCanceled:
			stats.Canceled++
		case domain.AppointmentNoShow:
			stats.NoShow++
		}
		byDay[rec.StartTime.In(s.loc).Weekday()]++
		byBarber[rec.BarberID]++
	}

	for i, label := range dayLabels {
		stats.AppointmentsByDay = append(stats.AppointmentsByDay, domain.DayCount{Day: label, Count: byDay[time.Weekday(i+1)]})
	}
	for i, r := range revenue {
		stats.RevenueByWeek = append(stats.RevenueByWeek, domain.WeekRevenue{Week: fmt.Sprintf("Sem %d", i+1), Revenue: r})
	}
	for _, b := range s.catalog.Barbers(ctx, barbershopID) {
		first, _, _ := strings.Cut(b.Name, " ")
		stats.AppointmentsByBarber = append(stats.AppointmentsByBarber, domain.BarberCount{Name: first, Count: byBarber[b.ID], Color: b.Color})
	}
	return stats, nil
}

func (s *adminService) Agenda(ctx context.Context, barbershopID string, day time.Time) ([]domain.AgendaEntry, error) {
	if _, ok := s.catalog.Barbershop(ctx, barbershopID); !ok {
		return nil, ErrNotFound
	}
	y, m, d := day.In(s.loc).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	recs, err := s.appointments.ListByBarbershop(ctx, barbershopID, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	entries := make([]domain.AgendaEntry, 0, len(recs))
	for _, rec := range recs {
		e := domain.AgendaEntry{
			ID:          rec.ID,
			ClientName:  rec.ClientName,
			ClientPhone: rec.ClientPhone,
			BarberID:    rec.BarberID,
			ServiceID:   rec.ServiceID,
			StartTime:   rec.StartTime,
			EndTime:     rec.EndTime,
			Status:      rec.Status,
		}
		if b, _, ok := s.catalog.Barber(ctx, rec.BarberID); ok {
			e.BarberName = b.Name
		}
		if svc, ok := s.catalog.Service(ctx, rec.ServiceID); ok {
			e.ServiceName = svc.Name
			e.ServicePrice = svc.Price
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Barbers includes inactive barbers, unlike the public list.
func (s *adminService) Barbers(ctx context.Context, barbershopID string) ([]domain.Barber, error) {
	if _, ok := s.catalog.Barbershop(ctx, barbershopID); !ok {
		return nil, ErrNotFound
	}
	return s.catalog.Barbers(ctx, barbershopID), nil
}

func (s *adminService) Services(ctx context.Context, barbershopID string) ([]domain.Service, error) {
	if _, ok := s.catalog.Barbershop(ctx, barbershopID); !ok {
		return nil, ErrNotFound
	}
	return s.catalog.Services(ctx, barbershopID), nil
}

// CreateBookingLink issues a short-lived token that resolves to the admin's
// barbershop and, optionally, one of its barbers.
func (s *adminService) CreateBookingLink(ctx context.Context, claims *auth.Claims, req domain.BookingLinkRequest) (domain.BookingLink, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.BookingLink{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if claims == nil || claims.BarbershopID != req.BarbershopID {
		return domain.BookingLink{}, ErrForbidden
	}
	if req.BarberID != nil {
		if _, shopID, ok := s.catalog.Barber(ctx, *req.BarberID); !ok || shopID != req.BarbershopID {
			return domain.BookingLink{}, fmt.Errorf("%w: unknown barber", ErrInvalidInput)
		}
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	info := domain.TokenInfo{
		BarbershopID: req.BarbershopID,
		BarberID:     req.BarberID,
		Message:      "Bem-vindo! Escolha seu barbeiro e horário.",
	}
	if req.BarberID != nil {
		info.Message = "Bem-vindo! Escolha o serviço e o horário."
	}
	ttl := s.cfg.Auth.BookingLinkTTL
	if err := s.tokens.Save(ctx, token, info, ttl); err != nil {
		return domain.BookingLink{}, fmt.Errorf("store booking token: %w", err)
	}

	link := domain.BookingLink{
		BookingURL: strings.TrimRight(s.cfg.Server.PublicURL, "/") + "/booking/" + token,
		ExpiresAt:  s.now().Add(ttl),
	}
	event := events.BookingLinkCreatedEvent{
		BarbershopID:  req.BarbershopID,
		CustomerPhone: req.CustomerPhone,
		ExpiresAt:     link.ExpiresAt,
	}
	if req.BarberID != nil {
		event.BarberID = *req.BarberID
	}
	if err := s.publisher.Publish(ctx, events.BookingLinkCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking link event", "error", err)
	}
	return link, nil
}
