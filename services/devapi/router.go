package main

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/bigode/bigode-booking/internal/client"
	httpmw "github.com/bigode/bigode-booking/internal/http/middleware"
	"github.com/bigode/bigode-booking/pkg/config"
	mw "github.com/bigode/bigode-booking/pkg/middleware"
	"github.com/bigode/bigode-booking/services/devapi/internal/handlers"
	"github.com/bigode/bigode-booking/services/devapi/internal/repository"
)

const idempotencyTTL = 24 * time.Hour

func newRouter(cfg *config.Config, rdb *redis.Client, h *handlers.Handlers) chi.Router {
	metrics := mw.NewHTTPMetrics("devapi", prometheus.NewRegistry())
	metrics.Registerer().MustRegister(collectors.NewGoCollector())

	otpLimiter := httpmw.NewRateLimiter(rdb, httpmw.RateLimitConfig{
		Requests: cfg.Auth.OTPRequests,
		Window:   cfg.Auth.OTPWindow,
		Prefix:   "ratelimit:otp",
	})
	idempotent := mw.IdempotencyMiddleware(repository.NewIdempotencyRepository(rdb), idempotencyTTL)
	requireAdmin := httpmw.RequireAdmin(cfg.Auth.JWTSecret)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", "*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID", client.SessionHeader},
		ExposedHeaders:   []string{"Idempotent-Replayed", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("devapi"))
	r.Use(mw.Logging)
	r.Use(mw.Recoverer)
	r.Use(mw.Health)
	r.Use(metrics.Handler)

	r.Get("/auth/booking/{token}", h.ResolveBookingToken)
	r.With(requireAdmin).Post("/auth/booking-link", h.CreateBookingLink)

	r.Route("/barbershops/{id}", func(r chi.Router) {
		r.Get("/barbers", h.ListBarbers)
		r.Get("/services", h.ListServices)
	})
	r.Get("/availability", h.GetAvailability)
	r.With(idempotent).Post("/appointments", h.CreateAppointment)

	r.Route("/barbers/{id}", func(r chi.Router) {
		r.Get("/appointments", h.ListBarberAppointments)
		r.Route("/queue", func(r chi.Router) {
			r.Get("/", h.QueueStatus)
			r.Post("/join", h.JoinQueue)
			r.Get("/position", h.QueuePosition)
			r.Delete("/leave", h.LeaveQueue)
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/next", h.CallNext)
				r.Post("/open", h.SetQueueOpen(true))
				r.Post("/close", h.SetQueueOpen(false))
			})
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(otpLimiter.Middleware()).Post("/auth/request-otp", h.RequestOTP)
		r.Post("/auth/verify-otp", h.VerifyOTP)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/dashboard", h.Dashboard)
			r.Get("/agenda", h.Agenda)
			r.Get("/barbers", h.AdminBarbers)
			r.Get("/services", h.AdminServices)
		})
	})

	return r
}
