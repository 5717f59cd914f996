package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/pkg/config"
	"github.com/bigode/bigode-booking/pkg/database"
	"github.com/bigode/bigode-booking/pkg/events"
	"github.com/bigode/bigode-booking/pkg/logger"
	"github.com/bigode/bigode-booking/services/devapi/internal/handlers"
	"github.com/bigode/bigode-booking/services/devapi/internal/repository"
	"github.com/bigode/bigode-booking/services/devapi/internal/service"
)

// DemoToken always resolves to the fixture barbershop.
const DemoToken = "demo"

type app struct {
	router chi.Router
	queues service.QueueService
}

// build wires repositories, services and handlers over rdb and seeds the demo
// data for today.
func build(ctx context.Context, cfg *config.Config, rdb *redis.Client, publisher events.Publisher) (*app, error) {
	loc := cfg.Flow.Location()

	catalog := repository.NewFixtureCatalog()
	appointmentRepo := repository.NewAppointmentRepository()
	tokenRepo := repository.NewTokenRepository(rdb)
	otpRepo := repository.NewOTPRepository(rdb)
	queueRepo := repository.NewQueueRepository(rdb)

	if err := repository.SeedAgenda(ctx, appointmentRepo, time.Now(), loc); err != nil {
		return nil, err
	}
	demo := domain.TokenInfo{
		BarbershopID: repository.DemoBarbershopID,
		Message:      "Bem-vindo à Barbearia do Bigode!",
	}
	if err := tokenRepo.Save(ctx, DemoToken, demo, 0); err != nil {
		return nil, err
	}

	bookingService := service.NewBookingService(catalog, appointmentRepo, tokenRepo, publisher, loc)
	queueService := service.NewQueueService(queueRepo, catalog, publisher, cfg.Queue)
	adminService := service.NewAdminService(catalog, appointmentRepo, tokenRepo, otpRepo, publisher, cfg)

	h := handlers.New(bookingService, queueService, adminService, loc)
	return &app{router: newRouter(cfg, rdb, h), queues: queueService}, nil
}

func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := database.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.Enabled {
		eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer eventBus.Close()
		publisher = eventBus
	}

	a, err := build(ctx, cfg, rdb, publisher)
	if err != nil {
		logger.Error("Failed to seed demo data", "error", err)
		os.Exit(1)
	}
	if cfg.Queue.AutoAdvance > 0 {
		go a.queues.RunAutoAdvance(ctx, cfg.Queue.AutoAdvance)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      a.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down devapi service...")
		cancel()

		shutdownCtx, done := context.WithTimeout(context.Background(), 30*time.Second)
		defer done()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Devapi service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting devapi service", "port", cfg.Server.Port, "demo_token", DemoToken)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Devapi service error", "error", err)
		os.Exit(1)
	}
}
