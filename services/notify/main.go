package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bigode/bigode-booking/pkg/config"
	"github.com/bigode/bigode-booking/pkg/events"
	"github.com/bigode/bigode-booking/pkg/logger"
	mw "github.com/bigode/bigode-booking/pkg/middleware"
	"github.com/bigode/bigode-booking/services/notify/internal/notifier"
)

const port = "8086"

func main() {
	cfg := config.Load()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	metrics := mw.NewHTTPMetrics("notify", prometheus.NewRegistry())
	n := notifier.New(cfg.Flow.Location(), metrics.Registerer())

	if err := eventBus.QueueSubscribe(events.All, "notify", n.Handle); err != nil {
		logger.Error("Failed to subscribe to events", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("notify"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(metrics.Handler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down notify service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Notify service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting notify service", "port", port, "subject", events.All)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Notify service error", "error", err)
		os.Exit(1)
	}
}
