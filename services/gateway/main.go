package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bigode/bigode-booking/internal/client"
	"github.com/bigode/bigode-booking/pkg/config"
	"github.com/bigode/bigode-booking/pkg/logger"
	mw "github.com/bigode/bigode-booking/pkg/middleware"
	"github.com/bigode/bigode-booking/services/gateway/internal/handlers"
	"github.com/bigode/bigode-booking/services/gateway/internal/proxy"
)

func newRouter(h *handlers.Handlers) chi.Router {
	metrics := mw.NewHTTPMetrics("gateway", prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("gateway"))
	r.Use(mw.Logging)
	r.Use(mw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", "*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID", client.SessionHeader},
		ExposedHeaders:   []string{"Idempotent-Replayed", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health)
	r.Use(metrics.Handler)

	r.Get("/status", h.Status)
	r.Handle(handlers.APIPrefix+"/*", http.HandlerFunc(h.ForwardAPI))

	return r
}

func main() {
	cfg := config.Load()

	port := getEnv("GATEWAY_PORT", "8080")
	api := proxy.NewServiceProxy("devapi", getEnv("DEVAPI_SERVICE_URL", "http://localhost:"+cfg.Server.Port))
	notify := proxy.NewServiceProxy("notify", getEnv("NOTIFY_SERVICE_URL", "http://localhost:8086"))

	h := handlers.New(api, api, notify)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      newRouter(h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down gateway service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Gateway shutdown error", "error", err)
		}
	}()

	logger.Info("Starting gateway service", "port", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Gateway server error", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
