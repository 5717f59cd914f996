package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("QUEUE_POLL_INTERVAL", "")
	t.Setenv("BIGODE_API_URL", "http://localhost:3333")

	cfg := Load()

	if cfg.Flow.PollInterval != 5*time.Second {
		t.Fatalf("expected default poll interval 5s, got %v", cfg.Flow.PollInterval)
	}
	if cfg.API.BaseURL != "http://localhost:3333" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.Queue.MinutesPerClient != 40 {
		t.Fatalf("expected 40 minutes per client, got %d", cfg.Queue.MinutesPerClient)
	}
	if cfg.Auth.BookingLinkTTL != 15*time.Minute {
		t.Fatalf("expected 15m booking link ttl, got %v", cfg.Auth.BookingLinkTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("QUEUE_POLL_INTERVAL", "250ms")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("NATS_ENABLED", "false")
	t.Setenv("QUEUE_MINUTES_PER_CLIENT", "not-a-number")

	cfg := Load()

	if cfg.Flow.PollInterval != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", cfg.Flow.PollInterval)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("expected redis db 3, got %d", cfg.Redis.DB)
	}
	if cfg.NATS.Enabled {
		t.Fatal("expected NATS disabled")
	}
	if cfg.Queue.MinutesPerClient != 40 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.Queue.MinutesPerClient)
	}
}

func TestFlowConfig_Location(t *testing.T) {
	if loc := (FlowConfig{}).Location(); loc != time.Local {
		t.Fatalf("empty timezone should be local, got %v", loc)
	}
	if loc := (FlowConfig{Timezone: "Not/AZone"}).Location(); loc != time.Local {
		t.Fatalf("unknown timezone should fall back to local, got %v", loc)
	}
	if loc := (FlowConfig{Timezone: "UTC"}).Location(); loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %v", loc)
	}
}
