package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API     APIConfig
	Flow    FlowConfig
	Server  ServerConfig
	Redis   RedisConfig
	NATS    NATSConfig
	Auth    AuthConfig
	Queue   QueueConfig
	Session SessionConfig
}

// APIConfig is what the booking client talks to.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type FlowConfig struct {
	PollInterval time.Duration
	Timezone     string
}

type ServerConfig struct {
	Port         string
	PublicURL    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type NATSConfig struct {
	URL     string
	Enabled bool
}

type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	OTPTTL         time.Duration
	BookingLinkTTL time.Duration
	OTPRequests    int
	OTPWindow      time.Duration
	DevMode        bool // echo OTP codes back in the response
}

type QueueConfig struct {
	MinutesPerClient int
	ServedTTL        time.Duration
	AutoAdvance      time.Duration // 0 disables
}

type SessionConfig struct {
	Path string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		API: APIConfig{
			BaseURL: getEnv("BIGODE_API_URL", "http://localhost:3333"),
			Timeout: getDuration("BIGODE_API_TIMEOUT", 15*time.Second),
		},
		Flow: FlowConfig{
			PollInterval: getDuration("QUEUE_POLL_INTERVAL", 5*time.Second),
			Timezone:     getEnv("BIGODE_TIMEZONE", "America/Sao_Paulo"),
		},
		Server: ServerConfig{
			Port:         getEnv("PORT", "3333"),
			PublicURL:    getEnv("PUBLIC_URL", "https://bigode.app"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Enabled: getBool("NATS_ENABLED", true),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", "dev-only-secret-change-in-prod"),
			AccessTokenTTL: getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
			OTPTTL:         getDuration("OTP_TTL", 5*time.Minute),
			BookingLinkTTL: getDuration("BOOKING_LINK_TTL", 15*time.Minute),
			OTPRequests:    getInt("OTP_RATE_LIMIT", 5),
			OTPWindow:      getDuration("OTP_RATE_WINDOW", 15*time.Minute),
			DevMode:        getBool("AUTH_DEV_MODE", true),
		},
		Queue: QueueConfig{
			MinutesPerClient: getInt("QUEUE_MINUTES_PER_CLIENT", 40),
			ServedTTL:        getDuration("QUEUE_SERVED_TTL", 10*time.Minute),
			AutoAdvance:      getDuration("QUEUE_AUTO_ADVANCE", 0),
		},
		Session: SessionConfig{
			Path: getEnv("BIGODE_SESSION_FILE", defaultSessionPath()),
		},
	}
}

// Location resolves the configured timezone, falling back to the local zone.
func (c FlowConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".bigode-session.json"
	}
	return dir + string(os.PathSeparator) + "bigode" + string(os.PathSeparator) + "session.json"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
