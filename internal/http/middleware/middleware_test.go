package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/bigode/bigode-booking/internal/http/response"
	"github.com/bigode/bigode-booking/pkg/auth"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	rl := NewRateLimiter(rdb, RateLimitConfig{Requests: 2, Window: time.Minute, Prefix: "otp"})

	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/auth/request-otp", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do(); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	rec := do()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	var body response.ErrorResponse
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Code != response.CodeRateLimit {
		t.Fatalf("unexpected code %q", body.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}

	mr.FastForward(2 * time.Minute)
	if rec := do(); rec.Code != http.StatusOK {
		t.Fatalf("window should reset, got %d", rec.Code)
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	rl := NewRateLimiter(rdb, RateLimitConfig{Requests: 1, Window: time.Minute})
	mr.Close()

	for i := 0; i < 3; i++ {
		if ok, _ := rl.Allow(context.Background(), "ip:1.2.3.4"); !ok {
			t.Fatal("redis failure should allow the request")
		}
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if ip := getClientIP(req); ip != "203.0.113.7" {
		t.Fatalf("got %q", ip)
	}
}

func TestRequireAdmin(t *testing.T) {
	const secret = "test-secret"
	var seen *auth.Claims
	h := RequireAdmin(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Claims(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	token, _, err := auth.NewAdminToken("admin-1", "+5511987654321", "owner", "shop-1", secret, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	expired, _, _ := auth.NewAdminToken("admin-1", "", "owner", "shop-1", secret, -time.Hour)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantErr  string
	}{
		{"missing", "", http.StatusUnauthorized, response.CodeUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized, response.CodeInvalidToken},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, response.CodeExpiredToken},
		{"valid", "Bearer " + token, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/admin/agenda", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantErr != "" {
				var body response.ErrorResponse
				json.NewDecoder(rec.Body).Decode(&body)
				if body.Code != tt.wantErr {
					t.Fatalf("expected code %q, got %q", tt.wantErr, body.Code)
				}
				return
			}
			if seen == nil || seen.BarbershopID != "shop-1" {
				t.Fatalf("claims not propagated: %+v", seen)
			}
		})
	}
}
