package auth

import (
	"testing"
	"time"
)

func TestAdminToken_RoundTrip(t *testing.T) {
	token, exp, err := NewAdminToken("admin-1", "+5511999990001", "owner", "shop-1", "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := Parse(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Sub != "admin-1" || claims.Role != "owner" || claims.BarbershopID != "shop-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	got, ok := ExpiresAt(token)
	if !ok {
		t.Fatal("expected exp claim")
	}
	if got.Unix() != exp.Unix() {
		t.Fatalf("exp mismatch: %v vs %v", got, exp)
	}
}

func TestParse_Rejects(t *testing.T) {
	token, _, _ := NewAdminToken("admin-1", "", "owner", "shop-1", "secret", time.Hour)
	if _, err := Parse(token, "other"); err == nil {
		t.Fatal("expected signature error")
	}

	expired, _, _ := NewAdminToken("admin-1", "", "owner", "shop-1", "secret", -time.Minute)
	if _, err := Parse(expired, "secret"); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestExpiresAt_Garbage(t *testing.T) {
	if _, ok := ExpiresAt("mock-jwt-token-12345"); ok {
		t.Fatal("non-JWT token should report no expiry")
	}
}
