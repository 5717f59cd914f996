package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/pkg/auth"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "bigode", "session.json"))
}

func testLogin(t *testing.T, ttl time.Duration) domain.AdminLogin {
	t.Helper()
	token, exp, err := auth.NewAdminToken("admin-1", "+5511999990000", "owner", "shop-1", "secret", ttl)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return domain.AdminLogin{
		Admin:     domain.Admin{ID: "admin-1", Name: "Bigode", Phone: "+5511999990000", BarbershopID: "shop-1", Role: domain.RoleOwner},
		Token:     token,
		ExpiresAt: exp,
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess.LoggedIn() {
		t.Fatal("expected empty session")
	}
	if _, err := s.Require(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Login(testLogin(t, time.Hour)); err != nil {
		t.Fatalf("Login: %v", err)
	}
	sess, err := s.Require()
	if err != nil {
		t.Fatalf("Require: %v", err)
	}
	if sess.Admin.BarbershopID != "shop-1" {
		t.Fatalf("unexpected admin %+v", sess.Admin)
	}
	if s.TokenSource()() != sess.Token {
		t.Fatal("token source should return the stored token")
	}

	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
}

func TestExpiredSessionIsDropped(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Login(testLogin(t, -time.Minute)); err != nil {
		t.Fatalf("Login: %v", err)
	}
	sess, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess.LoggedIn() {
		t.Fatal("expected expired session to be dropped")
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatal("expected session file removed")
	}
}

func TestSelectPlanSurvivesRelogin(t *testing.T) {
	s := newTestStore(t)
	if err := s.SelectPlan("pro"); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
	if _, err := s.Login(testLogin(t, time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectPlan("gold"); err == nil {
		t.Fatal("expected unknown plan error")
	}
	if err := s.SelectPlan("pro"); err != nil {
		t.Fatalf("SelectPlan: %v", err)
	}
	sess, err := s.Login(testLogin(t, time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if !sess.HasSelectedPlan || sess.PlanID != "pro" {
		t.Fatalf("expected plan kept, got %+v", sess)
	}
}

func TestCorruptFileIsDiscarded(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	sess, err := s.Load()
	if err != nil || sess.LoggedIn() {
		t.Fatalf("expected empty session, got %+v %v", sess, err)
	}
}
