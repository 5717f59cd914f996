// Package session keeps the admin login between CLI invocations.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/pkg/auth"
	"github.com/bigode/bigode-booking/pkg/logger"
)

var ErrNotLoggedIn = errors.New("not logged in")

type Session struct {
	Admin           *domain.Admin `json:"admin"`
	Token           string        `json:"token"`
	HasSelectedPlan bool          `json:"hasSelectedPlan"`
	PlanID          string        `json:"planId,omitempty"`
}

func (s Session) LoggedIn() bool {
	return s.Admin != nil && s.Token != ""
}

// Store persists one Session as a JSON file.
type Store struct {
	path string
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the stored session. A missing file yields an empty session. A
// session whose token has expired is removed and reported as empty.
func (s *Store) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		logger.Warn("Discarding unreadable session file", "path", s.path, "error", err)
		return Session{}, s.Clear()
	}
	if sess.Token != "" {
		if exp, ok := auth.ExpiresAt(sess.Token); ok && !s.now().Before(exp) {
			logger.Info("Stored admin session expired", "expired_at", exp)
			return Session{}, s.Clear()
		}
	}
	return sess, nil
}

// Require is Load that fails with ErrNotLoggedIn when there is no usable session.
func (s *Store) Require() (Session, error) {
	sess, err := s.Load()
	if err != nil {
		return Session{}, err
	}
	if !sess.LoggedIn() {
		return Session{}, ErrNotLoggedIn
	}
	return sess, nil
}

func (s *Store) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Login stores a fresh login, keeping the plan choice of an earlier session.
func (s *Store) Login(login domain.AdminLogin) (Session, error) {
	prev, _ := s.Load()
	admin := login.Admin
	sess := Session{
		Admin:           &admin,
		Token:           login.Token,
		HasSelectedPlan: prev.HasSelectedPlan,
		PlanID:          prev.PlanID,
	}
	return sess, s.Save(sess)
}

func (s *Store) SelectPlan(planID string) error {
	if _, ok := domain.PlanByID(planID); !ok {
		return fmt.Errorf("unknown plan %q", planID)
	}
	sess, err := s.Require()
	if err != nil {
		return err
	}
	sess.HasSelectedPlan = true
	sess.PlanID = planID
	return s.Save(sess)
}

func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// TokenSource hands the stored bearer token to the API client on each request.
func (s *Store) TokenSource() func() string {
	return func() string {
		sess, err := s.Load()
		if err != nil {
			return ""
		}
		return sess.Token
	}
}
