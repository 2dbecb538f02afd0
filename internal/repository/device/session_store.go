package device

import (
	"encoding/gob"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Session is the remembered login of a single device. It is a convenience
// token, not a security boundary.
type Session struct {
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	CreatedAt        time.Time `json:"createdAt"`
	AutoLoginEnabled bool      `json:"autoLoginEnabled"`
}

// SessionTTL matches the trash retention window: a device stays signed in
// for thirty days after its last login.
const SessionTTL = 30 * 24 * time.Hour

const sessionKey = "device_session"

func init() {
	gob.Register(Session{})
}

type SessionStore struct {
	mu    sync.Mutex
	cache *cache.Cache
	path  string
}

// NewSessionStore loads any persisted session from path. A missing or
// corrupt file is treated as no saved session.
func NewSessionStore(path string) *SessionStore {
	c := cache.New(SessionTTL, time.Hour)
	if path != "" {
		_ = c.LoadFile(path)
	}
	return &SessionStore{cache: c, path: path}
}

func (s *SessionStore) CreateSession(email, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Set(sessionKey, Session{
		Email:            email,
		Name:             name,
		CreatedAt:        time.Now(),
		AutoLoginEnabled: true,
	}, cache.DefaultExpiration)
	return s.persist()
}

// GetSession returns the remembered session when one exists, has auto-login
// enabled, and is younger than SessionTTL. Anything unreadable, disabled, or
// stale is purged and reported as absent.
func (s *SessionStore) GetSession() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	x, found := s.cache.Get(sessionKey)
	if !found {
		return Session{}, false
	}
	session, ok := x.(Session)
	if !ok || session.Email == "" || !session.AutoLoginEnabled {
		s.cache.Delete(sessionKey)
		_ = s.persist()
		return Session{}, false
	}
	if time.Since(session.CreatedAt) > SessionTTL {
		s.cache.Delete(sessionKey)
		_ = s.persist()
		return Session{}, false
	}
	return session, true
}

func (s *SessionStore) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Delete(sessionKey)
	return s.persist()
}

func (s *SessionStore) persist() error {
	if s.path == "" {
		return nil
	}
	return s.cache.SaveFile(s.path)
}
