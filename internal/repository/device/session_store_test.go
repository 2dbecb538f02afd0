package device

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
)

func TestSessionRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.gob")
	store := NewSessionStore(path)

	if _, ok := store.GetSession(); ok {
		t.Fatal("fresh store reported a session")
	}

	if err := store.CreateSession("alice@example.com", "Alice"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	session, ok := store.GetSession()
	if !ok {
		t.Fatal("GetSession returned absent after CreateSession")
	}
	if session.Email != "alice@example.com" || session.Name != "Alice" {
		t.Errorf("session = %+v", session)
	}
	if !session.AutoLoginEnabled {
		t.Error("CreateSession did not enable auto-login")
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.gob")

	first := NewSessionStore(path)
	if err := first.CreateSession("alice@example.com", "Alice"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	second := NewSessionStore(path)
	session, ok := second.GetSession()
	if !ok {
		t.Fatal("session did not survive reload")
	}
	if session.Email != "alice@example.com" {
		t.Errorf("session = %+v", session)
	}
}

func TestExpiredSessionIsPurged(t *testing.T) {
	store := NewSessionStore("")

	// Plant a session older than the TTL directly.
	store.cache.Set(sessionKey, Session{
		Email:            "alice@example.com",
		Name:             "Alice",
		CreatedAt:        time.Now().Add(-31 * 24 * time.Hour),
		AutoLoginEnabled: true,
	}, cache.NoExpiration)

	if _, ok := store.GetSession(); ok {
		t.Fatal("31-day-old session was returned")
	}
	// The stale entry must be gone, not just hidden.
	if _, found := store.cache.Get(sessionKey); found {
		t.Error("stale session still present after purge")
	}
}

func TestDisabledAutoLoginTreatedAsAbsent(t *testing.T) {
	store := NewSessionStore("")

	// Fresh but with auto-login switched off.
	store.cache.Set(sessionKey, Session{
		Email:     "alice@example.com",
		Name:      "Alice",
		CreatedAt: time.Now(),
	}, cache.NoExpiration)

	if _, ok := store.GetSession(); ok {
		t.Fatal("session with auto-login disabled was returned")
	}
	if _, found := store.cache.Get(sessionKey); found {
		t.Error("disabled session still present after purge")
	}
}

func TestCorruptFileTreatedAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.gob")
	if err := os.WriteFile(path, []byte("not a gob stream"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	store := NewSessionStore(path)
	if _, ok := store.GetSession(); ok {
		t.Fatal("corrupt persistence file produced a session")
	}
}

func TestCorruptValueTreatedAsAbsent(t *testing.T) {
	store := NewSessionStore("")
	store.cache.Set(sessionKey, "not a session struct", cache.NoExpiration)

	if _, ok := store.GetSession(); ok {
		t.Fatal("non-session value was returned")
	}
	if _, found := store.cache.Get(sessionKey); found {
		t.Error("corrupt value still present after purge")
	}
}

func TestClearSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.gob")
	store := NewSessionStore(path)

	if err := store.CreateSession("alice@example.com", "Alice"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := store.ClearSession(); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}
	if _, ok := store.GetSession(); ok {
		t.Fatal("session present after ClearSession")
	}

	// The cleared state must also persist.
	reloaded := NewSessionStore(path)
	if _, ok := reloaded.GetSession(); ok {
		t.Fatal("cleared session reappeared after reload")
	}
}
