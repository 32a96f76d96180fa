package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/shared"
	"github.com/desertthunder/cinewave/internal/storage"
)

type stubIssuer struct {
	token string
	err   error
	calls int
}

func (s *stubIssuer) IssueToken(ctx context.Context) (string, error) {
	s.calls++
	return s.token, s.err
}

// localStorage is a [storage.Storage] without change reporting.
type localStorage struct {
	mu   sync.Mutex
	data map[string]string
}

func (l *localStorage) Get(key string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.data[key]
	return v, ok, nil
}

func (l *localStorage) Set(key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data[key] = value
	return nil
}

func (l *localStorage) Delete(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.data, key)
	return nil
}

var testAccount = Account{ID: 1, Email: "demo@cinewave.local", Name: "Demo", Secret: "changeme"}

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestStore(st storage.Storage, issuer TokenIssuer) *Store {
	return NewStore(StoreOpts{
		Storage: st,
		Account: testAccount,
		Issuer:  issuer,
		Now:     func() time.Time { return fixedNow },
	})
}

func TestAccountVerify(t *testing.T) {
	hash, err := HashSecret("hunter2")
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}
	hashed := Account{Email: "a@b.c", SecretHash: hash}

	tests := []struct {
		name    string
		account Account
		id      string
		secret  string
		want    bool
	}{
		{"plain match", testAccount, "demo@cinewave.local", "changeme", true},
		{"plain wrong secret", testAccount, "demo@cinewave.local", "changeMe", false},
		{"identifier case differs", testAccount, "Demo@cinewave.local", "changeme", false},
		{"empty pair", testAccount, "", "", false},
		{"hash match", hashed, "a@b.c", "hunter2", true},
		{"hash mismatch", hashed, "a@b.c", "hunter3", false},
		{"hash wins over plain", Account{Email: "a@b.c", Secret: "plain", SecretHash: hash}, "a@b.c", "plain", false},
		{"no secret configured", Account{Email: "a@b.c"}, "a@b.c", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.account.Verify(tt.id, tt.secret); got != tt.want {
				t.Errorf("Verify(%q, %q) = %v, want %v", tt.id, tt.secret, got, tt.want)
			}
		})
	}
}

func TestHashSecret(t *testing.T) {
	t.Run("rejects blank", func(t *testing.T) {
		if _, err := HashSecret("  "); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("salted", func(t *testing.T) {
		a, _ := HashSecret("same")
		b, _ := HashSecret("same")
		if a == b {
			t.Error("expected different hashes for the same secret")
		}
	})
}

func TestAccountFromConfig(t *testing.T) {
	acct := AccountFromConfig(shared.AccountConfig{ID: 7, Email: "x@y.z", Name: "X", Password: "p"})
	if acct.ID != 7 || acct.Email != "x@y.z" || acct.Name != "X" || acct.Secret != "p" {
		t.Errorf("unexpected account: %+v", acct)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("success persists session", func(t *testing.T) {
		st := storage.NewMemory()
		s := newTestStore(st, &stubIssuer{token: "tok-123"})

		sess, err := s.Authenticate(ctx, "demo@cinewave.local", "changeme")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if sess.Token != "tok-123" || !sess.LoginTime.Equal(fixedNow) {
			t.Errorf("unexpected session: %+v", sess)
		}

		cur, ok := s.Current()
		if !ok {
			t.Fatal("expected a current session")
		}
		if cur.ID != testAccount.ID || cur.Email != testAccount.Email || cur.Name != testAccount.Name {
			t.Errorf("session does not match account: %+v", cur)
		}
		if !s.IsAuthenticated() {
			t.Error("expected IsAuthenticated")
		}
		if s.Token() != "tok-123" {
			t.Errorf("Token() = %q", s.Token())
		}
	})

	t.Run("mismatch leaves state unchanged", func(t *testing.T) {
		st := storage.NewMemory()
		_ = st.Set(StorageKey, `{"id":1,"email":"demo@cinewave.local","tmdbToken":"old"}`)
		issuer := &stubIssuer{token: "new"}
		s := newTestStore(st, issuer)

		pairs := [][2]string{
			{"demo@cinewave.local", "wrong"},
			{"other@cinewave.local", "changeme"},
			{"", ""},
			{"demo@cinewave.local ", "changeme"},
		}
		for _, p := range pairs {
			_, err := s.Authenticate(ctx, p[0], p[1])
			if !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Errorf("Authenticate(%q, %q): expected ErrInvalidCredentials, got %v", p[0], p[1], err)
			}
		}

		raw, _, _ := st.Get(StorageKey)
		if raw != `{"id":1,"email":"demo@cinewave.local","tmdbToken":"old"}` {
			t.Errorf("session slot changed: %s", raw)
		}
		if issuer.calls != 0 {
			t.Errorf("issuer called %d times for rejected credentials", issuer.calls)
		}
	})

	t.Run("issuer failure writes nothing", func(t *testing.T) {
		st := storage.NewMemory()
		s := newTestStore(st, &stubIssuer{err: errors.New("boom")})

		_, err := s.Authenticate(ctx, "demo@cinewave.local", "changeme")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", err)
		}
		if _, found, _ := st.Get(StorageKey); found {
			t.Error("expected no session to be written")
		}
	})

	t.Run("missing issuer", func(t *testing.T) {
		s := newTestStore(storage.NewMemory(), nil)
		if _, err := s.Authenticate(ctx, "demo@cinewave.local", "changeme"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("overwrites prior session", func(t *testing.T) {
		issuer := &stubIssuer{token: "first"}
		s := newTestStore(storage.NewMemory(), issuer)
		_, _ = s.Authenticate(ctx, "demo@cinewave.local", "changeme")
		issuer.token = "second"
		_, _ = s.Authenticate(ctx, "demo@cinewave.local", "changeme")

		if s.Token() != "second" {
			t.Errorf("Token() = %q, want second", s.Token())
		}
	})
}

func TestCurrentMalformed(t *testing.T) {
	for _, raw := range []string{"", "not json", "[1,2]", `{"id":"x"}`, "null"} {
		t.Run(raw, func(t *testing.T) {
			st := storage.NewMemory()
			_ = st.Set(StorageKey, raw)
			s := newTestStore(st, nil)

			if sess, ok := s.Current(); ok {
				t.Errorf("expected no session for %q, got %+v", raw, sess)
			}
			if s.IsAuthenticated() {
				t.Error("expected not authenticated")
			}
			if s.Token() != "" {
				t.Error("expected empty token")
			}
		})
	}
}

func TestEnd(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(storage.NewMemory(), &stubIssuer{token: "t"})

	if err := s.End(); err != nil {
		t.Fatalf("End without session failed: %v", err)
	}

	_, _ = s.Authenticate(ctx, "demo@cinewave.local", "changeme")
	for i := range 2 {
		if err := s.End(); err != nil {
			t.Fatalf("End #%d failed: %v", i+1, err)
		}
		if s.IsAuthenticated() {
			t.Fatalf("still authenticated after End #%d", i+1)
		}
	}
}

func TestOnChange(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, st storage.Storage) {
		s := newTestStore(st, &stubIssuer{token: "t"})

		var got []*models.Session
		cancel := s.OnChange(func(sess *models.Session) { got = append(got, sess) })

		_, _ = s.Authenticate(ctx, "demo@cinewave.local", "changeme")
		_ = s.End()

		if len(got) != 2 {
			t.Fatalf("expected 2 notifications, got %d", len(got))
		}
		if got[0] == nil || got[0].Token != "t" {
			t.Errorf("first notification should carry the session, got %+v", got[0])
		}
		if got[1] != nil {
			t.Errorf("second notification should be nil, got %+v", got[1])
		}

		cancel()
		cancel()
		_, _ = s.Authenticate(ctx, "demo@cinewave.local", "changeme")
		if len(got) != 2 {
			t.Errorf("listener called after cancel")
		}
	}

	t.Run("observable storage", func(t *testing.T) {
		run(t, storage.NewMemory())
	})

	t.Run("plain storage", func(t *testing.T) {
		run(t, &localStorage{data: map[string]string{}})
	})

	t.Run("external writes", func(t *testing.T) {
		st := storage.NewMemory()
		s := newTestStore(st, nil)

		var calls int
		s.OnChange(func(*models.Session) { calls++ })
		_ = st.Set("unrelated", "x")
		_ = st.Set(StorageKey, `{"id":1,"email":"demo@cinewave.local","tmdbToken":"ext"}`)

		if calls != 1 {
			t.Errorf("expected 1 notification for the session key, got %d", calls)
		}
	})
}
