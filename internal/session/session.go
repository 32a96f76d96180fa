// Package session holds the single authenticated identity.
//
// The [Store] keeps at most one [models.Session] in a [storage.Storage] slot. Authentication checks
// the credential pair with a [Verifier], asks a [TokenIssuer] (TMDB) for an opaque token and
// overwrites the slot. Unreadable or malformed slot contents read as "no session".
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/shared"
	"github.com/desertthunder/cinewave/internal/storage"
)

// StorageKey is the slot holding the serialized session.
const StorageKey = "cinewave-current-user"

// TokenIssuer obtains an opaque access token from an external authority.
type TokenIssuer interface {
	IssueToken(ctx context.Context) (string, error)
}

// StoreOpts contains the dependencies of a [Store].
type StoreOpts struct {
	Storage storage.Storage
	Account Account
	// Verifier defaults to Account.
	Verifier Verifier
	Issuer   TokenIssuer
	Logger   *log.Logger
	Now      func() time.Time
}

// Store is the session store.
type Store struct {
	storage  storage.Storage
	account  Account
	verifier Verifier
	issuer   TokenIssuer
	logger   *log.Logger
	now      func() time.Time

	mu        sync.Mutex
	nextID    int
	listeners map[int]func(*models.Session)
	unwatch   func()
}

// NewStore creates a [Store]. Storage and Issuer are required.
func NewStore(opts StoreOpts) *Store {
	if opts.Verifier == nil {
		opts.Verifier = opts.Account
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Store{
		storage:   opts.Storage,
		account:   opts.Account,
		verifier:  opts.Verifier,
		issuer:    opts.Issuer,
		logger:    opts.Logger,
		now:       opts.Now,
		listeners: make(map[int]func(*models.Session)),
	}
}

// Authenticate verifies the pair, obtains a token and persists a new session, replacing any prior one.
//
// Nothing is written on failure. A rejected pair wraps [shared.ErrInvalidCredentials]; an issuer
// failure wraps [shared.ErrAuthFailed].
func (s *Store) Authenticate(ctx context.Context, identifier, secret string) (*models.Session, error) {
	s.logger.Info("login attempt", "identifier", identifier)

	if !s.verifier.Verify(identifier, secret) {
		s.logger.Warn("credentials rejected", "identifier", identifier)
		return nil, fmt.Errorf("%w: unknown email or wrong password", shared.ErrInvalidCredentials)
	}

	if s.issuer == nil {
		return nil, fmt.Errorf("%w: no token issuer configured", shared.ErrAuthFailed)
	}

	token, err := s.issuer.IssueToken(ctx)
	if err != nil {
		s.logger.Error("token issuance failed", "error", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	sess := &models.Session{
		ID:        s.account.ID,
		Email:     s.account.Email,
		Name:      s.account.Name,
		Token:     token,
		LoginTime: s.now().UTC(),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode session: %v", shared.ErrAuthFailed, err)
	}

	if err := s.storage.Set(StorageKey, string(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	s.logger.Info("session created", "id", sess.ID)
	s.changed()
	return sess, nil
}

// Current returns the persisted session, or false when there is none or it cannot be decoded.
func (s *Store) Current() (*models.Session, bool) {
	raw, found, err := s.storage.Get(StorageKey)
	if err != nil {
		s.logger.Warn("session slot unreadable", "error", err)
		return nil, false
	}
	if !found || raw == "" {
		return nil, false
	}

	var sess *models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.logger.Warn("session slot malformed, treating as logged out", "error", err)
		return nil, false
	}
	if sess == nil {
		return nil, false
	}
	return sess, true
}

// End deletes the persisted session. Calling it without a session is a no-op.
func (s *Store) End() error {
	if err := s.storage.Delete(StorageKey); err != nil {
		return err
	}
	s.logger.Info("session ended")
	s.changed()
	return nil
}

// IsAuthenticated reports whether [Store.Current] finds a session.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

// Token returns the access token of the current session, or "".
func (s *Store) Token() string {
	if sess, ok := s.Current(); ok {
		return sess.Token
	}
	return ""
}

// OnChange registers fn to receive the session (nil when logged out) after each change.
//
// With an [storage.Observable] storage, changes written by other processes are delivered too.
func (s *Store) OnChange(fn func(*models.Session)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	if obs, ok := s.storage.(storage.Observable); ok && s.unwatch == nil {
		s.unwatch = obs.Watch(func(key string) {
			if key == StorageKey {
				s.broadcast()
			}
		})
	}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			if len(s.listeners) == 0 && s.unwatch != nil {
				s.unwatch()
				s.unwatch = nil
			}
			s.mu.Unlock()
		})
	}
}

// changed notifies listeners after a local write when the storage cannot report it.
func (s *Store) changed() {
	if _, ok := s.storage.(storage.Observable); ok {
		return
	}
	s.broadcast()
}

func (s *Store) broadcast() {
	s.mu.Lock()
	fns := make([]func(*models.Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	if len(fns) == 0 {
		return
	}

	sess, ok := s.Current()
	if !ok {
		sess = nil
	}
	for _, fn := range fns {
		fn(sess)
	}
}
