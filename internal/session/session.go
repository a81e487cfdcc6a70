// Package session keeps the signed-in identity between requests: the cached
// user object lives in Redis, the cached email travels in a signed cookie.
package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kruchat2026/devlog/internal/apiclient"
	"github.com/kruchat2026/devlog/internal/domain"
)

// Identity answers "who am I" for a cached email. *repository.Repository
// implements it.
type Identity interface {
	GetMe(ctx context.Context) (*domain.User, error)
}

type Session struct {
	ID    string
	Email string
	User  *domain.User
}

type Manager struct {
	store    *Store
	cookies  CookieConfig
	identity Identity
	logger   zerolog.Logger
}

func NewManager(store *Store, cookies CookieConfig, identity Identity, logger zerolog.Logger) *Manager {
	return &Manager{
		store:    store,
		cookies:  cookies,
		identity: identity,
		logger:   logger.With().Str("component", "session").Logger(),
	}
}

func (m *Manager) Store() *Store {
	return m.store
}

// Start caches user under a fresh session id and sets the cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, user *domain.User) (*Session, error) {
	sid := uuid.NewString()
	if err := m.store.Save(ctx, sid, user); err != nil {
		return nil, err
	}
	if err := m.cookies.issue(w, sid, user.Email); err != nil {
		return nil, err
	}
	return &Session{ID: sid, Email: user.Email, User: user}, nil
}

// Restore rebuilds the session from the request. A cached user is used as is,
// without a network call. Without one, the cached email is sent to getMe and a
// successful answer is cached. ErrNoSession means an anonymous visitor.
func (m *Manager) Restore(ctx context.Context, r *http.Request) (*Session, error) {
	claims, err := m.cookies.read(r)
	if err != nil {
		return nil, ErrNoSession
	}

	s := &Session{ID: claims.SessionID, Email: claims.Email}
	user, err := m.store.Load(ctx, claims.SessionID)
	switch {
	case err == nil:
		s.User = user
		return s, nil
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	if claims.Email == "" {
		return nil, ErrNoSession
	}

	user, err = m.identity.GetMe(apiclient.WithEmail(ctx, claims.Email))
	if err != nil {
		m.logger.Info().Str("email", claims.Email).Err(err).Msg("could not restore session from cached email")
		return nil, ErrNoSession
	}
	if err := m.store.Save(ctx, claims.SessionID, user); err != nil {
		return nil, err
	}
	s.User = user
	return s, nil
}

// Refresh replaces the cached user, e.g. after the remote returns newer data.
func (m *Manager) Refresh(ctx context.Context, s *Session, user *domain.User) error {
	s.User = user
	return m.store.Save(ctx, s.ID, user)
}

// End clears both the cached user and the cookie.
func (m *Manager) End(ctx context.Context, w http.ResponseWriter, s *Session) error {
	m.cookies.clear(w)
	if s == nil {
		return nil
	}
	return m.store.Clear(ctx, s.ID)
}
