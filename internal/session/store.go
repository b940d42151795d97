// Package session owns the current user, the bearer token, and the loading
// flag. It is constructed explicitly and injected into everything that needs
// it; there is no global session state.
package session

import (
	"context"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"eduassess/internal/credstore"
	"eduassess/internal/domain"
	"eduassess/internal/logger"
)

// LandingRoute is where unauthenticated navigation ends up.
const LandingRoute = "/"

// logoutMarker is the query parameter an upstream identity provider appends
// after a remote sign-out.
const logoutMarker = "loggedout"

// Store holds the session state for one running client.
type Store struct {
	mu       sync.Mutex
	backend  domain.Backend
	creds    *credstore.Store
	navigate func(route string)

	user    *domain.User
	token   string
	loading bool
}

// New creates a session store. navigate is invoked with the target route on
// logout; pass nil when the caller handles navigation itself.
func New(backend domain.Backend, creds *credstore.Store, navigate func(route string)) *Store {
	if navigate == nil {
		navigate = func(string) {}
	}
	return &Store{
		backend:  backend,
		creds:    creds,
		navigate: navigate,
		loading:  true,
	}
}

// Bootstrap restores the session from the credential store. If a stored
// token exists the user is re-fetched before the store declares itself
// ready; a failed fetch silently downgrades to "no user" after clearing all
// stored credentials. Bootstrap never returns an authentication error.
func (s *Store) Bootstrap(ctx context.Context) {
	token, cachedUser, err := s.creds.Load()
	if err != nil {
		logger.Get().Warn("Failed to read credential store", zap.Error(err))
	}

	if token == "" {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.token = token
	s.user = cachedUser
	s.mu.Unlock()

	s.fetchUser(ctx, token)
}

// ConsumeLogoutMarker performs the one-time logged-out check on the entry
// URL. When the marker is present, all stored credentials are cleared and
// the returned URL has the marker scrubbed. The second return value reports
// whether the marker was found.
func (s *Store) ConsumeLogoutMarker(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, false
	}
	q := u.Query()
	if q.Get(logoutMarker) == "" {
		return rawURL, false
	}

	s.clearAll()
	q.Del(logoutMarker)
	u.RawQuery = q.Encode()
	return u.String(), true
}

// Login stores the token, then fetches and stores the current user. The
// loading flag is set for the duration of the fetch. On fetch failure the
// store downgrades to unauthenticated and the error is returned for the
// caller's feedback.
func (s *Store) Login(ctx context.Context, token string) error {
	if err := s.creds.SaveToken(token); err != nil {
		logger.Get().Warn("Failed to persist token", zap.Error(err))
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	return s.fetchUser(ctx, token)
}

// Logout clears the user, token, and cached user record, then navigates to
// the landing route.
func (s *Store) Logout() {
	s.clearAll()
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.navigate(LandingRoute)
}

// CurrentUser returns the authenticated user, or nil.
func (s *Store) CurrentUser() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// IsLoading reports whether a user fetch is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Token returns the stored bearer token, or empty when unauthenticated. The
// token is opaque: it is passed through to backend calls, never parsed.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// fetchUser refreshes the user record for the given token. Any failure,
// network or non-success status, clears all credentials and leaves the
// store unauthenticated; the user sees the login screen, not an error state.
func (s *Store) fetchUser(ctx context.Context, token string) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	user, err := s.backend.CurrentUser(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		logger.Get().Info("User fetch failed, downgrading to unauthenticated", zap.Error(err))
		s.user = nil
		s.token = ""
		if clearErr := s.creds.Clear(); clearErr != nil {
			logger.Get().Warn("Failed to clear credential store", zap.Error(clearErr))
		}
		return err
	}

	s.user = user
	if saveErr := s.creds.SaveUser(user); saveErr != nil {
		logger.Get().Warn("Failed to cache user record", zap.Error(saveErr))
	}
	return nil
}

func (s *Store) clearAll() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
	if err := s.creds.Clear(); err != nil {
		logger.Get().Warn("Failed to clear credential store", zap.Error(err))
	}
}
