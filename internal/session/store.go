package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mattter-gateway/internal/api"
	"mattter-gateway/internal/domain"
	"mattter-gateway/internal/logger"
)

type Status string

const (
	StatusLoading       Status = "LOADING"
	StatusAnonymous     Status = "ANONYMOUS"
	StatusAuthenticated Status = "AUTHENTICATED"
)

// Backend is the slice of the API client the session store depends on.
type Backend interface {
	Authenticate(ctx context.Context, username, password string) (api.AuthResult, error)
	Register(ctx context.Context, req api.RegisterRequest) (api.AuthResult, error)
	CurrentProfile(ctx context.Context) (domain.Profile, error)
}

// Store is the single source of truth for who is logged in. It owns the
// persisted token/user pair; every other component reads derived state but
// never writes it. Store implements api.CredentialSource so the HTTP client
// picks the token up per request instead of from a mutable global.
type Store struct {
	backend Backend
	persist CredentialStore

	mu     sync.Mutex
	status Status
	token  string
	user   *domain.UserRecord
}

// NewStore builds a session store in the Loading state. Initialize must run
// before any guard decision is finalized.
func NewStore(backend Backend, persist CredentialStore) *Store {
	return &Store{
		backend: backend,
		persist: persist,
		status:  StatusLoading,
	}
}

// SetBackend installs the API client after construction. The store is the
// client's credential source, so the two reference each other; the store is
// built first, then handed the client. Must be called before Initialize.
func (s *Store) SetBackend(backend Backend) {
	s.mu.Lock()
	s.backend = backend
	s.mu.Unlock()
}

// Token implements api.CredentialSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Status returns the current resolution state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// User returns the resolved user, or nil when anonymous or still loading.
func (s *Store) User() *domain.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Initialize resolves the session from persisted state, at most once per
// process start. With no saved token it settles on Anonymous immediately,
// with no network call. With a token and a cached user it goes straight to
// Authenticated. With a token alone it runs the identity check (bounded by
// the client's timeout); any failure there resolves to a clean logout, never
// a stuck Loading state.
func (s *Store) Initialize(ctx context.Context) error {
	creds, err := s.persist.Load()
	if err != nil {
		logger.Warn("failed to load persisted credentials", "error", err)
		creds = Credentials{}
	}

	if creds.Token == "" {
		s.set(StatusAnonymous, "", nil)
		return nil
	}

	if tokenExpired(creds.Token) {
		logger.Info("persisted token is expired, clearing session")
		s.Logout()
		return nil
	}

	if creds.User != nil {
		// Cached identity: skip the network round trip and accept a small
		// staleness window in exchange for instant load.
		resolved := domain.DeriveRole(*creds.User)
		s.set(StatusAuthenticated, creds.Token, &resolved)
		return nil
	}

	s.set(StatusLoading, creds.Token, nil)
	profile, err := s.backend.CurrentProfile(ctx)
	if err != nil {
		logger.Warn("identity check failed, clearing session", "error", err)
		s.Logout()
		return nil
	}

	resolved := profile.UserRecord()
	s.writeThrough(creds.Token, resolved)
	return nil
}

// Login exchanges credentials for a token, hydrates the full profile, and
// returns the resolved record for redirect decisions. When the profile
// fetch fails (an admin account without a profile, say) the basic identity
// from the login response is used instead. Credential failure leaves the
// session state untouched.
func (s *Store) Login(ctx context.Context, username, password string) (domain.UserRecord, error) {
	prevStatus, prevToken, prevUser := s.snapshot()
	s.set(StatusLoading, prevToken, prevUser)

	auth, err := s.backend.Authenticate(ctx, username, password)
	if err != nil {
		s.set(prevStatus, prevToken, prevUser)
		return domain.UserRecord{}, err
	}

	return s.adopt(ctx, auth), nil
}

// Register creates an account and signs the new user in. Failure surfaces
// the error with session state unchanged.
func (s *Store) Register(ctx context.Context, req api.RegisterRequest) (domain.UserRecord, error) {
	prevStatus, prevToken, prevUser := s.snapshot()
	s.set(StatusLoading, prevToken, prevUser)

	auth, err := s.backend.Register(ctx, req)
	if err != nil {
		s.set(prevStatus, prevToken, prevUser)
		return domain.UserRecord{}, err
	}

	return s.adopt(ctx, auth), nil
}

// adopt installs a fresh token, attempts profile hydration, applies the
// merge and override rules, and persists the result.
func (s *Store) adopt(ctx context.Context, auth api.AuthResult) domain.UserRecord {
	// The token must be visible to the credential source before the profile
	// fetch, which authenticates with it.
	s.set(StatusLoading, auth.Token, nil)

	resolved := domain.DeriveRole(auth.User)
	profile, err := s.backend.CurrentProfile(ctx)
	if err != nil {
		logger.Warn("profile fetch failed, falling back to login identity", "error", err)
	} else {
		resolved = domain.MergeUserRecords(auth.User, profile.UserRecord())
	}

	s.writeThrough(auth.Token, resolved)
	return resolved
}

// RefreshIdentity re-runs the identity check for an authenticated session,
// closing the staleness window the cached-user fast path accepts. The
// cached staff flags are carried through the merge since the profile
// endpoint never reports them. An auth rejection clears the session; a
// network failure keeps the cached identity.
func (s *Store) RefreshIdentity(ctx context.Context) error {
	status, token, user := s.snapshot()
	if status != StatusAuthenticated || user == nil {
		return nil
	}
	profile, err := s.backend.CurrentProfile(ctx)
	if err != nil {
		s.ResolveAuthFailure(err)
		return err
	}
	resolved := domain.MergeUserRecords(*user, profile.UserRecord())
	s.writeThrough(token, resolved)
	return nil
}

// Logout clears persisted and in-memory state. Idempotent; safe to call on
// an already-anonymous session.
func (s *Store) Logout() {
	if err := s.persist.Clear(); err != nil {
		logger.Warn("failed to clear persisted credentials", "error", err)
	}
	s.set(StatusAnonymous, "", nil)
}

// ResolveAuthFailure forces a logout when err is an auth failure, returning
// whether it did. Components route every upstream error through here so an
// expired token always lands back on the login screen.
func (s *Store) ResolveAuthFailure(err error) bool {
	if api.IsAuthError(err) {
		logger.Info("auth rejected upstream, clearing session")
		s.Logout()
		return true
	}
	return false
}

func (s *Store) writeThrough(token string, user domain.UserRecord) {
	u := user
	if err := s.persist.Save(Credentials{Token: token, User: &u}); err != nil {
		logger.Warn("failed to persist credentials", "error", err)
	}
	s.set(StatusAuthenticated, token, &u)
}

func (s *Store) set(status Status, token string, user *domain.UserRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.token = token
	s.user = user
}

func (s *Store) snapshot() (Status, string, *domain.UserRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.token, s.user
}

// tokenExpired opportunistically inspects a persisted token: when it parses
// as a JWT with an exp claim in the past, the session can be cleared without
// a round trip. Opaque tokens always pass through to the identity check.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
