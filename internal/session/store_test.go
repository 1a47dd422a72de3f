package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mattter-gateway/internal/api"
	"mattter-gateway/internal/domain"
)

// MockBackend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Authenticate(ctx context.Context, username, password string) (api.AuthResult, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(api.AuthResult), args.Error(1)
}

func (m *MockBackend) Register(ctx context.Context, req api.RegisterRequest) (api.AuthResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(api.AuthResult), args.Error(1)
}

func (m *MockBackend) CurrentProfile(ctx context.Context) (domain.Profile, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Profile), args.Error(1)
}

func expiredJWT(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return signed
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("No Token Settles Anonymous Without Network", func(t *testing.T) {
		backend := new(MockBackend)
		s := NewStore(backend, NewMemoryStore())
		assert.Equal(t, StatusLoading, s.Status())

		require.NoError(t, s.Initialize(ctx))
		assert.Equal(t, StatusAnonymous, s.Status())
		assert.Nil(t, s.User())
		backend.AssertNotCalled(t, "CurrentProfile", mock.Anything)
	})

	t.Run("Cached User Fast Path Skips Network", func(t *testing.T) {
		backend := new(MockBackend)
		persist := NewMemoryStore()
		persist.Save(Credentials{Token: "opaque-token", User: &domain.UserRecord{ID: 4, Username: "ana", Role: domain.RoleCatalyst}})
		s := NewStore(backend, persist)

		require.NoError(t, s.Initialize(ctx))
		assert.Equal(t, StatusAuthenticated, s.Status())
		assert.Equal(t, domain.RoleCatalyst, s.User().Role)
		assert.Equal(t, "opaque-token", s.Token())
		backend.AssertNotCalled(t, "CurrentProfile", mock.Anything)
	})

	t.Run("Cached Staff User Gets Admin Override", func(t *testing.T) {
		backend := new(MockBackend)
		persist := NewMemoryStore()
		persist.Save(Credentials{Token: "tok", User: &domain.UserRecord{ID: 1, IsStaff: true, Role: domain.RoleSeeker}})
		s := NewStore(backend, persist)

		require.NoError(t, s.Initialize(ctx))
		assert.Equal(t, domain.RoleAdmin, s.User().Role)
	})

	t.Run("Token Without User Runs Identity Check", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("CurrentProfile", mock.Anything).Return(domain.Profile{
			User: domain.UserRef{ID: 2, Username: "bo"},
			Role: domain.RoleSeeker,
		}, nil)
		persist := NewMemoryStore()
		persist.Save(Credentials{Token: "tok"})
		s := NewStore(backend, persist)

		require.NoError(t, s.Initialize(ctx))
		assert.Equal(t, StatusAuthenticated, s.Status())
		assert.Equal(t, "bo", s.User().Username)

		saved, _ := persist.Load()
		require.NotNil(t, saved.User, "resolved identity is written through")
		assert.Equal(t, "bo", saved.User.Username)
	})

	t.Run("Identity Check Failure Resolves To Logout", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("CurrentProfile", mock.Anything).Return(domain.Profile{}, &api.AuthError{Reason: "invalid token"})
		persist := NewMemoryStore()
		persist.Save(Credentials{Token: "dead"})
		s := NewStore(backend, persist)

		require.NoError(t, s.Initialize(ctx))
		assert.Equal(t, StatusAnonymous, s.Status(), "never stuck in Loading")
		assert.Empty(t, s.Token())

		saved, _ := persist.Load()
		assert.Empty(t, saved.Token, "persisted credentials cleared")
	})

	t.Run("Expired JWT Clears Without Network", func(t *testing.T) {
		backend := new(MockBackend)
		persist := NewMemoryStore()
		persist.Save(Credentials{Token: expiredJWT(t)})
		s := NewStore(backend, persist)

		require.NoError(t, s.Initialize(ctx))
		assert.Equal(t, StatusAnonymous, s.Status())
		backend.AssertNotCalled(t, "CurrentProfile", mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Merges Profile Over Login Identity", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("Authenticate", mock.Anything, "maya", "pw").Return(api.AuthResult{
			Token: "tok-1",
			User:  domain.UserRecord{ID: 7, Username: "maya", IsStaff: false},
		}, nil)
		backend.On("CurrentProfile", mock.Anything).Return(domain.Profile{
			User: domain.UserRef{ID: 7, Username: "maya", Email: "maya@example.com"},
			Role: domain.RoleSeeker,
		}, nil)
		persist := NewMemoryStore()
		s := NewStore(backend, persist)

		user, err := s.Login(ctx, "maya", "pw")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleSeeker, user.Role)
		assert.Equal(t, "maya@example.com", user.Email)
		assert.Equal(t, StatusAuthenticated, s.Status())
		assert.Equal(t, "tok-1", s.Token())

		saved, _ := persist.Load()
		assert.Equal(t, "tok-1", saved.Token)
	})

	t.Run("Profile Fetch Failure Falls Back To Login Identity", func(t *testing.T) {
		// The typical case is a staff account the backend refuses to profile.
		backend := new(MockBackend)
		backend.On("Authenticate", mock.Anything, "root", "pw").Return(api.AuthResult{
			Token: "tok-admin",
			User:  domain.UserRecord{ID: 1, Username: "root", IsStaff: true, Role: domain.RoleAdmin},
		}, nil)
		backend.On("CurrentProfile", mock.Anything).Return(domain.Profile{}, &api.ServerRejection{StatusCode: 500, Reason: "no profile"})
		s := NewStore(backend, NewMemoryStore())

		user, err := s.Login(ctx, "root", "pw")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, user.Role)
		assert.Equal(t, StatusAuthenticated, s.Status())
	})

	t.Run("Credential Failure Restores Previous State", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("Authenticate", mock.Anything, "maya", "wrong").Return(api.AuthResult{}, &api.ServerRejection{StatusCode: 400, Reason: "Invalid credentials"})
		s := NewStore(backend, NewMemoryStore())
		require.NoError(t, s.Initialize(ctx)) // settle on Anonymous

		_, err := s.Login(ctx, "maya", "wrong")
		require.Error(t, err)
		assert.Equal(t, StatusAnonymous, s.Status())
		assert.Nil(t, s.User())
	})

	t.Run("Staff Flag From Login Survives Profile Merge", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("Authenticate", mock.Anything, "ops", "pw").Return(api.AuthResult{
			Token: "tok-ops",
			User:  domain.UserRecord{ID: 3, Username: "ops", IsStaff: true},
		}, nil)
		backend.On("CurrentProfile", mock.Anything).Return(domain.Profile{
			User: domain.UserRef{ID: 3, Username: "ops"},
			Role: domain.RoleSeeker,
		}, nil)
		s := NewStore(backend, NewMemoryStore())

		user, err := s.Login(ctx, "ops", "pw")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, user.Role, "staff override wins over profile role")
	})
}

func TestRegister(t *testing.T) {
	backend := new(MockBackend)
	backend.On("Register", mock.Anything, mock.Anything).Return(api.AuthResult{
		Token: "tok-new",
		User:  domain.UserRecord{ID: 10, Username: "newbie"},
	}, nil)
	backend.On("CurrentProfile", mock.Anything).Return(domain.Profile{
		User: domain.UserRef{ID: 10, Username: "newbie"},
		Role: domain.RoleSeeker,
	}, nil)
	s := NewStore(backend, NewMemoryStore())

	user, err := s.Register(context.Background(), api.RegisterRequest{Username: "newbie", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSeeker, user.Role)
	assert.Equal(t, StatusAuthenticated, s.Status())
}

func TestRefreshIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("Refreshes Role From Profile", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("CurrentProfile", mock.Anything).Return(domain.Profile{
			User: domain.UserRef{ID: 4, Username: "ana"},
			Role: domain.RoleSeeker,
		}, nil)
		persist := NewMemoryStore()
		persist.Save(Credentials{Token: "tok", User: &domain.UserRecord{ID: 4, Username: "ana", Role: domain.RoleCatalyst}})
		s := NewStore(backend, persist)
		require.NoError(t, s.Initialize(ctx))

		require.NoError(t, s.RefreshIdentity(ctx))
		assert.Equal(t, domain.RoleSeeker, s.User().Role)
	})

	t.Run("Auth Rejection Clears Session", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("CurrentProfile", mock.Anything).Return(domain.Profile{}, &api.AuthError{})
		persist := NewMemoryStore()
		persist.Save(Credentials{Token: "tok", User: &domain.UserRecord{ID: 4}})
		s := NewStore(backend, persist)
		require.NoError(t, s.Initialize(ctx))

		require.Error(t, s.RefreshIdentity(ctx))
		assert.Equal(t, StatusAnonymous, s.Status())
	})

	t.Run("Network Failure Keeps Cached Identity", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("CurrentProfile", mock.Anything).Return(domain.Profile{}, &api.NetworkError{Op: "GET", Err: assert.AnError})
		persist := NewMemoryStore()
		persist.Save(Credentials{Token: "tok", User: &domain.UserRecord{ID: 4, Username: "ana", Role: domain.RoleCatalyst}})
		s := NewStore(backend, persist)
		require.NoError(t, s.Initialize(ctx))

		require.Error(t, s.RefreshIdentity(ctx))
		assert.Equal(t, StatusAuthenticated, s.Status())
		assert.Equal(t, "ana", s.User().Username)
	})

	t.Run("Anonymous Session Is A No-Op", func(t *testing.T) {
		backend := new(MockBackend)
		s := NewStore(backend, NewMemoryStore())
		require.NoError(t, s.Initialize(ctx))

		require.NoError(t, s.RefreshIdentity(ctx))
		backend.AssertNotCalled(t, "CurrentProfile", mock.Anything)
	})
}

func TestLogout(t *testing.T) {
	backend := new(MockBackend)
	persist := NewMemoryStore()
	persist.Save(Credentials{Token: "tok", User: &domain.UserRecord{ID: 4}})
	s := NewStore(backend, persist)
	require.NoError(t, s.Initialize(context.Background()))
	require.Equal(t, StatusAuthenticated, s.Status())

	s.Logout()
	assert.Equal(t, StatusAnonymous, s.Status())
	assert.Empty(t, s.Token())
	saved, _ := persist.Load()
	assert.Empty(t, saved.Token)

	assert.NotPanics(t, func() { s.Logout() }, "logout is idempotent")
	assert.Equal(t, StatusAnonymous, s.Status())
}

func TestResolveAuthFailure(t *testing.T) {
	backend := new(MockBackend)
	persist := NewMemoryStore()
	persist.Save(Credentials{Token: "tok", User: &domain.UserRecord{ID: 4}})
	s := NewStore(backend, persist)
	require.NoError(t, s.Initialize(context.Background()))

	t.Run("Non-Auth Errors Leave Session Alone", func(t *testing.T) {
		assert.False(t, s.ResolveAuthFailure(&api.ServerRejection{StatusCode: 500}))
		assert.False(t, s.ResolveAuthFailure(&api.NetworkError{Err: assert.AnError}))
		assert.False(t, s.ResolveAuthFailure(nil))
		assert.Equal(t, StatusAuthenticated, s.Status())
	})

	t.Run("Auth Error Forces Logout", func(t *testing.T) {
		assert.True(t, s.ResolveAuthFailure(&api.AuthError{Reason: "expired"}))
		assert.Equal(t, StatusAnonymous, s.Status())
	})
}
