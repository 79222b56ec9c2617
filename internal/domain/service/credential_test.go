package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hass-mcp-bridge/internal/domain/model"
	"hass-mcp-bridge/internal/ports"
)

type MockAuthPort struct {
	mock.Mock
}

func (m *MockAuthPort) Login(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockAuthPort) OpenSession(ctx context.Context, accessToken string) (ports.HubAuthSession, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.HubAuthSession), args.Error(1)
}

type MockSession struct {
	mock.Mock
}

func (m *MockSession) ListRefreshTokens(ctx context.Context) ([]model.RefreshToken, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.RefreshToken), args.Error(1)
}

func (m *MockSession) DeleteRefreshToken(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSession) CreateLongLivedToken(ctx context.Context, clientName string) (string, error) {
	args := m.Called(ctx, clientName)
	return args.String(0), args.Error(1)
}

func (m *MockSession) Close() error {
	return m.Called().Error(0)
}

type memoryRepo struct {
	token string
	saves int
}

func (r *memoryRepo) Load() (string, error) { return r.token, nil }

func (r *memoryRepo) Save(token string) error {
	r.token = token
	r.saves++
	return nil
}

func (r *memoryRepo) Delete() error {
	r.token = ""
	return nil
}

func TestGetOrCreateToken_CacheHitSkipsLogin(t *testing.T) {
	repo := &memoryRepo{token: "cached-token"}
	auth := new(MockAuthPort)
	s := NewCredentialService(repo, auth, "mcp")

	first, err := s.GetOrCreateToken(context.Background())
	require.NoError(t, err)
	second, err := s.GetOrCreateToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "cached-token", first)
	assert.Equal(t, first, second)
	assert.Zero(t, repo.saves)
	auth.AssertNotCalled(t, "Login", mock.Anything)
}

func TestGetOrCreateToken_CreatesAndPersists(t *testing.T) {
	repo := &memoryRepo{}
	session := new(MockSession)
	session.On("ListRefreshTokens", mock.Anything).Return([]model.RefreshToken{
		{ID: "1", Type: model.TokenTypeLongLived, ClientName: "mcp"},
		{ID: "2", Type: model.TokenTypeLongLived, ClientName: "other"},
		{ID: "3", Type: "normal", ClientName: "mcp"},
	}, nil)
	session.On("DeleteRefreshToken", mock.Anything, "1").Return(nil)
	session.On("CreateLongLivedToken", mock.Anything, "mcp").Return("fresh-token", nil)
	session.On("Close").Return(nil)

	auth := new(MockAuthPort)
	auth.On("Login", mock.Anything).Return("short-lived", nil)
	auth.On("OpenSession", mock.Anything, "short-lived").Return(session, nil)

	s := NewCredentialService(repo, auth, "mcp")
	token, err := s.GetOrCreateToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, "fresh-token", repo.token)
	assert.Equal(t, 1, repo.saves)

	// Only the stale token carrying our label gets revoked.
	session.AssertNotCalled(t, "DeleteRefreshToken", mock.Anything, "2")
	session.AssertNotCalled(t, "DeleteRefreshToken", mock.Anything, "3")
	session.AssertExpectations(t)

	// Second acquisition serves from memory, no second login.
	again, err := s.GetOrCreateToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, again)
	auth.AssertNumberOfCalls(t, "Login", 1)
}

func TestGetOrCreateToken_LoginFailure(t *testing.T) {
	repo := &memoryRepo{}
	auth := new(MockAuthPort)
	auth.On("Login", mock.Anything).Return("", fmt.Errorf("connection refused"))

	s := NewCredentialService(repo, auth, "mcp")
	_, err := s.GetOrCreateToken(context.Background())

	var authErr *model.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "login", authErr.Op)
	assert.Empty(t, repo.token)
}

func TestInvalidate_DropsCacheAndMemory(t *testing.T) {
	repo := &memoryRepo{token: "cached-token"}
	auth := new(MockAuthPort)
	s := NewCredentialService(repo, auth, "mcp")

	_, err := s.GetOrCreateToken(context.Background())
	require.NoError(t, err)

	s.Invalidate()
	assert.Empty(t, repo.token)

	// Next acquisition has to go through the hub again.
	auth.On("Login", mock.Anything).Return("", fmt.Errorf("down"))
	_, err = s.GetOrCreateToken(context.Background())
	assert.Error(t, err)
}
