package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"chantier_backend/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) VerifyToken(ctx context.Context, idToken string) (*shared.Principal, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Principal), args.Error(1)
}

func (m *MockIdentityStore) LookupPrincipal(ctx context.Context, uid string) (*shared.Principal, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Principal), args.Error(1)
}

func (m *MockIdentityStore) CreatePrincipal(ctx context.Context, email, password, displayName string) (*shared.Principal, error) {
	args := m.Called(ctx, email, password, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Principal), args.Error(1)
}

func (m *MockIdentityStore) RevokeSessions(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *MockIdentityStore) SetRoleClaim(ctx context.Context, uid, role string) error {
	return m.Called(ctx, uid, role).Error(0)
}

func TestRevokingIdentityStore_RejectsTokensIssuedBeforeLogout(t *testing.T) {
	ctx := context.Background()
	logout := time.Date(2024, 3, 1, 10, 0, 0, 500_000_000, time.UTC)
	oldToken := &shared.Principal{UID: "u1", IssuedAt: logout.Add(-10 * time.Minute)}
	newToken := &shared.Principal{UID: "u1", IssuedAt: logout.Add(time.Minute)}

	next := new(MockIdentityStore)
	next.On("RevokeSessions", ctx, "u1").Return(nil)
	next.On("VerifyToken", ctx, "old").Return(oldToken, nil)
	next.On("VerifyToken", ctx, "new").Return(newToken, nil)

	store := NewRevokingIdentityStore(next, zap.NewNop())
	store.now = func() time.Time { return logout }

	p, err := store.VerifyToken(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UID)

	require.NoError(t, store.RevokeSessions(ctx, "u1"))

	_, err = store.VerifyToken(ctx, "old")
	assert.Equal(t, shared.CodeInvalidToken, shared.IdentityErrorCode(err))

	p, err = store.VerifyToken(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, newToken, p)
	next.AssertExpectations(t)
}

func TestRevokingIdentityStore_SameSecondTokenSurvives(t *testing.T) {
	store := NewRevokingIdentityStore(new(MockIdentityStore), zap.NewNop())
	logout := time.Date(2024, 3, 1, 10, 0, 0, 900_000_000, time.UTC)
	store.revokedAt.SetDefault("u1", logout.Truncate(time.Second))

	assert.False(t, store.IsRevoked("u1", logout.Truncate(time.Second)))
	assert.True(t, store.IsRevoked("u1", logout.Add(-2*time.Second)))
	assert.False(t, store.IsRevoked("u1", time.Time{}))
	assert.False(t, store.IsRevoked("u2", logout.Add(-time.Hour)))
}

func TestRevokingIdentityStore_UpstreamFailureIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	next := new(MockIdentityStore)
	next.On("RevokeSessions", ctx, "u1").Return(errors.New("boom"))

	store := NewRevokingIdentityStore(next, zap.NewNop())
	assert.Error(t, store.RevokeSessions(ctx, "u1"))
	assert.False(t, store.IsRevoked("u1", time.Now().Add(-time.Minute)))
}

func TestRevokingIdentityStore_DelegatesLookups(t *testing.T) {
	ctx := context.Background()
	next := new(MockIdentityStore)
	next.On("LookupPrincipal", ctx, "u1").Return(&shared.Principal{UID: "u1"}, nil)

	var store shared.IdentityStore = NewRevokingIdentityStore(next, zap.NewNop())
	p, err := store.LookupPrincipal(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UID)
}
