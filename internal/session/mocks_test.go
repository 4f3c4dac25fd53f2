package session

import (
	"context"

	"chantier_backend/internal/profile"
	"chantier_backend/internal/shared"
	"chantier_backend/internal/site"

	"github.com/stretchr/testify/mock"
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

type MockPasswordAuthenticator struct {
	mock.Mock
}

func (m *MockPasswordAuthenticator) SignInWithPassword(ctx context.Context, email, password string) (*shared.SignInResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.SignInResult), args.Error(1)
}

func (m *MockPasswordAuthenticator) SendPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByUID(ctx context.Context, uid string) (*profile.Document, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Document), args.Error(1)
}

func (m *MockProfileRepository) Create(ctx context.Context, doc *profile.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockProfileRepository) Merge(ctx context.Context, uid string, patch profile.Patch) error {
	return m.Called(ctx, uid, patch).Error(0)
}

func (m *MockProfileRepository) List(ctx context.Context) ([]profile.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]profile.Document), args.Error(1)
}

type stubSites []site.Site

func (s stubSites) List(context.Context) ([]site.Site, error) { return s, nil }

// stubResolver returns a copy of the configured profile for each uid.
type stubResolver map[string]profile.Profile

func (s stubResolver) ResolveForPrincipal(_ context.Context, p shared.Principal) *profile.Profile {
	resolved, ok := s[p.UID]
	if !ok {
		return nil
	}
	return &resolved
}
