// File: internal/auth/revocation.go
package auth

import (
	"context"
	"errors"
	"time"

	"chantier_backend/internal/shared"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// IDTokenLifetime is how long Firebase ID tokens stay valid. Revocations only
// need to be remembered for that long.
const IDTokenLifetime = time.Hour

// RevokingIdentityStore decorates an identity store so that ID tokens minted
// before a logout are refused immediately, without a network round trip per
// request.
type RevokingIdentityStore struct {
	shared.IdentityStore
	revokedAt *cache.Cache
	logger    *zap.Logger
	now       func() time.Time
}

// NewRevokingIdentityStore wraps next with an in-memory revocation list.
func NewRevokingIdentityStore(next shared.IdentityStore, logger *zap.Logger) *RevokingIdentityStore {
	return &RevokingIdentityStore{
		IdentityStore: next,
		revokedAt:     cache.New(IDTokenLifetime, 10*time.Minute),
		logger:        logger.Named("revocations"),
		now:           time.Now,
	}
}

// VerifyToken verifies the token upstream, then rejects it when it predates a
// revocation of the same uid.
func (s *RevokingIdentityStore) VerifyToken(ctx context.Context, idToken string) (*shared.Principal, error) {
	principal, err := s.IdentityStore.VerifyToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if s.IsRevoked(principal.UID, principal.IssuedAt) {
		s.logger.Debug("Rejected token issued before revocation", zap.String("uid", principal.UID))
		return nil, shared.NewIdentityError(shared.CodeInvalidToken, errors.New("ID token has been revoked"))
	}
	return principal, nil
}

// RevokeSessions revokes upstream and remembers the cutoff locally.
func (s *RevokingIdentityStore) RevokeSessions(ctx context.Context, uid string) error {
	if err := s.IdentityStore.RevokeSessions(ctx, uid); err != nil {
		return err
	}
	// Token iat has second precision.
	s.revokedAt.Set(uid, s.now().Truncate(time.Second), cache.DefaultExpiration)
	return nil
}

// IsRevoked reports whether a token issued at issuedAt for uid was revoked.
// Tokens without an issue time are never considered revoked.
func (s *RevokingIdentityStore) IsRevoked(uid string, issuedAt time.Time) bool {
	if issuedAt.IsZero() {
		return false
	}
	v, ok := s.revokedAt.Get(uid)
	if !ok {
		return false
	}
	cutoff, ok := v.(time.Time)
	return ok && issuedAt.Before(cutoff)
}
