package shared

import (
	"context"
	"strings"
	"time"
)

// Principal is the authenticated identity as reported by the identity store.
// It is read-only to the rest of the application.
type Principal struct {
	UID         string
	Email       string
	DisplayName string
	// ClaimedRole is the "role" custom claim set at provisioning time, if any.
	ClaimedRole string
	// IssuedAt is when the verified ID token was minted. Zero for looked-up principals.
	IssuedAt time.Time
}

// NormalizedEmail returns the email lower-cased and trimmed.
func (p Principal) NormalizedEmail() string {
	return NormalizeEmail(p.Email)
}

// NormalizeEmail is the single normalization applied wherever emails are compared.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IdentityStore resolves principals and manages their credentials.
type IdentityStore interface {
	// VerifyToken checks an ID token and returns the principal it was issued to.
	VerifyToken(ctx context.Context, idToken string) (*Principal, error)
	LookupPrincipal(ctx context.Context, uid string) (*Principal, error)
	CreatePrincipal(ctx context.Context, email, password, displayName string) (*Principal, error)
	RevokeSessions(ctx context.Context, uid string) error
	SetRoleClaim(ctx context.Context, uid, role string) error
}

// SignInResult is what a successful password sign-in yields.
type SignInResult struct {
	Principal    Principal
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// PasswordAuthenticator performs the credential flows only the end-user API supports.
type PasswordAuthenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error)
	SendPasswordReset(ctx context.Context, email string) error
}

// TokenResponse is returned to clients after login or signup.
type TokenResponse struct {
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
}
