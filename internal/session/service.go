package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chantier_backend/internal/access"
	"chantier_backend/internal/common"
	"chantier_backend/internal/profile"
	"chantier_backend/internal/shared"
	"chantier_backend/internal/site"

	"go.uber.org/zap"
)

// ProfileResolver resolves the profile of an authenticated principal.
type ProfileResolver interface {
	ResolveForPrincipal(ctx context.Context, principal shared.Principal) *profile.Profile
}

// Service is the session surface: credential flows plus the resolved profile.
type Service interface {
	Login(ctx context.Context, email, password string) (*Response, error)
	Signup(ctx context.Context, email, password, displayName string) (*Response, error)
	ResetPassword(ctx context.Context, email string) error
	Logout(ctx context.Context, uid string) error
	Current(ctx context.Context, principal shared.Principal) *Response
	AccessibleSites(ctx context.Context, principal shared.Principal) ([]site.Summary, error)
}

type service struct {
	resolver   ProfileResolver
	identities shared.IdentityStore
	passwords  shared.PasswordAuthenticator
	profiles   profile.Repository
	sites      site.Directory
	roles      *access.RolePolicy
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a new session service.
func NewService(
	resolver ProfileResolver,
	identities shared.IdentityStore,
	passwords shared.PasswordAuthenticator,
	profiles profile.Repository,
	sites site.Directory,
	roles *access.RolePolicy,
	logger *zap.Logger,
) Service {
	return &service{
		resolver:   resolver,
		identities: identities,
		passwords:  passwords,
		profiles:   profiles,
		sites:      sites,
		roles:      roles,
		logger:     logger.Named("session_service"),
		now:        time.Now,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (*Response, error) {
	result, err := s.passwords.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.logger.Info("Login failed", zap.String("email", email), zap.String("code", shared.IdentityErrorCode(err)))
		return nil, toAPIError(err)
	}

	principal := s.freshPrincipal(ctx, result.Principal)
	resolved := s.resolver.ResolveForPrincipal(ctx, principal)
	if resolved != nil {
		now := s.now()
		if err := s.profiles.Merge(ctx, principal.UID, profile.Patch{DerniereConnexion: &now}); err != nil {
			s.logger.Warn("Failed to update last sign-in", zap.String("uid", principal.UID), zap.Error(err))
		} else {
			resolved.DerniereConnexion = now
		}
	}

	return &Response{
		User:            toUserResponse(principal),
		Profile:         resolved,
		Token:           tokenResponse(result),
		IsAuthenticated: true,
	}, nil
}

func (s *service) Signup(ctx context.Context, email, password, displayName string) (*Response, error) {
	principal, err := s.identities.CreatePrincipal(ctx, email, password, displayName)
	if err != nil {
		return nil, toAPIError(err)
	}

	now := s.now()
	doc := &profile.Document{
		UID:               principal.UID,
		Email:             principal.Email,
		DisplayName:       displayName,
		Role:              s.roles.Infer(*principal),
		DateCreation:      profile.NativeTimestamp(now),
		DerniereConnexion: profile.NativeTimestamp(now),
	}
	if err := s.profiles.Create(ctx, doc); err != nil && !errors.Is(err, common.ErrConflict) {
		// The resolver synthesizes the profile on the next resolution.
		s.logger.Warn("Failed to write profile at signup", zap.String("uid", principal.UID), zap.Error(err))
	}

	resp := &Response{
		User:    toUserResponse(*principal),
		Profile: s.resolver.ResolveForPrincipal(ctx, *principal),
	}

	result, err := s.passwords.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.logger.Warn("Account created but sign-in failed", zap.String("uid", principal.UID), zap.Error(err))
		return resp, nil
	}
	resp.Token = tokenResponse(result)
	resp.IsAuthenticated = true
	return resp, nil
}

func (s *service) ResetPassword(ctx context.Context, email string) error {
	if err := s.passwords.SendPasswordReset(ctx, email); err != nil {
		return toAPIError(err)
	}
	return nil
}

func (s *service) Logout(ctx context.Context, uid string) error {
	if err := s.identities.RevokeSessions(ctx, uid); err != nil {
		return toAPIError(err)
	}
	return nil
}

func (s *service) Current(ctx context.Context, principal shared.Principal) *Response {
	return &Response{
		User:            toUserResponse(principal),
		Profile:         s.resolver.ResolveForPrincipal(ctx, principal),
		IsAuthenticated: true,
	}
}

func (s *service) AccessibleSites(ctx context.Context, principal shared.Principal) ([]site.Summary, error) {
	resolved := s.resolver.ResolveForPrincipal(ctx, principal)
	if resolved == nil {
		return []site.Summary{}, nil
	}
	if resolved.Role == profile.RoleClient && len(resolved.ChantierIDs) == 0 {
		return []site.Summary{}, nil
	}

	all, err := s.sites.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list sites", zap.String("uid", principal.UID), zap.Error(err))
		return nil, common.ErrServiceUnavailable.WithDetails(fmt.Sprintf("Sites could not be loaded: %v", err))
	}

	visible := all
	if resolved.Role != profile.RoleProfessional {
		visible = site.FilterByIDs(all, resolved.ChantierIDs)
	}
	summaries := make([]site.Summary, 0, len(visible))
	for _, st := range visible {
		summaries = append(summaries, st.Summary())
	}
	return summaries, nil
}

// freshPrincipal reloads the user record so custom claims are known; the
// sign-in response does not carry them.
func (s *service) freshPrincipal(ctx context.Context, p shared.Principal) shared.Principal {
	fresh, err := s.identities.LookupPrincipal(ctx, p.UID)
	if err != nil {
		s.logger.Debug("Using sign-in principal", zap.String("uid", p.UID), zap.Error(err))
		return p
	}
	return *fresh
}

func tokenResponse(result *shared.SignInResult) *shared.TokenResponse {
	return &shared.TokenResponse{
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    result.ExpiresAt,
		TokenType:    common.AuthorizationTypeBearer,
	}
}
