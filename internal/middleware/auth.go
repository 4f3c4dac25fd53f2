// File: internal/middleware/auth.go
package middleware

import (
	"context"

	"chantier_backend/internal/common"
	"chantier_backend/internal/profile"
	"chantier_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the Firebase ID token carried as a Bearer token and
// stores the principal in the context.
func AuthMiddleware(identity shared.IdentityStore, logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("auth_middleware")
	return func(c *gin.Context) {
		if c.GetHeader(common.AuthorizationHeader) == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}

		token := common.GetTokenFromContext(c)
		if token == "" {
			logger.Debug("Authorization header format invalid")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		principal, err := identity.VerifyToken(c.Request.Context(), token)
		if err != nil {
			logger.Warn("Token validation failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired ID token."))
			return
		}

		c.Set(common.PrincipalKey, *principal)
		logger.Debug("User authenticated successfully", zap.String("uid", principal.UID), zap.String("email", principal.Email))
		c.Next()
	}
}

// GetPrincipalFromContext retrieves the principal stored by AuthMiddleware.
func GetPrincipalFromContext(c *gin.Context) (shared.Principal, bool) {
	val, exists := c.Get(common.PrincipalKey)
	if !exists {
		return shared.Principal{}, false
	}
	principal, ok := val.(shared.Principal)
	return principal, ok
}

// ProfileResolver resolves the profile of an authenticated principal.
type ProfileResolver interface {
	ResolveForPrincipal(ctx context.Context, principal shared.Principal) *profile.Profile
}

// RequireRole resolves the caller's profile and lets the request through only
// when its role is one of allowed. The resolved profile is kept in the context.
func RequireRole(resolver ProfileResolver, logger *zap.Logger, allowed ...profile.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipalFromContext(c)
		if !ok {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authentication is required."))
			return
		}

		p := resolver.ResolveForPrincipal(c.Request.Context(), principal)
		if p == nil {
			logger.Warn("Role check failed: profile unavailable", zap.String("uid", principal.UID))
			common.RespondWithError(c, common.ErrForbidden.WithDetails("Your profile could not be loaded."))
			return
		}

		for _, role := range allowed {
			if p.Role == role {
				c.Set(common.ProfileKey, p)
				c.Next()
				return
			}
		}
		common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
	}
}

// GetProfileFromContext retrieves the profile stored by RequireRole.
func GetProfileFromContext(c *gin.Context) *profile.Profile {
	val, exists := c.Get(common.ProfileKey)
	if !exists {
		return nil
	}
	p, _ := val.(*profile.Profile)
	return p
}
