// File: internal/common/context_keys.go
package common

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// PrincipalKey is the context key for the verified shared.Principal
	PrincipalKey = "principal"
	// ProfileKey is the context key for the profile resolved by the role guard
	ProfileKey = "profile"
	// LoggerKey is the context key RespondWithError looks up for a request logger
	LoggerKey = "logger"
)
