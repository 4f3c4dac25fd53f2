package firebase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"chantier_backend/internal/config"
	"chantier_backend/internal/shared"
)

// FirebaseService is the identity store backed by Firebase Authentication. It
// also owns the Firestore client of the same project.
type FirebaseService struct {
	authClient *auth.Client
	firestore  *firestore.Client
	// toolkit is nil when no web API key is configured.
	toolkit *identitytoolkit.Service
	logger  *zap.Logger
}

var (
	_ shared.IdentityStore         = (*FirebaseService)(nil)
	_ shared.PasswordAuthenticator = (*FirebaseService)(nil)
)

// NewFirebaseService initializes the Firebase Admin SDK and creates a new FirebaseService.
func NewFirebaseService(cfg *config.Config, logger *zap.Logger) (*FirebaseService, error) {
	logger = logger.Named("firebase")
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Error("Firebase service account key path is not configured.")
		return nil, fmt.Errorf("firebase service account key path is required")
	}

	ctx := context.Background()
	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var conf *firebase.Config
	if cfg.FirebaseProjectID != "" {
		conf = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}
	app, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	svc := &FirebaseService{authClient: authClient, logger: logger}

	if cfg.StoreDriver == config.StoreDriverFirestore {
		svc.firestore, err = app.Firestore(ctx)
		if err != nil {
			logger.Error("Failed to get Firestore client", zap.Error(err))
			return nil, fmt.Errorf("error getting Firestore client: %w", err)
		}
	}

	if cfg.FirebaseWebAPIKey != "" {
		svc.toolkit, err = identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.FirebaseWebAPIKey))
		if err != nil {
			svc.Close()
			logger.Error("Failed to create Identity Toolkit client", zap.Error(err))
			return nil, fmt.Errorf("error creating Identity Toolkit client: %w", err)
		}
	} else {
		logger.Warn("FIREBASE_WEB_API_KEY is not set; password sign-in and reset emails are disabled.")
	}

	logger.Info("Firebase Admin SDK initialized successfully.", zap.Bool("firestore", svc.firestore != nil))
	return svc, nil
}

// Firestore returns the Firestore client, or nil when another store driver is configured.
func (s *FirebaseService) Firestore() *firestore.Client {
	return s.firestore
}

// Close releases the Firestore connection.
func (s *FirebaseService) Close() error {
	if s.firestore == nil {
		return nil
	}
	return s.firestore.Close()
}

// VerifyToken verifies a Firebase ID token and returns the principal it was issued to.
func (s *FirebaseService) VerifyToken(ctx context.Context, idToken string) (*shared.Principal, error) {
	if idToken == "" {
		return nil, shared.NewIdentityError(shared.CodeInvalidToken, errors.New("ID token must not be empty"))
	}

	token, err := s.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.Warn("Firebase ID token verification failed", zap.Error(err))
		return nil, shared.NewIdentityError(shared.CodeInvalidToken, err)
	}

	s.logger.Debug("Firebase ID token verified successfully", zap.String("uid", token.UID))
	principal := principalFromClaims(token.UID, token.Claims)
	if token.IssuedAt > 0 {
		principal.IssuedAt = time.Unix(token.IssuedAt, 0)
	}
	return principal, nil
}

// LookupPrincipal fetches the current user record for uid.
func (s *FirebaseService) LookupPrincipal(ctx context.Context, uid string) (*shared.Principal, error) {
	record, err := s.authClient.GetUser(ctx, uid)
	if err != nil {
		return nil, mapAdminError(err)
	}
	return principalFromRecord(record), nil
}

// CreatePrincipal registers a new email/password user.
func (s *FirebaseService) CreatePrincipal(ctx context.Context, email, password, displayName string) (*shared.Principal, error) {
	params := (&auth.UserToCreate{}).Email(email).Password(password)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}
	record, err := s.authClient.CreateUser(ctx, params)
	if err != nil {
		s.logger.Warn("Failed to create Firebase user", zap.String("email", email), zap.Error(err))
		return nil, mapAdminError(err)
	}
	s.logger.Info("Firebase user created", zap.String("uid", record.UID))
	return principalFromRecord(record), nil
}

// RevokeSessions revokes all refresh tokens for a given user.
func (s *FirebaseService) RevokeSessions(ctx context.Context, uid string) error {
	if err := s.authClient.RevokeRefreshTokens(ctx, uid); err != nil {
		s.logger.Error("Failed to revoke refresh tokens", zap.Error(err), zap.String("uid", uid))
		return mapAdminError(err)
	}
	s.logger.Info("Successfully revoked refresh tokens for user", zap.String("uid", uid))
	return nil
}

// SetRoleClaim sets the "role" custom claim, keeping any other custom claims.
func (s *FirebaseService) SetRoleClaim(ctx context.Context, uid, role string) error {
	record, err := s.authClient.GetUser(ctx, uid)
	if err != nil {
		return mapAdminError(err)
	}
	claims := make(map[string]interface{}, len(record.CustomClaims)+1)
	for k, v := range record.CustomClaims {
		claims[k] = v
	}
	claims["role"] = role
	if err := s.authClient.SetCustomUserClaims(ctx, uid, claims); err != nil {
		s.logger.Error("Failed to set role claim", zap.String("uid", uid), zap.Error(err))
		return mapAdminError(err)
	}
	return nil
}

// SignInWithPassword exchanges email and password for Firebase tokens.
func (s *FirebaseService) SignInWithPassword(ctx context.Context, email, password string) (*shared.SignInResult, error) {
	if s.toolkit == nil {
		return nil, shared.NewIdentityError(shared.CodeUnavailable, errors.New("password sign-in is not configured"))
	}
	resp, err := s.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapToolkitError(err)
	}
	return &shared.SignInResult{
		Principal: shared.Principal{
			UID:         resp.LocalId,
			Email:       resp.Email,
			DisplayName: resp.DisplayName,
		},
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}

// SendPasswordReset asks Firebase to email a password reset link.
func (s *FirebaseService) SendPasswordReset(ctx context.Context, email string) error {
	if s.toolkit == nil {
		return shared.NewIdentityError(shared.CodeUnavailable, errors.New("password reset is not configured"))
	}
	_, err := s.toolkit.Relyingparty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}).Context(ctx).Do()
	if err != nil {
		return mapToolkitError(err)
	}
	return nil
}

func principalFromRecord(record *auth.UserRecord) *shared.Principal {
	p := &shared.Principal{}
	if record.UserInfo != nil {
		p.UID = record.UID
		p.Email = record.Email
		p.DisplayName = record.DisplayName
	}
	if role, ok := record.CustomClaims["role"].(string); ok {
		p.ClaimedRole = role
	}
	return p
}

func principalFromClaims(uid string, claims map[string]interface{}) *shared.Principal {
	str := func(key string) string {
		if v, ok := claims[key].(string); ok {
			return v
		}
		return ""
	}
	return &shared.Principal{
		UID:         uid,
		Email:       str("email"),
		DisplayName: str("name"),
		ClaimedRole: str("role"),
	}
}

// mapAdminError translates Admin SDK errors into canonical identity codes.
func mapAdminError(err error) error {
	switch {
	case auth.IsUserNotFound(err):
		return shared.NewIdentityError(shared.CodeUserNotFound, err)
	case auth.IsEmailAlreadyExists(err):
		return shared.NewIdentityError(shared.CodeEmailAlreadyInUse, err)
	case auth.IsInvalidEmail(err):
		return shared.NewIdentityError(shared.CodeInvalidEmail, err)
	case auth.IsUserDisabled(err):
		return shared.NewIdentityError(shared.CodeUserDisabled, err)
	case strings.Contains(err.Error(), "password must be a string at least 6 characters long"):
		return shared.NewIdentityError(shared.CodeWeakPassword, err)
	default:
		return shared.NewIdentityError(shared.CodeInternal, err)
	}
}

// toolkitCodes maps Identity Toolkit REST error messages onto canonical codes.
var toolkitCodes = map[string]string{
	"EMAIL_NOT_FOUND":             shared.CodeUserNotFound,
	"INVALID_PASSWORD":            shared.CodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":   shared.CodeInvalidCredential,
	"INVALID_EMAIL":               shared.CodeInvalidEmail,
	"EMAIL_EXISTS":                shared.CodeEmailAlreadyInUse,
	"WEAK_PASSWORD":               shared.CodeWeakPassword,
	"TOO_MANY_ATTEMPTS_TRY_LATER": shared.CodeTooManyRequests,
	"USER_DISABLED":               shared.CodeUserDisabled,
	"MISSING_PASSWORD":            shared.CodeMissingPassword,
	"OPERATION_NOT_ALLOWED":       shared.CodeOperationNotAllowed,
	"PASSWORD_LOGIN_DISABLED":     shared.CodeOperationNotAllowed,
}

func mapToolkitError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return shared.NewIdentityError(shared.CodeNetworkFailed, err)
	}
	return shared.NewIdentityError(toolkitCode(apiErr.Message), err)
}

// toolkitCode reads codes like "WEAK_PASSWORD : Password should be at least 6 characters".
func toolkitCode(message string) string {
	key := strings.TrimSpace(message)
	if i := strings.Index(key, ":"); i >= 0 {
		key = strings.TrimSpace(key[:i])
	}
	if code, ok := toolkitCodes[key]; ok {
		return code
	}
	return shared.CodeInternal
}
