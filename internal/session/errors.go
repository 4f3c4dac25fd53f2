package session

import (
	"net/http"

	"chantier_backend/internal/common"
	"chantier_backend/internal/shared"
)

type authFailure struct {
	status  int
	message string
}

// authFailures is the finite table of user-facing authentication messages.
var authFailures = map[string]authFailure{
	shared.CodeUserNotFound:        {http.StatusUnauthorized, "Aucun compte n'est associé à cet email."},
	shared.CodeWrongPassword:       {http.StatusUnauthorized, "Mot de passe incorrect."},
	shared.CodeInvalidCredential:   {http.StatusUnauthorized, "Email ou mot de passe incorrect."},
	shared.CodeInvalidEmail:        {http.StatusBadRequest, "L'adresse email n'est pas valide."},
	shared.CodeEmailAlreadyInUse:   {http.StatusConflict, "Un compte existe déjà avec cet email."},
	shared.CodeWeakPassword:        {http.StatusBadRequest, "Le mot de passe doit contenir au moins 6 caractères."},
	shared.CodeTooManyRequests:     {http.StatusTooManyRequests, "Trop de tentatives. Réessayez plus tard."},
	shared.CodeUserDisabled:        {http.StatusForbidden, "Ce compte a été désactivé."},
	shared.CodeNetworkFailed:       {http.StatusServiceUnavailable, "Erreur réseau. Vérifiez votre connexion."},
	shared.CodeMissingPassword:     {http.StatusBadRequest, "Veuillez saisir un mot de passe."},
	shared.CodeOperationNotAllowed: {http.StatusForbidden, "Cette méthode de connexion n'est pas activée."},
	shared.CodeUnavailable:         {http.StatusServiceUnavailable, "L'authentification est momentanément indisponible."},
}

const genericAuthMessage = "Une erreur est survenue. Veuillez réessayer."

// AuthMessage returns the user-facing message for an identity error code.
func AuthMessage(code string) string {
	if f, ok := authFailures[code]; ok {
		return f.message
	}
	return genericAuthMessage
}

// toAPIError converts an identity store failure into an API error carrying the
// canonical code as details.
func toAPIError(err error) error {
	code := shared.IdentityErrorCode(err)
	if code == "" {
		return err
	}
	f, ok := authFailures[code]
	if !ok {
		return common.ErrInternalServer.WithMessage(genericAuthMessage).WithDetails(code)
	}
	return common.NewAPIError(f.status, "AUTH_ERROR", f.message).WithDetails(code)
}
