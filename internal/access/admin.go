package access

import (
	"context"
	"fmt"

	"chantier_backend/internal/audit"
	"chantier_backend/internal/common"
	"chantier_backend/internal/profile"
	"chantier_backend/internal/shared"

	"go.uber.org/zap"
)

// AssignRole provisions role explicitly: it is stored on the profile and set as
// the principal's custom claim so later inference agrees with it.
func (r *Resolver) AssignRole(ctx context.Context, uid string, role profile.Role, actor string) (*profile.Profile, error) {
	if !role.Valid() {
		return nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("Unknown role %q.", role))
	}
	principal, err := r.identities.LookupPrincipal(ctx, uid)
	if err != nil {
		return nil, err
	}

	if err := r.profiles.Merge(ctx, uid, profile.Patch{Role: &role}); err != nil {
		return nil, fmt.Errorf("storing role for %s: %w", uid, err)
	}
	if err := r.identities.SetRoleClaim(ctx, uid, string(role)); err != nil {
		return nil, err
	}
	principal.ClaimedRole = string(role)

	log := r.logger.With(zap.String("uid", uid))
	log.Info("Role assigned", zap.String("role", string(role)), zap.String("actor", actor))
	r.record(ctx, log, audit.NewEvent(audit.EventRoleAssigned, uid, map[string]interface{}{
		"role": string(role),
	}).WithActor(actor))

	resolved := r.ResolveForPrincipal(ctx, *principal)
	if resolved == nil {
		return nil, common.ErrServiceUnavailable.WithDetails("Role stored but the profile could not be resolved.")
	}
	return resolved, nil
}

// identityToAPIError turns identity store failures met by admin operations into API errors.
func identityToAPIError(err error) error {
	switch shared.IdentityErrorCode(err) {
	case "":
		return err
	case shared.CodeUserNotFound:
		return common.ErrNotFound.WithDetails("No account exists for this uid.")
	default:
		return common.ErrServiceUnavailable.WithDetails(shared.IdentityErrorCode(err))
	}
}
