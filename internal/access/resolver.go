package access

import (
	"context"
	"errors"
	"strings"
	"time"

	"chantier_backend/internal/audit"
	"chantier_backend/internal/common"
	"chantier_backend/internal/profile"
	"chantier_backend/internal/shared"
	"chantier_backend/internal/site"

	"go.uber.org/zap"
)

// Resolver turns an authenticated principal into a trustworthy profile,
// repairing the stored profile when it has drifted from the site directory.
//
// Resolution never fails loudly: read failures yield a nil profile and write
// failures are logged while the corrected in-memory profile is still returned.
type Resolver struct {
	profiles   profile.Repository
	sites      site.Directory
	identities shared.IdentityStore
	roles      *RolePolicy
	audit      audit.Recorder
	logger     *zap.Logger
	now        func() time.Time
}

// NewResolver creates a new Resolver.
func NewResolver(
	profiles profile.Repository,
	sites site.Directory,
	identities shared.IdentityStore,
	roles *RolePolicy,
	recorder audit.Recorder,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		profiles:   profiles,
		sites:      sites,
		identities: identities,
		roles:      roles,
		audit:      recorder,
		logger:     logger.Named("access_resolver"),
		now:        time.Now,
	}
}

// ResolveProfile looks the principal up in the identity store and resolves it.
// It returns nil when the principal or its profile cannot be read.
func (r *Resolver) ResolveProfile(ctx context.Context, uid string) *profile.Profile {
	if uid == "" {
		return nil
	}
	principal, err := r.identities.LookupPrincipal(ctx, uid)
	if err != nil {
		r.logger.Error("Failed to look up principal", zap.String("uid", uid), zap.Error(err))
		return nil
	}
	return r.ResolveForPrincipal(ctx, *principal)
}

// ResolveForPrincipal resolves the profile of an already authenticated principal.
func (r *Resolver) ResolveForPrincipal(ctx context.Context, principal shared.Principal) *profile.Profile {
	if principal.UID == "" {
		return nil
	}
	log := r.logger.With(zap.String("uid", principal.UID))
	now := r.now()

	doc, err := r.profiles.FindByUID(ctx, principal.UID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		doc = r.synthesize(ctx, principal, now, log)
		if doc == nil {
			return nil
		}
	case err != nil:
		log.Error("Failed to read profile", zap.Error(err))
		return nil
	}

	role, known := profile.ParseRole(string(doc.Role))
	if !known {
		role = r.roles.Infer(principal)
		log.Info("Inferred missing role", zap.String("stored_role", string(doc.Role)), zap.String("role", string(role)))
		r.merge(ctx, log, principal.UID, profile.Patch{Role: &role},
			audit.NewEvent(audit.EventRoleInferred, principal.UID, map[string]interface{}{
				"previous": string(doc.Role),
				"role":     string(role),
			}))
	}

	siteIDs := doc.CandidateSiteIDs()
	email := strings.TrimSpace(principal.Email)

	if role == profile.RoleClient && email != "" {
		matched, err := site.ScanForEmail(ctx, r.sites, email)
		if err != nil {
			log.Error("Failed to scan site directory", zap.Error(err))
			return nil
		}
		switch {
		case len(matched) == 0:
			log.Info("Client awaiting assignment", zap.String("email", email), zap.Strings("chantierIds", siteIDs))
		case !profile.SameSiteSet(matched, siteIDs):
			log.Info("Syncing client sites", zap.Strings("previous", siteIDs), zap.Strings("chantierIds", matched))
			first := matched[0]
			r.merge(ctx, log, principal.UID, profile.Patch{ChantierID: &first, ChantierIDs: matched},
				audit.NewEvent(audit.EventSitesSynced, principal.UID, map[string]interface{}{
					"previous":    siteIDs,
					"chantierIds": matched,
				}))
			siteIDs = matched
		}
	}

	storedEmail := strings.TrimSpace(doc.Email)
	if storedEmail == "" && email != "" {
		r.merge(ctx, log, principal.UID, profile.Patch{Email: &email},
			audit.NewEvent(audit.EventEmailBackfilled, principal.UID, map[string]interface{}{"email": email}))
		storedEmail = email
	}

	displayName := doc.DisplayName
	if displayName == "" {
		displayName = principal.DisplayName
	}

	resolved := &profile.Profile{
		UID:               principal.UID,
		Email:             storedEmail,
		DisplayName:       displayName,
		Role:              role,
		DateCreation:      doc.DateCreation.Resolve(now),
		DerniereConnexion: doc.DerniereConnexion.Resolve(now),
	}
	resolved.SetSites(siteIDs)
	return resolved
}

// synthesize writes a minimal profile for a principal that has none. The
// returned document goes through the normal reconciliation afterwards.
func (r *Resolver) synthesize(ctx context.Context, principal shared.Principal, now time.Time, log *zap.Logger) *profile.Document {
	role := r.roles.Infer(principal)
	doc := &profile.Document{
		UID:               principal.UID,
		Email:             strings.TrimSpace(principal.Email),
		DisplayName:       principal.DisplayName,
		Role:              role,
		DateCreation:      profile.NativeTimestamp(now),
		DerniereConnexion: profile.NativeTimestamp(now),
	}

	err := r.profiles.Create(ctx, doc)
	switch {
	case err == nil:
		log.Info("Created missing profile", zap.String("role", string(role)))
		r.record(ctx, log, audit.NewEvent(audit.EventProfileSynthesized, principal.UID, map[string]interface{}{
			"role":  string(role),
			"email": doc.Email,
		}))
		return doc
	case errors.Is(err, common.ErrConflict):
		// Another resolution created it first; use what was stored.
		stored, readErr := r.profiles.FindByUID(ctx, principal.UID)
		if readErr != nil {
			log.Error("Failed to read concurrently created profile", zap.Error(readErr))
			return nil
		}
		return stored
	default:
		log.Warn("Failed to persist synthesized profile", zap.Error(err))
		return doc
	}
}

func (r *Resolver) merge(ctx context.Context, log *zap.Logger, uid string, patch profile.Patch, event audit.Event) {
	if err := r.profiles.Merge(ctx, uid, patch); err != nil {
		log.Warn("Self-heal write failed", zap.String("event", string(event.Type)), zap.Error(err))
		return
	}
	r.record(ctx, log, event)
}

func (r *Resolver) record(ctx context.Context, log *zap.Logger, event audit.Event) {
	if r.audit == nil {
		return
	}
	if err := r.audit.Record(ctx, event); err != nil {
		log.Warn("Failed to record audit event", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
