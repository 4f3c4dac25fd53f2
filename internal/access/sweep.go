package access

import (
	"context"
	"strings"

	"chantier_backend/internal/profile"
	"chantier_backend/internal/shared"

	"go.uber.org/zap"
)

// SweepSummary counts the outcome of a bulk resolution.
type SweepSummary struct {
	Scanned  int `json:"scanned"`
	Resolved int `json:"resolved"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Filter selects the stored profiles a sweep resolves.
type Filter func(doc profile.Document) bool

// ClientProfiles selects clients and profiles whose role still has to be inferred.
func ClientProfiles(doc profile.Document) bool {
	role, known := profile.ParseRole(string(doc.Role))
	return role == profile.RoleClient || !known
}

// MissingEmail selects profiles with no stored email.
func MissingEmail(doc profile.Document) bool {
	return strings.TrimSpace(doc.Email) == ""
}

// Sweep resolves every stored profile accepted by filter, one at a time.
// Profiles whose principal no longer exists are skipped.
func (r *Resolver) Sweep(ctx context.Context, filter Filter) (SweepSummary, error) {
	var summary SweepSummary
	docs, err := r.profiles.List(ctx)
	if err != nil {
		return summary, err
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if filter != nil && !filter(doc) {
			continue
		}
		summary.Scanned++

		principal, err := r.identities.LookupPrincipal(ctx, doc.UID)
		if err != nil {
			if shared.IdentityErrorCode(err) == shared.CodeUserNotFound {
				summary.Skipped++
				continue
			}
			r.logger.Warn("Sweep could not look up principal", zap.String("uid", doc.UID), zap.Error(err))
			summary.Failed++
			continue
		}

		if r.ResolveForPrincipal(ctx, *principal) == nil {
			summary.Failed++
			continue
		}
		summary.Resolved++
	}

	r.logger.Info("Profile sweep finished",
		zap.Int("scanned", summary.Scanned),
		zap.Int("resolved", summary.Resolved),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}
