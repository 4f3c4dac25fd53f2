package access

import (
	"chantier_backend/internal/config"
	"chantier_backend/internal/profile"
	"chantier_backend/internal/shared"
)

// RolePolicy infers a role for principals whose profile carries none.
type RolePolicy struct {
	adminEmails map[string]struct{}
}

// NewRolePolicy builds the policy from the ADMIN_EMAILS allow-list.
func NewRolePolicy(cfg *config.Config) *RolePolicy {
	return NewRolePolicyFromEmails(cfg.AdminEmails)
}

func NewRolePolicyFromEmails(emails []string) *RolePolicy {
	p := &RolePolicy{adminEmails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		if e = shared.NormalizeEmail(e); e != "" {
			p.adminEmails[e] = struct{}{}
		}
	}
	return p
}

// IsAdminEmail reports whether email is on the professional allow-list.
func (p *RolePolicy) IsAdminEmail(email string) bool {
	_, ok := p.adminEmails[shared.NormalizeEmail(email)]
	return ok
}

// Infer picks the role claimed at provisioning time, then the allow-list, then client.
func (p *RolePolicy) Infer(principal shared.Principal) profile.Role {
	if role, ok := profile.ParseRole(principal.ClaimedRole); ok {
		return role
	}
	if p.IsAdminEmail(principal.Email) {
		return profile.RoleProfessional
	}
	return profile.RoleClient
}
