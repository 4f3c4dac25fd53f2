package profile

import (
	"strings"
	"time"
)

// Role is the access role stored on a profile.
type Role string

const (
	RoleProfessional Role = "professional"
	RoleClient       Role = "client"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleProfessional || r == RoleClient
}

// ParseRole normalizes raw and reports whether it names a known role.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	return r, r.Valid()
}

// Document field names, shared by the Firestore encoding and the admin tooling.
const (
	FieldUID               = "uid"
	FieldEmail             = "email"
	FieldDisplayName       = "displayName"
	FieldRole              = "role"
	FieldChantierID        = "chantierId"
	FieldChantierIDs       = "chantierIds"
	FieldDateCreation      = "dateCreation"
	FieldDerniereConnexion = "derniereConnexion"
)

// Document is a profile exactly as persisted. Role may be empty or unknown and
// timestamps may be in any of the shapes older clients wrote.
type Document struct {
	UID               string
	Email             string
	DisplayName       string
	Role              Role
	ChantierID        string
	ChantierIDs       []string
	DateCreation      Timestamp
	DerniereConnexion Timestamp
}

// CandidateSiteIDs prefers chantierIds (deduplicated, blanks dropped) and falls
// back to the single legacy chantierId.
func (d *Document) CandidateSiteIDs() []string {
	ids := DedupeIDs(d.ChantierIDs)
	if len(ids) == 0 && strings.TrimSpace(d.ChantierID) != "" {
		ids = []string{strings.TrimSpace(d.ChantierID)}
	}
	return ids
}

// Profile is the resolved, trustworthy view of a principal handed to callers.
type Profile struct {
	UID               string    `json:"uid"`
	Email             string    `json:"email"`
	DisplayName       string    `json:"displayName,omitempty"`
	Role              Role      `json:"role"`
	ChantierID        string    `json:"chantierId,omitempty"`
	ChantierIDs       []string  `json:"chantierIds,omitempty"`
	DateCreation      time.Time `json:"dateCreation"`
	DerniereConnexion time.Time `json:"derniereConnexion"`
}

// SetSites assigns the site list; an empty list leaves both fields unset so
// "no sites" stays distinguishable from a single empty id.
func (p *Profile) SetSites(ids []string) {
	if len(ids) == 0 {
		p.ChantierID = ""
		p.ChantierIDs = nil
		return
	}
	p.ChantierIDs = append([]string(nil), ids...)
	p.ChantierID = ids[0]
}

// CanAccessSite reports whether the profile grants access to siteID.
// Professionals see every site.
func (p *Profile) CanAccessSite(siteID string) bool {
	if p == nil {
		return false
	}
	if p.Role == RoleProfessional {
		return true
	}
	for _, id := range p.ChantierIDs {
		if id == siteID {
			return true
		}
	}
	return false
}

// Patch is a merge-write: only non-nil fields are written.
type Patch struct {
	Email             *string
	DisplayName       *string
	Role              *Role
	ChantierID        *string
	ChantierIDs       []string
	DateCreation      *time.Time
	DerniereConnexion *time.Time
}

// IsEmpty reports whether the patch would write nothing.
func (p Patch) IsEmpty() bool {
	return p.Email == nil && p.DisplayName == nil && p.Role == nil && p.ChantierID == nil &&
		p.ChantierIDs == nil && p.DateCreation == nil && p.DerniereConnexion == nil
}

// Fields renders the patch with document field names.
func (p Patch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Email != nil {
		fields[FieldEmail] = *p.Email
	}
	if p.DisplayName != nil {
		fields[FieldDisplayName] = *p.DisplayName
	}
	if p.Role != nil {
		fields[FieldRole] = string(*p.Role)
	}
	if p.ChantierID != nil {
		fields[FieldChantierID] = *p.ChantierID
	}
	if p.ChantierIDs != nil {
		fields[FieldChantierIDs] = append([]string(nil), p.ChantierIDs...)
	}
	if p.DateCreation != nil {
		fields[FieldDateCreation] = *p.DateCreation
	}
	if p.DerniereConnexion != nil {
		fields[FieldDerniereConnexion] = *p.DerniereConnexion
	}
	return fields
}

// Apply folds the patch into d, mirroring what a merge-write does to the stored document.
func (p Patch) Apply(d *Document) {
	if p.Email != nil {
		d.Email = *p.Email
	}
	if p.DisplayName != nil {
		d.DisplayName = *p.DisplayName
	}
	if p.Role != nil {
		d.Role = *p.Role
	}
	if p.ChantierID != nil {
		d.ChantierID = *p.ChantierID
	}
	if p.ChantierIDs != nil {
		d.ChantierIDs = append([]string(nil), p.ChantierIDs...)
	}
	if p.DateCreation != nil {
		d.DateCreation = NativeTimestamp(*p.DateCreation)
	}
	if p.DerniereConnexion != nil {
		d.DerniereConnexion = NativeTimestamp(*p.DerniereConnexion)
	}
}

// DedupeIDs trims ids, drops blanks and keeps the first occurrence of each.
func DedupeIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SameSiteSet compares two id lists as sets.
func SameSiteSet(a, b []string) bool {
	a, b = DedupeIDs(a), DedupeIDs(b)
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
