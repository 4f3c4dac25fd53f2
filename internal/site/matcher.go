package site

import (
	"context"
	"fmt"

	"chantier_backend/internal/shared"
)

// MatchClientEmail returns the ids of the sites listing email in any of their
// client email fields. Comparison is case-insensitive and ignores surrounding
// whitespace. Each site contributes at most once and the order of sites is kept.
func MatchClientEmail(sites []Site, email string) []string {
	target := shared.NormalizeEmail(email)
	if target == "" {
		return nil
	}
	var ids []string
	seen := make(map[string]struct{})
	for _, s := range sites {
		if _, dup := seen[s.ID]; dup || s.ID == "" {
			continue
		}
		for _, candidate := range s.ClientEmails() {
			if shared.NormalizeEmail(candidate) == target {
				seen[s.ID] = struct{}{}
				ids = append(ids, s.ID)
				break
			}
		}
	}
	return ids
}

// ScanForEmail reads the whole directory and matches email against it.
func ScanForEmail(ctx context.Context, dir Directory, email string) ([]string, error) {
	sites, err := dir.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning sites: %w", err)
	}
	return MatchClientEmail(sites, email), nil
}

// FilterByIDs keeps the sites whose id is in ids, in the order of ids.
func FilterByIDs(sites []Site, ids []string) []Site {
	byID := make(map[string]Site, len(sites))
	for _, s := range sites {
		byID[s.ID] = s
	}
	out := make([]Site, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out
}
