package site

import "context"

// Directory is the read-only store of every construction site.
type Directory interface {
	// List returns all sites in the store's natural order.
	List(ctx context.Context) ([]Site, error)
}
