package profile

import (
	"context"
)

// Repository is the profile document store, keyed by uid.
type Repository interface {
	// FindByUID returns common.ErrNotFound when no document exists for uid.
	FindByUID(ctx context.Context, uid string) (*Document, error)
	// Create writes a new document and returns common.ErrConflict if one already exists.
	Create(ctx context.Context, doc *Document) error
	// Merge writes only the fields set on patch, creating the document if needed.
	Merge(ctx context.Context, uid string, patch Patch) error
	// List returns every profile document.
	List(ctx context.Context) ([]Document, error)
}
