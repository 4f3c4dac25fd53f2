package site

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type firestoreDirectory struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreDirectory creates a site directory over a Firestore collection.
func NewFirestoreDirectory(client *firestore.Client, collection string) Directory {
	return &firestoreDirectory{client: client, collection: collection}
}

func (d *firestoreDirectory) List(ctx context.Context) ([]Site, error) {
	iter := d.client.Collection(d.collection).
		Select(FieldNom, FieldClientEmail, FieldClientEmail2, FieldClientEmail3).
		Documents(ctx)
	defer iter.Stop()

	var sites []Site
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing sites in %s: %w", d.collection, err)
		}
		sites = append(sites, siteFromData(snap.Ref.ID, snap.Data()))
	}
	return sites, nil
}
