package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chantier_backend/internal/common"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type firestoreRepository struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
}

// NewFirestoreRepository creates a profile repository over a Firestore collection.
func NewFirestoreRepository(client *firestore.Client, collection string) Repository {
	return &firestoreRepository{client: client, collection: collection, now: time.Now}
}

func (r *firestoreRepository) FindByUID(ctx context.Context, uid string) (*Document, error) {
	snap, err := r.client.Collection(r.collection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, common.ErrNotFound.WithDetails(fmt.Sprintf("Profile %s not found.", uid))
		}
		return nil, fmt.Errorf("reading profile %s: %w", uid, err)
	}
	if !snap.Exists() {
		return nil, common.ErrNotFound.WithDetails(fmt.Sprintf("Profile %s not found.", uid))
	}
	doc := DocumentFromData(snap.Ref.ID, snap.Data())
	return &doc, nil
}

func (r *firestoreRepository) Create(ctx context.Context, doc *Document) error {
	if doc == nil || doc.UID == "" {
		return common.ErrBadRequest.WithDetails("Profile uid is required.")
	}
	_, err := r.client.Collection(r.collection).Doc(doc.UID).Create(ctx, doc.Data(r.now()))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return common.ErrConflict.WithDetails(fmt.Sprintf("Profile %s already exists.", doc.UID))
		}
		return fmt.Errorf("creating profile %s: %w", doc.UID, err)
	}
	return nil
}

func (r *firestoreRepository) Merge(ctx context.Context, uid string, patch Patch) error {
	if patch.IsEmpty() {
		return nil
	}
	_, err := r.client.Collection(r.collection).Doc(uid).Set(ctx, patch.Fields(), firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("merging profile %s: %w", uid, err)
	}
	return nil
}

func (r *firestoreRepository) List(ctx context.Context) ([]Document, error) {
	iter := r.client.Collection(r.collection).Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing profiles: %w", err)
		}
		docs = append(docs, DocumentFromData(snap.Ref.ID, snap.Data()))
	}
	return docs, nil
}
