// internal/adapters/out/firestore/announcement_repository_fs.go
package firestore

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cloud.google.com/go/firestore"

	anndom "stockroom/internal/domain/announcement"
)

// AnnouncementRepositoryFS reads/writes the single fixed document
// appSettings/messages.
type AnnouncementRepositoryFS struct {
	Client *firestore.Client
}

func NewAnnouncementRepositoryFS(client *firestore.Client) *AnnouncementRepositoryFS {
	return &AnnouncementRepositoryFS{Client: client}
}

// Compile-time check
var _ anndom.Repository = (*AnnouncementRepositoryFS)(nil)

func (r *AnnouncementRepositoryFS) doc() *firestore.DocumentRef {
	return r.Client.Collection(anndom.Collection).Doc(anndom.DocID)
}

// Get returns the current banner; a missing document is an empty banner,
// not an error.
func (r *AnnouncementRepositoryFS) Get(ctx context.Context) (anndom.Announcement, error) {
	if r.Client == nil {
		return anndom.Announcement{}, errors.New("firestore client is nil")
	}

	doc, err := r.doc().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return anndom.Announcement{}, nil
		}
		return anndom.Announcement{}, err
	}

	var a anndom.Announcement
	if err := doc.DataTo(&a); err != nil {
		return anndom.Announcement{}, err
	}
	return a, nil
}

// Set merge-writes the banner so unknown fields on the document survive.
// MergeAll は map データしか受け付けないため、ここで組み立てる。
func (r *AnnouncementRepositoryFS) Set(ctx context.Context, a anndom.Announcement) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	data := map[string]interface{}{
		"currentMessage": a.CurrentMessage,
		"updatedBy":      a.UpdatedBy,
		"updatedAt":      a.UpdatedAt,
	}
	_, err := r.doc().Set(ctx, data, firestore.MergeAll)
	return err
}
