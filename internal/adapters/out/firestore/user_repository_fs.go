// internal/adapters/out/firestore/user_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cloud.google.com/go/firestore"

	userdom "stockroom/internal/domain/user"
)

// UserRepositoryFS is a Firestore-based implementation of user.Repository.
// Uses the "users" collection keyed by auth uid.
type UserRepositoryFS struct {
	Client *firestore.Client
}

func NewUserRepositoryFS(client *firestore.Client) *UserRepositoryFS {
	return &UserRepositoryFS{Client: client}
}

// Compile-time check
var _ userdom.Repository = (*UserRepositoryFS)(nil)

func (r *UserRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("users")
}

func (r *UserRepositoryFS) GetByUID(ctx context.Context, uid string) (userdom.Profile, error) {
	if r.Client == nil {
		return userdom.Profile{}, errors.New("firestore client is nil")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.Profile{}, userdom.ErrNotFound
	}

	doc, err := r.col().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return userdom.Profile{}, userdom.ErrNotFound
		}
		return userdom.Profile{}, err
	}

	var p userdom.Profile
	if err := doc.DataTo(&p); err != nil {
		return userdom.Profile{}, err
	}
	if p.UID == "" {
		p.UID = doc.Ref.ID
	}
	return p, nil
}

func (r *UserRepositoryFS) Create(ctx context.Context, p userdom.Profile) (userdom.Profile, error) {
	if r.Client == nil {
		return userdom.Profile{}, errors.New("firestore client is nil")
	}
	uid := strings.TrimSpace(p.UID)
	if uid == "" {
		return userdom.Profile{}, errors.New("user_fs: uid is empty")
	}

	if _, err := r.col().Doc(uid).Set(ctx, p); err != nil {
		return userdom.Profile{}, err
	}
	return p, nil
}
