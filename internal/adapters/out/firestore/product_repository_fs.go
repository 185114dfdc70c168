// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	proddom "stockroom/internal/domain/product"
)

// ProductRepositoryFS is a Firestore-based implementation of
// product.Repository.
//
// 既存データ互換のキー構造:
//
//	artifacts/{appId}/public/data/inventory_items/{barcode}
//
// ドキュメント ID = バーコードそのもの。
type ProductRepositoryFS struct {
	Client *firestore.Client
	AppID  string
}

func NewProductRepositoryFS(client *firestore.Client, appID string) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client, AppID: strings.TrimSpace(appID)}
}

// Compile-time check
var _ proddom.Repository = (*ProductRepositoryFS)(nil)

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("artifacts/" + r.AppID + "/public/data/inventory_items")
}

// ========================
// Queries
// ========================

func (r *ProductRepositoryFS) GetByBarcode(ctx context.Context, barcode string) (proddom.Product, error) {
	if r.Client == nil {
		return proddom.Product{}, errors.New("firestore client is nil")
	}
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return proddom.Product{}, proddom.ErrNotFound
	}

	doc, err := r.col().Doc(barcode).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return proddom.Product{}, proddom.ErrNotFound
		}
		return proddom.Product{}, err
	}
	return docToProduct(doc)
}

func (r *ProductRepositoryFS) ListAll(ctx context.Context) ([]proddom.Product, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	iter := r.col().Documents(ctx)
	defer iter.Stop()

	var items []proddom.Product
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		p, err := docToProduct(doc)
		if err != nil {
			log.Printf("[product_fs] skip malformed doc id=%s: %v", doc.Ref.ID, err)
			continue
		}
		items = append(items, p)
	}
	return items, nil
}

// ========================
// Mutations
// ========================

// Create writes a brand-new document. Firestore's Create precondition
// makes "doc id already taken" an AlreadyExists failure, which maps to
// ErrConflict so the caller can fall back to the append path.
func (r *ProductRepositoryFS) Create(ctx context.Context, p proddom.Product) (proddom.Product, error) {
	if r.Client == nil {
		return proddom.Product{}, errors.New("firestore client is nil")
	}
	barcode := strings.TrimSpace(p.Barcode)
	if barcode == "" {
		return proddom.Product{}, proddom.ErrInvalidBarcode
	}

	if _, err := r.col().Doc(barcode).Create(ctx, p); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return proddom.Product{}, proddom.ErrConflict
		}
		return proddom.Product{}, err
	}
	return p, nil
}

// AppendBatch runs the read-modify-write inside a Firestore transaction:
// 同一バーコードへの同時追記は片方がリトライされ、lost update にならない。
func (r *ProductRepositoryFS) AppendBatch(ctx context.Context, barcode string, b proddom.Batch, imageURL string) (proddom.Product, error) {
	if r.Client == nil {
		return proddom.Product{}, errors.New("firestore client is nil")
	}
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return proddom.Product{}, proddom.ErrNotFound
	}

	ref := r.col().Doc(barcode)
	var out proddom.Product

	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return proddom.ErrNotFound
			}
			return err
		}
		p, err := docToProduct(doc)
		if err != nil {
			return err
		}

		p.AppendBatch(b, time.Now().UTC())
		// 写真はこの投稿で添付された場合のみ上書きする。
		if u := strings.TrimSpace(imageURL); u != "" {
			p.ImageURL = u
		}

		out = p
		return tx.Set(ref, p)
	})
	if err != nil {
		return proddom.Product{}, err
	}
	return out, nil
}

// MarkBatchRemoved flips isRemoved on one batch transactionally.
// Already-removed batches short-circuit without a write.
func (r *ProductRepositoryFS) MarkBatchRemoved(ctx context.Context, barcode string, index int, removedBy string) (proddom.Product, error) {
	if r.Client == nil {
		return proddom.Product{}, errors.New("firestore client is nil")
	}
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return proddom.Product{}, proddom.ErrNotFound
	}

	ref := r.col().Doc(barcode)
	var out proddom.Product

	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return proddom.ErrNotFound
			}
			return err
		}
		p, err := docToProduct(doc)
		if err != nil {
			return err
		}

		changed, err := p.MarkBatchRemoved(index, removedBy, time.Now().UTC())
		if err != nil {
			return err
		}
		out = p
		if !changed {
			return nil
		}
		return tx.Set(ref, p)
	})
	if err != nil {
		return proddom.Product{}, err
	}
	return out, nil
}

// ========================
// Live query
// ========================

// Watch streams full snapshots of the collection. Each element replaces
// the previous snapshot entirely.
func (r *ProductRepositoryFS) Watch(ctx context.Context) (<-chan []proddom.Product, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	snaps := r.col().Snapshots(ctx)
	ch := make(chan []proddom.Product, 1)

	go func() {
		defer close(ch)
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("[product_fs] watch terminated: %v", err)
				}
				return
			}

			var items []proddom.Product
			it := snap.Documents
			for {
				doc, err := it.Next()
				if errors.Is(err, iterator.Done) {
					break
				}
				if err != nil {
					log.Printf("[product_fs] watch read error: %v", err)
					break
				}
				p, err := docToProduct(doc)
				if err != nil {
					continue
				}
				items = append(items, p)
			}

			select {
			case ch <- items:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// ========================
// Helpers: Firestore -> Domain mapping
// ========================

func docToProduct(doc *firestore.DocumentSnapshot) (proddom.Product, error) {
	var p proddom.Product
	if err := doc.DataTo(&p); err != nil {
		return proddom.Product{}, fmt.Errorf("product_fs: decode %s: %w", doc.Ref.ID, err)
	}
	// バーコードはドキュメント ID から補完する。
	p.Barcode = doc.Ref.ID
	return p, nil
}
