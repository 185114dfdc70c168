// internal/adapters/out/db/product_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	proddom "stockroom/internal/domain/product"
)

// ProductRepositoryPG is the Postgres twin of ProductRepositoryFS.
// バッチ列は JSONB でドキュメント形のまま保持する（Firestore と同じ形）。
// Watch はポーリングで全スナップショットを流す簡易実装。
type ProductRepositoryPG struct {
	DB *sql.DB

	// PollInterval controls the Watch polling cadence (default 3s).
	PollInterval time.Duration
}

func NewProductRepositoryPG(db *sql.DB) *ProductRepositoryPG {
	return &ProductRepositoryPG{DB: db}
}

// Compile-time check
var _ proddom.Repository = (*ProductRepositoryPG)(nil)

// Migrate applies the products table DDL.
func (r *ProductRepositoryPG) Migrate(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, proddom.ProductsTableDDL)
	return err
}

// ========================
// Queries
// ========================

const productColumns = `barcode, name, category, quantity, expiry_dates, image_url, created_at, last_updated`

func (r *ProductRepositoryPG) GetByBarcode(ctx context.Context, barcode string) (proddom.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE barcode = $1`
	row := r.DB.QueryRowContext(ctx, q, strings.TrimSpace(barcode))
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return proddom.Product{}, proddom.ErrNotFound
		}
		return proddom.Product{}, err
	}
	return p, nil
}

func (r *ProductRepositoryPG) ListAll(ctx context.Context) ([]proddom.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products ORDER BY barcode`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []proddom.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// ========================
// Mutations
// ========================

func (r *ProductRepositoryPG) Create(ctx context.Context, p proddom.Product) (proddom.Product, error) {
	batches, err := json.Marshal(p.ExpiryDates)
	if err != nil {
		return proddom.Product{}, err
	}
	const q = `
INSERT INTO products (barcode, name, category, quantity, expiry_dates, image_url, created_at, last_updated)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)`
	_, err = r.DB.ExecContext(ctx, q,
		p.Barcode, p.Name, string(p.Category), p.Quantity, batches, p.ImageURL, p.CreatedAt, p.LastUpdated,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return proddom.Product{}, proddom.ErrConflict
		}
		return proddom.Product{}, err
	}
	return p, nil
}

// AppendBatch runs the read-modify-write in a serializable transaction,
// retried on serialization failure — Firestore 実装の RunTransaction と
// 同じ保証を持たせる。
func (r *ProductRepositoryPG) AppendBatch(ctx context.Context, barcode string, b proddom.Batch, imageURL string) (proddom.Product, error) {
	var out proddom.Product
	err := r.withSerializableTx(ctx, func(tx *sql.Tx) error {
		p, err := getForUpdate(ctx, tx, barcode)
		if err != nil {
			return err
		}
		p.AppendBatch(b, time.Now().UTC())
		if u := strings.TrimSpace(imageURL); u != "" {
			p.ImageURL = u
		}
		if err := writeBack(ctx, tx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return proddom.Product{}, err
	}
	return out, nil
}

func (r *ProductRepositoryPG) MarkBatchRemoved(ctx context.Context, barcode string, index int, removedBy string) (proddom.Product, error) {
	var out proddom.Product
	err := r.withSerializableTx(ctx, func(tx *sql.Tx) error {
		p, err := getForUpdate(ctx, tx, barcode)
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
		return writeBack(ctx, tx, p)
	})
	if err != nil {
		return proddom.Product{}, err
	}
	return out, nil
}

// ========================
// Live query (polling)
// ========================

func (r *ProductRepositoryPG) Watch(ctx context.Context) (<-chan []proddom.Product, error) {
	interval := r.PollInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}

	ch := make(chan []proddom.Product, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			items, err := r.ListAll(ctx)
			if err == nil {
				select {
				case ch <- items:
				case <-ctx.Done():
					return
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return ch, nil
}

// ========================
// Helpers
// ========================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (proddom.Product, error) {
	var (
		p        proddom.Product
		category string
		batches  []byte
		imageURL sql.NullString
	)
	if err := row.Scan(&p.Barcode, &p.Name, &category, &p.Quantity, &batches, &imageURL, &p.CreatedAt, &p.LastUpdated); err != nil {
		return proddom.Product{}, err
	}
	p.Category = proddom.Category(category)
	if imageURL.Valid {
		p.ImageURL = imageURL.String
	}
	if len(batches) > 0 {
		if err := json.Unmarshal(batches, &p.ExpiryDates); err != nil {
			return proddom.Product{}, fmt.Errorf("product_pg: decode batches for %s: %w", p.Barcode, err)
		}
	}
	return p, nil
}

func getForUpdate(ctx context.Context, tx *sql.Tx, barcode string) (proddom.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE barcode = $1 FOR UPDATE`
	p, err := scanProduct(tx.QueryRowContext(ctx, q, strings.TrimSpace(barcode)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return proddom.Product{}, proddom.ErrNotFound
		}
		return proddom.Product{}, err
	}
	return p, nil
}

func writeBack(ctx context.Context, tx *sql.Tx, p proddom.Product) error {
	batches, err := json.Marshal(p.ExpiryDates)
	if err != nil {
		return err
	}
	const q = `
UPDATE products
SET quantity = $2, expiry_dates = $3, image_url = NULLIF($4, ''), last_updated = $5
WHERE barcode = $1`
	_, err = tx.ExecContext(ctx, q, p.Barcode, p.Quantity, batches, p.ImageURL, p.LastUpdated)
	return err
}

const maxTxRetries = 3

func (r *ProductRepositoryPG) withSerializableTx(ctx context.Context, fn func(*sql.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			if isSerializationFailure(err) {
				lastErr = err
				continue
			}
			return err
		}
		if err := tx.Commit(); err != nil {
			if isSerializationFailure(err) {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("product_pg: transaction retries exhausted: %w", lastErr)
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "serialization_failure"
}
