// internal/domain/product/entity.go
package product

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrNotFound          = errors.New("product: not found")
	ErrConflict          = errors.New("product: already exists")
	ErrInvalidBarcode    = errors.New("product: invalid barcode")
	ErrInvalidName       = errors.New("product: invalid name")
	ErrInvalidCategory   = errors.New("product: invalid category")
	ErrInvalidQuantity   = errors.New("product: quantity must be a positive number")
	ErrInvalidExpiryDate = errors.New("product: invalid expiry date")
	ErrBatchIndex        = errors.New("product: batch index out of range")
)

// DateLayout is the calendar-date format stored on each batch.
// 既存データ互換のため時刻成分は持たない（"YYYY-MM-DD" 固定）。
const DateLayout = "2006-01-02"

// Category is a closed set; anything unknown is rejected at the edge.
type Category string

const (
	CategoryChocolates Category = "Chocolates"
	CategoryAlcohol    Category = "Alcohol"
	CategoryWines      Category = "Wines"
	CategoryCigarettes Category = "Cigarettes"
	CategorySoftDrinks Category = "Soft Drinks"
	CategoryCrisps     Category = "Crisps"
	CategoryOther      Category = "Other"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryChocolates,
		CategoryAlcohol,
		CategoryWines,
		CategoryCigarettes,
		CategorySoftDrinks,
		CategoryCrisps,
		CategoryOther,
	}
}

// IsValid reports whether c is a member of the closed category set.
func (c Category) IsValid() bool {
	for _, v := range Categories() {
		if c == v {
			return true
		}
	}
	return false
}

// Batch is one stock entry inside Product.ExpiryDates.
// Quantity と Date は作成後不変。IsRemoved のみ false→true に遷移する。
type Batch struct {
	Date      string    `firestore:"date" json:"date"`
	Quantity  int       `firestore:"quantity" json:"quantity"`
	AddedAt   time.Time `firestore:"addedAt" json:"addedAt"`
	AddedBy   string    `firestore:"addedBy,omitempty" json:"addedBy,omitempty"`
	IsRemoved bool      `firestore:"isRemoved" json:"isRemoved"`
	RemovedBy string    `firestore:"removedBy,omitempty" json:"removedBy,omitempty"`
}

// NewBatch validates and builds one batch entry.
func NewBatch(date string, quantity int, addedBy string, now time.Time) (Batch, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return Batch{}, ErrInvalidExpiryDate
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return Batch{}, ErrInvalidExpiryDate
	}
	if quantity <= 0 {
		return Batch{}, ErrInvalidQuantity
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return Batch{
		Date:     date,
		Quantity: quantity,
		AddedAt:  now.UTC(),
		AddedBy:  strings.TrimSpace(addedBy),
	}, nil
}

// ExpiryDate parses the batch date (date only, no time component).
func (b Batch) ExpiryDate() (time.Time, error) {
	return time.Parse(DateLayout, b.Date)
}

// Product is the unique-by-barcode aggregate. The Firestore document id
// is the barcode itself, so Barcode is not persisted as a field.
type Product struct {
	Barcode     string    `firestore:"-" json:"barcode"`
	Name        string    `firestore:"name" json:"name"`
	Category    Category  `firestore:"category" json:"category"`
	Quantity    int       `firestore:"quantity" json:"quantity"`
	ExpiryDates []Batch   `firestore:"expiryDates" json:"expiryDates"`
	ImageURL    string    `firestore:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	LastUpdated time.Time `firestore:"lastUpdated" json:"lastUpdated"`
}

// New builds a brand-new product with its first batch.
// name/category は新規バーコードの初回書き込みでのみ受け付ける。
func New(barcode, name string, category Category, first Batch, imageURL string, now time.Time) (Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Product{}, ErrInvalidBarcode
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Product{}, ErrInvalidName
	}
	if !category.IsValid() {
		return Product{}, ErrInvalidCategory
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	p := Product{
		Barcode:     barcode,
		Name:        name,
		Category:    category,
		ExpiryDates: []Batch{first},
		ImageURL:    strings.TrimSpace(imageURL),
		CreatedAt:   now.UTC(),
		LastUpdated: now.UTC(),
	}
	p.RecomputeQuantity()
	return p, nil
}

// RecomputeQuantity re-derives the cached total from the full batch list.
// Quantity は常に「未除去バッチの数量合計」。差分更新はしない（過去の
// ドリフトを引きずらないため毎回全走査する）。
func (p *Product) RecomputeQuantity() {
	total := 0
	for _, b := range p.ExpiryDates {
		if !b.IsRemoved {
			total += b.Quantity
		}
	}
	p.Quantity = total
}

// AppendBatch appends one batch (insertion order preserved) and
// recomputes the derived quantity.
func (p *Product) AppendBatch(b Batch, now time.Time) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	p.ExpiryDates = append(p.ExpiryDates, b)
	p.RecomputeQuantity()
	p.LastUpdated = now.UTC()
}

// MarkBatchRemoved flips IsRemoved on exactly one batch.
// すでに除去済みのバッチは no-op（changed=false）として短絡する。
func (p *Product) MarkBatchRemoved(index int, removedBy string, now time.Time) (changed bool, err error) {
	if index < 0 || index >= len(p.ExpiryDates) {
		return false, ErrBatchIndex
	}
	if p.ExpiryDates[index].IsRemoved {
		return false, nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	p.ExpiryDates[index].IsRemoved = true
	if rb := strings.TrimSpace(removedBy); rb != "" {
		p.ExpiryDates[index].RemovedBy = rb
	}
	p.RecomputeQuantity()
	p.LastUpdated = now.UTC()
	return true, nil
}

// ActiveBatches returns the batches with IsRemoved == false.
func (p Product) ActiveBatches() []Batch {
	out := make([]Batch, 0, len(p.ExpiryDates))
	for _, b := range p.ExpiryDates {
		if !b.IsRemoved {
			out = append(out, b)
		}
	}
	return out
}

// FarFutureExpiry is the sort sentinel for products with no active batch:
// they order last under ascending-expiry sorting.
var FarFutureExpiry = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// EarliestActiveExpiry returns the earliest expiry date among active
// batches, or FarFutureExpiry when none remain.
func (p Product) EarliestActiveExpiry() time.Time {
	earliest := FarFutureExpiry
	for _, b := range p.ExpiryDates {
		if b.IsRemoved {
			continue
		}
		d, err := b.ExpiryDate()
		if err != nil {
			continue
		}
		if d.Before(earliest) {
			earliest = d
		}
	}
	return earliest
}

// ExpiryStatus classifies a batch date against "today" (date-only).
type ExpiryStatus string

const (
	StatusExpired         ExpiryStatus = "Expired"
	StatusExpiringSoon    ExpiryStatus = "Expiring Soon"
	StatusNotExpiringSoon ExpiryStatus = "Not Expiring Soon"
)

// ExpiringSoonWindowDays: today or within the next 7 days inclusive.
const ExpiringSoonWindowDays = 7

// Classify returns the expiry status of b relative to today.
func (b Batch) Classify(today time.Time) ExpiryStatus {
	d, err := b.ExpiryDate()
	if err != nil {
		return StatusNotExpiringSoon
	}
	today = truncateToDay(today)
	d = truncateToDay(d)
	if d.Before(today) {
		return StatusExpired
	}
	if !d.After(today.AddDate(0, 0, ExpiringSoonWindowDays)) {
		return StatusExpiringSoon
	}
	return StatusNotExpiringSoon
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ProductsTableDDL defines the SQL for the products table migration.
// Firestore 実装と等価なドキュメント形を JSONB で保持する。
const ProductsTableDDL = `
-- Migration: Initialize Product domain

BEGIN;

CREATE TABLE IF NOT EXISTS products (
  barcode       TEXT        PRIMARY KEY,
  name          TEXT        NOT NULL,
  category      TEXT        NOT NULL,
  quantity      INTEGER     NOT NULL DEFAULT 0,
  expiry_dates  JSONB       NOT NULL DEFAULT '[]',
  image_url     TEXT,
  created_at    TIMESTAMPTZ NOT NULL,
  last_updated  TIMESTAMPTZ NOT NULL,

  CONSTRAINT chk_product_barcode_non_empty  CHECK (char_length(trim(barcode)) > 0),
  CONSTRAINT chk_product_name_non_empty     CHECK (char_length(trim(name)) > 0),
  CONSTRAINT chk_product_category_non_empty CHECK (char_length(trim(category)) > 0),
  CONSTRAINT chk_product_quantity_nonneg    CHECK (quantity >= 0)
);

CREATE INDEX IF NOT EXISTS idx_products_category     ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_last_updated ON products(last_updated);

COMMIT;
`
