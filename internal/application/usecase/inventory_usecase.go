// internal/application/usecase/inventory_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	product "stockroom/internal/domain/product"
)

// Validation errors surfaced inline to the form (never reach the backend).
var (
	ErrBarcodeRequired    = errors.New("inventory: barcode is required")
	ErrQuantityRequired   = errors.New("inventory: quantity is required")
	ErrExpiryDateRequired = errors.New("inventory: expiry date is required")
	ErrNameRequired       = errors.New("inventory: product name is required for a new product")
	ErrCategoryRequired   = errors.New("inventory: category is required for a new product")
	ErrPhotoUpload        = errors.New("inventory: photo upload failed")
)

// InventoryUsecase applies one stock submission (new product or new
// batch) and the mark-as-removed operation, preserving the derived
// quantity invariant.
type InventoryUsecase struct {
	repo   product.Repository
	photos product.PhotoStoragePort // optional; nil なら写真なしでのみ投稿可

	now func() time.Time
}

func NewInventoryUsecase(repo product.Repository, photos product.PhotoStoragePort) *InventoryUsecase {
	return &InventoryUsecase{
		repo:   repo,
		photos: photos,
		now:    time.Now,
	}
}

func (u *InventoryUsecase) WithNow(now func() time.Time) *InventoryUsecase {
	u.now = now
	return u
}

// SubmitInput carries the raw form fields of one submission.
// Quantity は未パースの生文字列で受ける（"abc" を区別して弾くため）。
type SubmitInput struct {
	Barcode    string
	Name       string
	Category   string
	Quantity   string
	ExpiryDate string

	// Optional photo attached this submission.
	Photo            []byte
	PhotoContentType string

	// Employee id of the submitting principal (not the raw auth uid).
	AddedBy string
}

// SubmitResult reports what one submission did.
type SubmitResult struct {
	Product product.Product `json:"product"`
	Created bool            `json:"created"`
}

// Submit applies one submission:
//
//  1. presence checks (barcode / quantity / expiry date)
//  2. read-only lookup to classify new vs existing (同一バーコードは
//     常に「バッチ追記」であり、別ドキュメントは決して作らない)
//  3. name/category presence when the barcode is new
//  4. quantity must parse as a positive integer
//  5. optional photo upload — 失敗したら投稿全体を中止する
//  6. create or transactional append
func (u *InventoryUsecase) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	barcode := strings.TrimSpace(in.Barcode)
	if barcode == "" {
		return SubmitResult{}, ErrBarcodeRequired
	}
	if strings.TrimSpace(in.Quantity) == "" {
		return SubmitResult{}, ErrQuantityRequired
	}
	if strings.TrimSpace(in.ExpiryDate) == "" {
		return SubmitResult{}, ErrExpiryDateRequired
	}

	existing, err := u.repo.GetByBarcode(ctx, barcode)
	isNew := false
	if err != nil {
		if !errors.Is(err, product.ErrNotFound) {
			return SubmitResult{}, fmt.Errorf("inventory: barcode lookup failed: %w", err)
		}
		isNew = true
	}

	if isNew {
		if strings.TrimSpace(in.Name) == "" {
			return SubmitResult{}, ErrNameRequired
		}
		if strings.TrimSpace(in.Category) == "" {
			return SubmitResult{}, ErrCategoryRequired
		}
	}

	qty, err := strconv.Atoi(strings.TrimSpace(in.Quantity))
	if err != nil || qty <= 0 {
		return SubmitResult{}, product.ErrInvalidQuantity
	}

	now := u.now().UTC()
	batch, err := product.NewBatch(in.ExpiryDate, qty, in.AddedBy, now)
	if err != nil {
		return SubmitResult{}, err
	}

	// Photo upload runs before any document write so a failed upload
	// leaves the repository untouched.
	imageURL := ""
	if len(in.Photo) > 0 {
		if u.photos == nil {
			return SubmitResult{}, fmt.Errorf("%w: photo storage is not configured", ErrPhotoUpload)
		}
		url, err := u.photos.UploadProductPhoto(ctx, barcode, in.Photo, in.PhotoContentType)
		if err != nil {
			return SubmitResult{}, fmt.Errorf("%w: %v", ErrPhotoUpload, err)
		}
		imageURL = url
	}

	if isNew {
		p, err := product.New(barcode, in.Name, product.Category(strings.TrimSpace(in.Category)), batch, imageURL, now)
		if err != nil {
			return SubmitResult{}, err
		}
		created, err := u.repo.Create(ctx, p)
		if err == nil {
			log.Printf("[inventory] created product barcode=%s qty=%d", barcode, created.Quantity)
			return SubmitResult{Product: created, Created: true}, nil
		}
		if !errors.Is(err, product.ErrConflict) {
			return SubmitResult{}, err
		}
		// 解決とサブミットの間に他の従業員が同じバーコードを作成した
		// レース。追記パスに倒す。
		log.Printf("[inventory] create raced on barcode=%s; appending instead", barcode)
	} else {
		_ = existing // name/category from the form are ignored for existing products
	}

	updated, err := u.repo.AppendBatch(ctx, barcode, batch, imageURL)
	if err != nil {
		return SubmitResult{}, err
	}
	log.Printf("[inventory] appended batch barcode=%s qty=%d total=%d", barcode, qty, updated.Quantity)
	return SubmitResult{Product: updated, Created: false}, nil
}

// MarkRemoved deactivates one batch and recomputes the derived quantity.
// すでに除去済みの場合は書き込みなしで現状を返す。
func (u *InventoryUsecase) MarkRemoved(ctx context.Context, barcode string, index int, removedBy string) (product.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return product.Product{}, ErrBarcodeRequired
	}
	if index < 0 {
		return product.Product{}, product.ErrBatchIndex
	}
	p, err := u.repo.MarkBatchRemoved(ctx, barcode, index, removedBy)
	if err != nil {
		return product.Product{}, err
	}
	log.Printf("[inventory] batch removed barcode=%s index=%d total=%d", barcode, index, p.Quantity)
	return p, nil
}
