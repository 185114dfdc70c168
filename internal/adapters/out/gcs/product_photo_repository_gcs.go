// internal/adapters/out/gcs/product_photo_repository_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	proddom "stockroom/internal/domain/product"
)

// ProductPhotoRepositoryGCS implements product.PhotoStoragePort backed by
// Google Cloud Storage.
//
// オブジェクトキー構造:
//
//	products/{barcode}/{unixnano}.{ext}
//
// 同一バーコードの再投稿は別オブジェクトになるため、古い写真 URL を
// 持つドキュメントが壊れない。
type ProductPhotoRepositoryGCS struct {
	Client *storage.Client
	Bucket string
}

func NewProductPhotoRepositoryGCS(client *storage.Client, bucket string) *ProductPhotoRepositoryGCS {
	return &ProductPhotoRepositoryGCS{
		Client: client,
		Bucket: strings.TrimSpace(bucket),
	}
}

// Compile-time check
var _ proddom.PhotoStoragePort = (*ProductPhotoRepositoryGCS)(nil)

func (r *ProductPhotoRepositoryGCS) effectiveBucket() (string, error) {
	b := strings.TrimSpace(r.Bucket)
	if b == "" {
		return "", errors.New("ProductPhotoRepositoryGCS: bucket is empty")
	}
	return b, nil
}

// UploadProductPhoto writes the photo bytes and returns a public URL.
// バケットは公開読み取り前提（uniform bucket-level access）。
func (r *ProductPhotoRepositoryGCS) UploadProductPhoto(ctx context.Context, barcode string, data []byte, contentType string) (string, error) {
	if r.Client == nil {
		return "", errors.New("ProductPhotoRepositoryGCS: nil storage client")
	}
	bucketName, err := r.effectiveBucket()
	if err != nil {
		return "", err
	}

	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return "", proddom.ErrInvalidBarcode
	}
	if len(data) == 0 {
		return "", errors.New("ProductPhotoRepositoryGCS: empty photo payload")
	}

	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = "image/jpeg"
	}

	objName := fmt.Sprintf("products/%s/%d%s", barcode, time.Now().UTC().UnixNano(), extFor(contentType))

	oh := r.Client.Bucket(bucketName).Object(objName).If(storage.Conditions{DoesNotExist: true})
	w := oh.NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		// DoesNotExist 条件と UnixNano キーの組み合わせで 412 はほぼ
		// 起きないが、起きた場合は衝突として返す。
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 412 {
			return "", proddom.ErrConflict
		}
		return "", err
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objName), nil
}

func extFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
