// internal/domain/product/photo_port.go
package product

import "context"

// PhotoStoragePort は商品写真の保存先（GCS 等）への出力ポート。
// アップロード成功時は取得可能な URL を返す。
type PhotoStoragePort interface {
	UploadProductPhoto(ctx context.Context, barcode string, data []byte, contentType string) (url string, err error)
}
