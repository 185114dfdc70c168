// internal/domain/announcement/repository_port.go
package announcement

import "context"

// Repository は単一固定キードキュメントの読み書きポート。
type Repository interface {
	// Get:
	// - 現在のアナウンスを返します。未設定なら空メッセージのゼロ値。
	Get(ctx context.Context) (Announcement, error)

	// Set:
	// - アナウンスを merge-set で書き込みます（他フィールドは保持）。
	Set(ctx context.Context, a Announcement) error
}
