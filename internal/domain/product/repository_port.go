// internal/domain/product/repository_port.go
package product

import "context"

// ------------------------------------------------------
// Repository Port for Product (inventory_items collection / table)
// ------------------------------------------------------
//
// Hexagonal Architecture における「出力ポート」。
// Firestore / Postgres の具体実装は adapters/out 側で実装し、
// アプリケーション層からはこのインターフェースのみを参照します。
//
// ドキュメント ID = バーコード。AppendBatch / MarkBatchRemoved は
// 実装側でトランザクション内の read-modify-write として行うこと
// （同一バーコードへの同時追加による lost update を防ぐ）。
type Repository interface {
	// GetByBarcode:
	// - barcode で 1 件取得します。存在しなければ ErrNotFound。
	GetByBarcode(ctx context.Context, barcode string) (Product, error)

	// Create:
	// - 新規バーコードのドキュメントを作成します。
	// - 既存バーコードなら ErrConflict（上書きはしない）。
	Create(ctx context.Context, p Product) (Product, error)

	// AppendBatch:
	// - 既存ドキュメントにバッチを 1 件追記し、quantity を再計算して
	//   書き戻します（トランザクション必須）。
	// - imageURL が空でなければ imageUrl も更新します。
	AppendBatch(ctx context.Context, barcode string, b Batch, imageURL string) (Product, error)

	// MarkBatchRemoved:
	// - index のバッチを除去済みにし、quantity を再計算します。
	// - すでに除去済みなら書き込みせずに現状を返します。
	MarkBatchRemoved(ctx context.Context, barcode string, index int, removedBy string) (Product, error)

	// ListAll:
	// - 全 Product のスナップショットを返します。
	ListAll(ctx context.Context) ([]Product, error)

	// Watch:
	// - 全 Product のスナップショットストリームを返します。
	// - 各要素は完全なスナップショット（マージではなく置換）。
	// - ctx キャンセルでストリームは閉じられます。
	Watch(ctx context.Context) (<-chan []Product, error)
}
