// internal/domain/user/repository_port.go
package user

import "context"

// Repository は users/{uid} ドキュメントのポート。
type Repository interface {
	// GetByUID:
	// - uid で 1 件取得します。存在しなければ ErrNotFound。
	GetByUID(ctx context.Context, uid string) (Profile, error)

	// Create:
	// - users/{uid} に初期プロフィールを作成します。
	Create(ctx context.Context, p Profile) (Profile, error)
}
