// internal/application/query/live_view.go
package query

import (
	"context"
	"log"
	"sync"

	product "stockroom/internal/domain/product"
)

// LiveInventoryView holds the latest full snapshot from the repository's
// Watch stream. Each delivered snapshot fully replaces the previous one
// （マージはしない — 届いたスナップショットが常に正）。
type LiveInventoryView struct {
	mu      sync.RWMutex
	latest  []product.Product
	started bool
}

func NewLiveInventoryView() *LiveInventoryView {
	return &LiveInventoryView{}
}

// Run subscribes and keeps replacing the snapshot until ctx is done.
// Watch が張れなかった場合はエラーを返し、呼び出し側は ListAll への
// フォールバックで読み続けられる。
func (v *LiveInventoryView) Run(ctx context.Context, repo product.Repository) error {
	ch, err := repo.Watch(ctx)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-ch:
				if !ok {
					log.Printf("[live_view] watch stream closed")
					v.mu.Lock()
					v.started = false
					v.mu.Unlock()
					return
				}
				// 初回スナップショットが届くまでは Ready にしない。
				// （起動直後に空リストを返さず ListAll に倒すため）
				v.mu.Lock()
				v.latest = snap
				v.started = true
				v.mu.Unlock()
			}
		}
	}()
	return nil
}

// Ready reports whether at least one live snapshot has been received
// and is being maintained.
func (v *LiveInventoryView) Ready() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.started
}

// Snapshot returns the latest full product set (copy; safe to project).
func (v *LiveInventoryView) Snapshot() []product.Product {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]product.Product, len(v.latest))
	copy(out, v.latest)
	return out
}
