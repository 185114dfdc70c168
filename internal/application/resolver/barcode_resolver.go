// internal/application/resolver/barcode_resolver.go
package resolver

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	product "stockroom/internal/domain/product"
)

// State is the explicit two-variant (plus idle/error) resolution state.
// StateExisting: name/category は既存ドキュメントから継承され編集不可。
// StateNew: name/category は必須入力。
type State string

const (
	StateIdle     State = "idle"
	StateNew      State = "new"
	StateExisting State = "existing"
	StateError    State = "error"
)

// Informational status messages surfaced to the form.
const (
	StatusExisting = "This product exists in inventory. Add a new stock batch."
	StatusNew      = "New product. Please fill in name and category."
	StatusLookup   = "Could not check barcode. Please try again."
)

// Resolution is the outcome of classifying one stabilized barcode value.
type Resolution struct {
	State    State            `json:"state"`
	Barcode  string           `json:"barcode"`
	Name     string           `json:"name,omitempty"`
	Category product.Category `json:"category,omitempty"`
	ImageURL string           `json:"imageUrl,omitempty"`
	Status   string           `json:"status,omitempty"`
}

// DefaultDebounce is the quiescence window before a lookup fires.
const DefaultDebounce = 400 * time.Millisecond

// BarcodeResolver debounces barcode input and classifies each stabilized
// value as naming a new or existing product.
//
// 古いルックアップの結果は世代カウンタで破棄する（能動キャンセルはせず
// 到着時に無視する）。キャッシュは持たない: 同じバーコードに戻っても
// 毎回新しいルックアップを発行する。
type BarcodeResolver struct {
	repo     product.Repository
	debounce time.Duration

	mu    sync.Mutex
	gen   uint64
	timer *time.Timer

	events chan Resolution
	done   chan struct{}
	once   sync.Once
}

// New builds a resolver around the given repository.
// debounce <= 0 の場合は DefaultDebounce を使う。
func New(repo product.Repository, debounce time.Duration) *BarcodeResolver {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &BarcodeResolver{
		repo:     repo,
		debounce: debounce,
		events:   make(chan Resolution, 16),
		done:     make(chan struct{}),
	}
}

// Events delivers one Resolution per applied lookup (or reset).
// Superseded lookups never produce an event.
func (r *BarcodeResolver) Events() <-chan Resolution {
	return r.events
}

// Set feeds the current barcode value (typed or scanned — both take the
// same path). The lookup fires only once the value has been stable for
// the debounce window; a newer Set supersedes any pending one.
func (r *BarcodeResolver) Set(ctx context.Context, barcode string) {
	trimmed := strings.TrimSpace(barcode)

	r.mu.Lock()
	r.gen++
	gen := r.gen
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}

	// 空/空白のみ: ルックアップは発行せず即リセット。
	if trimmed == "" {
		r.mu.Unlock()
		r.emit(gen, Resolution{State: StateIdle})
		return
	}

	r.timer = time.AfterFunc(r.debounce, func() {
		res := r.ResolveNow(ctx, trimmed)
		r.emit(gen, res)
	})
	r.mu.Unlock()
}

// ResolveNow performs one immediate read-only lookup (no debounce).
// HTTP ハンドラなど同期経路から使う。
func (r *BarcodeResolver) ResolveNow(ctx context.Context, barcode string) Resolution {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Resolution{State: StateIdle}
	}

	p, err := r.repo.GetByBarcode(ctx, barcode)
	switch {
	case err == nil:
		return Resolution{
			State:    StateExisting,
			Barcode:  barcode,
			Name:     p.Name,
			Category: p.Category,
			ImageURL: p.ImageURL,
			Status:   StatusExisting,
		}
	case errors.Is(err, product.ErrNotFound):
		return Resolution{
			State:   StateNew,
			Barcode: barcode,
			Status:  StatusNew,
		}
	default:
		// 失敗時は new とも existing とも断定しない。
		log.Printf("[resolver] lookup failed barcode=%q: %v", barcode, err)
		return Resolution{
			State:   StateError,
			Barcode: barcode,
			Status:  StatusLookup,
		}
	}
}

// emit applies the resolution only if gen is still the latest.
func (r *BarcodeResolver) emit(gen uint64, res Resolution) {
	r.mu.Lock()
	stale := gen != r.gen
	r.mu.Unlock()
	if stale {
		return
	}
	select {
	case r.events <- res:
	case <-r.done:
	}
}

// Close stops pending lookups and closes the event stream.
func (r *BarcodeResolver) Close() {
	r.once.Do(func() {
		r.mu.Lock()
		if r.timer != nil {
			r.timer.Stop()
			r.timer = nil
		}
		r.gen++ // 以降の emit をすべて無効化
		r.mu.Unlock()
		close(r.done)
	})
}
