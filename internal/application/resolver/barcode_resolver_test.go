package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	product "stockroom/internal/domain/product"
)

// lookupRepo is a product.Repository stub for resolver tests; only
// GetByBarcode matters here.
type lookupRepo struct {
	mu      sync.Mutex
	items   map[string]product.Product
	err     error
	lookups []string
}

func newLookupRepo() *lookupRepo {
	return &lookupRepo{items: map[string]product.Product{}}
}

func (r *lookupRepo) GetByBarcode(_ context.Context, barcode string) (product.Product, error) {
	r.mu.Lock()
	r.lookups = append(r.lookups, barcode)
	r.mu.Unlock()
	if r.err != nil {
		return product.Product{}, r.err
	}
	p, ok := r.items[barcode]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

func (r *lookupRepo) lookupCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lookups)
}

func (r *lookupRepo) Create(_ context.Context, p product.Product) (product.Product, error) {
	return p, nil
}
func (r *lookupRepo) AppendBatch(_ context.Context, _ string, _ product.Batch, _ string) (product.Product, error) {
	return product.Product{}, product.ErrNotFound
}
func (r *lookupRepo) MarkBatchRemoved(_ context.Context, _ string, _ int, _ string) (product.Product, error) {
	return product.Product{}, product.ErrNotFound
}
func (r *lookupRepo) ListAll(_ context.Context) ([]product.Product, error) { return nil, nil }
func (r *lookupRepo) Watch(_ context.Context) (<-chan []product.Product, error) {
	ch := make(chan []product.Product)
	close(ch)
	return ch, nil
}

func existingProduct() product.Product {
	return product.Product{
		Barcode:  "4901234567890",
		Name:     "Dark Chocolate",
		Category: product.CategoryChocolates,
		ImageURL: "https://example.com/p.jpg",
	}
}

func TestResolveNowExisting(t *testing.T) {
	repo := newLookupRepo()
	repo.items["4901234567890"] = existingProduct()
	r := New(repo, time.Millisecond)
	defer r.Close()

	res := r.ResolveNow(context.Background(), " 4901234567890 ")
	if res.State != StateExisting {
		t.Fatalf("State = %v", res.State)
	}
	if res.Name != "Dark Chocolate" || res.Category != product.CategoryChocolates {
		t.Errorf("inherited fields wrong: %+v", res)
	}
	if res.Status != StatusExisting {
		t.Errorf("Status = %q", res.Status)
	}
}

func TestResolveNowNew(t *testing.T) {
	r := New(newLookupRepo(), time.Millisecond)
	defer r.Close()

	res := r.ResolveNow(context.Background(), "000")
	if res.State != StateNew {
		t.Fatalf("State = %v", res.State)
	}
	if res.Name != "" || res.Category != "" {
		t.Errorf("new resolution must not carry identity fields: %+v", res)
	}
}

// ルックアップ失敗は new でも existing でもなく error。
func TestResolveNowLookupFailure(t *testing.T) {
	repo := newLookupRepo()
	repo.err = errors.New("backend down")
	r := New(repo, time.Millisecond)
	defer r.Close()

	res := r.ResolveNow(context.Background(), "123")
	if res.State != StateError {
		t.Fatalf("State = %v, want error", res.State)
	}
	if res.Status != StatusLookup {
		t.Errorf("Status = %q", res.Status)
	}
}

func TestResolveNowEmptyIsIdle(t *testing.T) {
	repo := newLookupRepo()
	r := New(repo, time.Millisecond)
	defer r.Close()

	if res := r.ResolveNow(context.Background(), "   "); res.State != StateIdle {
		t.Fatalf("State = %v, want idle", res.State)
	}
	if repo.lookupCount() != 0 {
		t.Error("empty barcode must not hit the repository")
	}
}

func TestSetDebouncesRapidInput(t *testing.T) {
	repo := newLookupRepo()
	repo.items["4901234567890"] = existingProduct()
	r := New(repo, 30*time.Millisecond)
	defer r.Close()

	ctx := context.Background()
	// スキャナ入力を模す: 1 文字ずつの再入力
	r.Set(ctx, "49012")
	r.Set(ctx, "490123456")
	r.Set(ctx, "4901234567890")

	select {
	case res := <-r.Events():
		if res.State != StateExisting || res.Barcode != "4901234567890" {
			t.Fatalf("unexpected resolution: %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no resolution delivered")
	}

	// 途中値のルックアップは発行されない
	if n := repo.lookupCount(); n != 1 {
		t.Errorf("lookups = %d, want 1 (intermediate values must be superseded)", n)
	}
}

func TestSetEmptyResetsImmediately(t *testing.T) {
	repo := newLookupRepo()
	r := New(repo, 50*time.Millisecond)
	defer r.Close()

	r.Set(context.Background(), "")
	select {
	case res := <-r.Events():
		if res.State != StateIdle {
			t.Fatalf("State = %v, want idle", res.State)
		}
	case <-time.After(time.Second):
		t.Fatal("idle reset not delivered")
	}
	if repo.lookupCount() != 0 {
		t.Error("reset must not hit the repository")
	}
}

// クリア（空入力）が保留中のルックアップを打ち消す。
func TestSetClearSupersedesPendingLookup(t *testing.T) {
	repo := newLookupRepo()
	repo.items["111"] = existingProduct()
	r := New(repo, 20*time.Millisecond)
	defer r.Close()

	ctx := context.Background()
	r.Set(ctx, "111")
	r.Set(ctx, "") // デバウンス満了前にクリア

	res := <-r.Events()
	if res.State != StateIdle {
		t.Fatalf("first event = %+v, want idle", res)
	}

	// 打ち消されたルックアップの結果は流れてこない
	select {
	case res := <-r.Events():
		t.Fatalf("unexpected second event: %+v", res)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	r := New(newLookupRepo(), time.Millisecond)
	r.Set(context.Background(), "123")
	r.Close()
	r.Close() // 二重 Close で panic しない
}
