package product

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func mustBatch(t *testing.T, date string, qty int) Batch {
	t.Helper()
	b, err := NewBatch(date, qty, "emp-1", testNow)
	if err != nil {
		t.Fatalf("NewBatch(%q, %d): %v", date, qty, err)
	}
	return b
}

func TestNewBatchValidation(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		qty     int
		wantErr error
	}{
		{"valid", "2025-06-10", 3, nil},
		{"empty date", "", 3, ErrInvalidExpiryDate},
		{"bad date format", "10/06/2025", 3, ErrInvalidExpiryDate},
		{"zero quantity", "2025-06-10", 0, ErrInvalidQuantity},
		{"negative quantity", "2025-06-10", -2, ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBatch(tt.date, tt.qty, "emp-1", testNow)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got err=%v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewProductValidation(t *testing.T) {
	first := mustBatch(t, "2025-06-10", 3)

	if _, err := New("", "Milk", CategoryOther, first, "", testNow); !errors.Is(err, ErrInvalidBarcode) {
		t.Errorf("empty barcode: got %v", err)
	}
	if _, err := New("111", "  ", CategoryOther, first, "", testNow); !errors.Is(err, ErrInvalidName) {
		t.Errorf("empty name: got %v", err)
	}
	if _, err := New("111", "Milk", Category("Gadgets"), first, "", testNow); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("unknown category: got %v", err)
	}

	p, err := New("111", "Milk", CategorySoftDrinks, first, "", testNow)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Quantity != 3 {
		t.Errorf("Quantity = %d, want 3", p.Quantity)
	}
	if len(p.ExpiryDates) != 1 {
		t.Errorf("ExpiryDates len = %d, want 1", len(p.ExpiryDates))
	}
}

func TestQuantityIsDerivedFromBatches(t *testing.T) {
	p, _ := New("111", "Milk", CategorySoftDrinks, mustBatch(t, "2025-06-10", 3), "", testNow)
	p.AppendBatch(mustBatch(t, "2025-07-01", 5), testNow)
	p.AppendBatch(mustBatch(t, "2025-05-01", 2), testNow)

	if p.Quantity != 10 {
		t.Fatalf("after appends Quantity = %d, want 10", p.Quantity)
	}

	// 順序は挿入順のまま保たれる
	if p.ExpiryDates[0].Date != "2025-06-10" || p.ExpiryDates[2].Date != "2025-05-01" {
		t.Errorf("insertion order not preserved: %+v", p.ExpiryDates)
	}

	changed, err := p.MarkBatchRemoved(1, "emp-2", testNow)
	if err != nil || !changed {
		t.Fatalf("MarkBatchRemoved: changed=%v err=%v", changed, err)
	}
	if p.Quantity != 5 {
		t.Errorf("after removal Quantity = %d, want 5", p.Quantity)
	}
	if p.ExpiryDates[1].RemovedBy != "emp-2" {
		t.Errorf("RemovedBy = %q, want emp-2", p.ExpiryDates[1].RemovedBy)
	}
}

func TestMarkBatchRemoved(t *testing.T) {
	p, _ := New("111", "Milk", CategorySoftDrinks, mustBatch(t, "2025-06-10", 3), "", testNow)

	// 除去済みバッチへの再操作は no-op
	if _, err := p.MarkBatchRemoved(0, "emp-1", testNow); err != nil {
		t.Fatalf("first removal: %v", err)
	}
	changed, err := p.MarkBatchRemoved(0, "emp-9", testNow)
	if err != nil {
		t.Fatalf("second removal: %v", err)
	}
	if changed {
		t.Error("second removal reported changed=true, want no-op")
	}
	if p.ExpiryDates[0].RemovedBy != "emp-1" {
		t.Errorf("RemovedBy overwritten on no-op: %q", p.ExpiryDates[0].RemovedBy)
	}

	// 範囲外インデックス
	if _, err := p.MarkBatchRemoved(5, "emp-1", testNow); !errors.Is(err, ErrBatchIndex) {
		t.Errorf("out-of-range: got %v, want ErrBatchIndex", err)
	}
	if _, err := p.MarkBatchRemoved(-1, "emp-1", testNow); !errors.Is(err, ErrBatchIndex) {
		t.Errorf("negative index: got %v, want ErrBatchIndex", err)
	}
}

func TestClassify(t *testing.T) {
	today := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC) // 時刻成分は無視される

	tests := []struct {
		date string
		want ExpiryStatus
	}{
		{"2025-05-31", StatusExpired},
		{"2025-06-01", StatusExpiringSoon}, // 当日は soon
		{"2025-06-08", StatusExpiringSoon}, // 7日後（境界の内側）
		{"2025-06-09", StatusNotExpiringSoon},
		{"2026-01-01", StatusNotExpiringSoon},
	}
	for _, tt := range tests {
		b := Batch{Date: tt.date, Quantity: 1}
		if got := b.Classify(today); got != tt.want {
			t.Errorf("Classify(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestEarliestActiveExpiry(t *testing.T) {
	p, _ := New("111", "Milk", CategorySoftDrinks, mustBatch(t, "2025-06-10", 3), "", testNow)
	p.AppendBatch(mustBatch(t, "2025-05-01", 2), testNow)

	if got := p.EarliestActiveExpiry(); got.Format(DateLayout) != "2025-05-01" {
		t.Errorf("EarliestActiveExpiry = %s, want 2025-05-01", got.Format(DateLayout))
	}

	// 最早バッチを除去すると次点に繰り上がる
	if _, err := p.MarkBatchRemoved(1, "emp-1", testNow); err != nil {
		t.Fatal(err)
	}
	if got := p.EarliestActiveExpiry(); got.Format(DateLayout) != "2025-06-10" {
		t.Errorf("after removal = %s, want 2025-06-10", got.Format(DateLayout))
	}

	// 全部除去されたら番兵値
	if _, err := p.MarkBatchRemoved(0, "emp-1", testNow); err != nil {
		t.Fatal(err)
	}
	if got := p.EarliestActiveExpiry(); !got.Equal(FarFutureExpiry) {
		t.Errorf("all removed = %s, want sentinel", got)
	}
}

func TestActiveBatches(t *testing.T) {
	p, _ := New("111", "Milk", CategorySoftDrinks, mustBatch(t, "2025-06-10", 3), "", testNow)
	p.AppendBatch(mustBatch(t, "2025-07-01", 5), testNow)
	if _, err := p.MarkBatchRemoved(0, "emp-1", testNow); err != nil {
		t.Fatal(err)
	}

	active := p.ActiveBatches()
	if len(active) != 1 || active[0].Date != "2025-07-01" {
		t.Errorf("ActiveBatches = %+v", active)
	}
}

func TestCategoryClosedSet(t *testing.T) {
	for _, c := range Categories() {
		if !c.IsValid() {
			t.Errorf("catalog category %q reported invalid", c)
		}
	}
	if Category("Electronics").IsValid() {
		t.Error("unknown category reported valid")
	}
	if Category("chocolates").IsValid() {
		t.Error("category match must be case-sensitive")
	}
}
