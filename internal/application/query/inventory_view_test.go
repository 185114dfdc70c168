package query

import (
	"testing"
	"time"

	product "stockroom/internal/domain/product"
)

var viewToday = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func prod(barcode, name string, cat product.Category, batches ...product.Batch) product.Product {
	p := product.Product{
		Barcode:     barcode,
		Name:        name,
		Category:    cat,
		ExpiryDates: batches,
	}
	p.RecomputeQuantity()
	return p
}

func batch(date string, removed bool) product.Batch {
	return product.Batch{Date: date, Quantity: 1, IsRemoved: removed}
}

func fixture() []product.Product {
	return []product.Product{
		prod("101", "Merlot", product.CategoryWines, batch("2025-05-20", false)),           // expired
		prod("102", "Dark Chocolate", product.CategoryChocolates, batch("2025-06-05", false)), // soon
		prod("103", "Cola", product.CategorySoftDrinks, batch("2025-09-01", false)),        // not expired
		prod("104", "Whisky", product.CategoryAlcohol, batch("2025-05-01", false), batch("2025-12-01", false)), // expired + not expired
		prod("105", "Empty Crisps", product.CategoryCrisps), // no batches at all
	}
}

func names(ps []product.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSearchMatchesNameOrBarcode(t *testing.T) {
	ps := fixture()

	got := BuildInventoryView(ps, ViewOptions{Search: "choco", Today: viewToday})
	if !equal(names(got), []string{"Dark Chocolate"}) {
		t.Errorf("name search: %v", names(got))
	}

	got = BuildInventoryView(ps, ViewOptions{Search: "10", Today: viewToday})
	if len(got) != 5 {
		t.Errorf("barcode substring: want all 5, got %v", names(got))
	}

	got = BuildInventoryView(ps, ViewOptions{Search: "MERL", Today: viewToday})
	if !equal(names(got), []string{"Merlot"}) {
		t.Errorf("case-insensitive search: %v", names(got))
	}

	// 部分一致は大文字小文字を無視してどの位置でも当たる:
	// "COLA" は "Cola" と "Dark ChoCOLAte" の両方に一致する。
	got = BuildInventoryView(ps, ViewOptions{Search: "COLA", Today: viewToday})
	if !equal(names(got), []string{"Cola", "Dark Chocolate"}) {
		t.Errorf("substring collision: %v", names(got))
	}
}

func TestCategoryFilter(t *testing.T) {
	ps := fixture()

	got := BuildInventoryView(ps, ViewOptions{Category: "Wines", Today: viewToday})
	if !equal(names(got), []string{"Merlot"}) {
		t.Errorf("category filter: %v", names(got))
	}

	// "All" と空文字は同義
	if n := len(BuildInventoryView(ps, ViewOptions{Category: "All", Today: viewToday})); n != 5 {
		t.Errorf(`category "All": got %d products`, n)
	}
}

func TestExpiryFilterAnyActiveBatch(t *testing.T) {
	ps := fixture()

	got := BuildInventoryView(ps, ViewOptions{Expiry: ExpiryExpired, Today: viewToday})
	if !equal(names(got), []string{"Merlot", "Whisky"}) {
		t.Errorf("expired: %v", names(got))
	}

	got = BuildInventoryView(ps, ViewOptions{Expiry: ExpiryExpiringSoon, Today: viewToday})
	if !equal(names(got), []string{"Dark Chocolate"}) {
		t.Errorf("expiring soon: %v", names(got))
	}

	// Whisky は expired と not-expired の両方に一致する（any-batch 判定）
	got = BuildInventoryView(ps, ViewOptions{Expiry: ExpiryNotExpired, Today: viewToday})
	if !equal(names(got), []string{"Cola", "Whisky"}) {
		t.Errorf("not expired: %v", names(got))
	}
}

// 除去済みバッチはフィルタ判定から外れる。
func TestExpiryFilterIgnoresRemovedBatches(t *testing.T) {
	ps := []product.Product{
		prod("201", "Old Stock", product.CategoryOther, batch("2025-05-01", true), batch("2025-12-01", false)),
	}

	if got := BuildInventoryView(ps, ViewOptions{Expiry: ExpiryExpired, Today: viewToday}); len(got) != 0 {
		t.Errorf("removed expired batch still matched: %v", names(got))
	}
	if got := BuildInventoryView(ps, ViewOptions{Expiry: ExpiryNotExpired, Today: viewToday}); len(got) != 1 {
		t.Errorf("active batch not matched: %v", names(got))
	}
}

func TestSortByName(t *testing.T) {
	ps := fixture()

	got := BuildInventoryView(ps, ViewOptions{Sort: SortNameAsc, Today: viewToday})
	if !equal(names(got), []string{"Cola", "Dark Chocolate", "Empty Crisps", "Merlot", "Whisky"}) {
		t.Errorf("name asc: %v", names(got))
	}

	got = BuildInventoryView(ps, ViewOptions{Sort: SortNameDesc, Today: viewToday})
	if !equal(names(got), []string{"Whisky", "Merlot", "Empty Crisps", "Dark Chocolate", "Cola"}) {
		t.Errorf("name desc: %v", names(got))
	}
}

// 有効バッチを持たない商品は昇順ソートで必ず末尾に沈む（番兵値）。
func TestSortByExpirySentinel(t *testing.T) {
	ps := fixture()

	got := BuildInventoryView(ps, ViewOptions{Sort: SortExpiryAsc, Today: viewToday})
	want := []string{"Whisky", "Merlot", "Dark Chocolate", "Cola", "Empty Crisps"}
	if !equal(names(got), want) {
		t.Errorf("expiry asc: %v, want %v", names(got), want)
	}

	got = BuildInventoryView(ps, ViewOptions{Sort: SortExpiryDesc, Today: viewToday})
	if names(got)[0] != "Empty Crisps" {
		t.Errorf("expiry desc should lead with sentinel product: %v", names(got))
	}
}

func TestProjectionDoesNotMutateInput(t *testing.T) {
	ps := fixture()
	orig := names(ps)

	_ = BuildInventoryView(ps, ViewOptions{Sort: SortNameDesc, Today: viewToday})
	if !equal(names(ps), orig) {
		t.Errorf("input slice reordered: %v", names(ps))
	}
}

func TestFiltersCompose(t *testing.T) {
	ps := fixture()

	got := BuildInventoryView(ps, ViewOptions{
		Search: "w",
		Expiry: ExpiryExpired,
		Sort:   SortNameAsc,
		Today:  viewToday,
	})
	// "w" は Wines(Merlot は名前に w 無し)… Merlot は含まれず Whisky のみ
	if !equal(names(got), []string{"Whisky"}) {
		t.Errorf("composed filters: %v", names(got))
	}
}
