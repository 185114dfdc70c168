// internal/application/query/inventory_view.go
package query

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	product "stockroom/internal/domain/product"
)

// ExpiryFilter selects products by the status of their *active* batches.
// いずれも「いずれかの有効バッチが該当するか」(any-batch) 判定。
// 複数バッチ商品は複数フィルタに同時に一致しうる。
type ExpiryFilter string

const (
	ExpiryAll          ExpiryFilter = "All"
	ExpiryExpired      ExpiryFilter = "Expired"
	ExpiryExpiringSoon ExpiryFilter = "Expiring Soon"
	ExpiryNotExpired   ExpiryFilter = "Not Expired"
)

// SortKey orders the projected list.
type SortKey string

const (
	SortNameAsc    SortKey = "name_asc"
	SortNameDesc   SortKey = "name_desc"
	SortExpiryAsc  SortKey = "expiry_asc"
	SortExpiryDesc SortKey = "expiry_desc"
)

// ViewOptions are the user-controlled projection inputs.
type ViewOptions struct {
	// Search matches case-insensitively against name OR barcode (substring).
	Search string
	// Category filters by exact category; empty or "All" disables it.
	Category string
	Expiry   ExpiryFilter
	Sort     SortKey
	// Today anchors the expiry classification; zero means time.Now().
	Today time.Time
}

// BuildInventoryView is the pure projection: (snapshot, options) →
// ordered display list. No mutation of the input, no hidden state;
// identical inputs produce identical output.
func BuildInventoryView(products []product.Product, opt ViewOptions) []product.Product {
	today := opt.Today
	if today.IsZero() {
		today = time.Now().UTC()
	}

	search := strings.ToLower(strings.TrimSpace(opt.Search))
	category := strings.TrimSpace(opt.Category)
	if strings.EqualFold(category, "All") {
		category = ""
	}

	out := make([]product.Product, 0, len(products))
	for _, p := range products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Barcode), search) {
			continue
		}
		if category != "" && string(p.Category) != category {
			continue
		}
		if !matchesExpiry(p, opt.Expiry, today) {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, opt.Sort)
	return out
}

func matchesExpiry(p product.Product, f ExpiryFilter, today time.Time) bool {
	switch f {
	case "", ExpiryAll:
		return true
	case ExpiryExpired:
		return anyActiveStatus(p, today, product.StatusExpired)
	case ExpiryExpiringSoon:
		return anyActiveStatus(p, today, product.StatusExpiringSoon)
	case ExpiryNotExpired:
		return anyActiveStatus(p, today, product.StatusNotExpiringSoon)
	default:
		return true
	}
}

func anyActiveStatus(p product.Product, today time.Time, want product.ExpiryStatus) bool {
	for _, b := range p.ActiveBatches() {
		if b.Classify(today) == want {
			return true
		}
	}
	return false
}

func sortProducts(ps []product.Product, key SortKey) {
	// Collator はゴルーチン安全ではないのでソートごとに生成する。
	col := collate.New(language.English, collate.IgnoreCase)

	switch key {
	case SortNameDesc:
		sort.SliceStable(ps, func(i, j int) bool { return col.CompareString(ps[i].Name, ps[j].Name) > 0 })
	case SortExpiryAsc:
		sort.SliceStable(ps, func(i, j int) bool {
			return ps[i].EarliestActiveExpiry().Before(ps[j].EarliestActiveExpiry())
		})
	case SortExpiryDesc:
		sort.SliceStable(ps, func(i, j int) bool {
			return ps[j].EarliestActiveExpiry().Before(ps[i].EarliestActiveExpiry())
		})
	default: // SortNameAsc
		sort.SliceStable(ps, func(i, j int) bool { return col.CompareString(ps[i].Name, ps[j].Name) < 0 })
	}
}
