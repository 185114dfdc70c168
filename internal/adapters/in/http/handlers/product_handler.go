// internal/adapters/in/http/handlers/product_handler.go
package handlers

import (
	"net/http"
	"strings"

	"stockroom/internal/application/resolver"
	proddom "stockroom/internal/domain/product"
)

// ProductHandler は /products 関連のエンドポイントを担当します。
//
//	GET /products/categories          カテゴリ一覧（閉集合）
//	GET /products/{barcode}           単品取得
//	GET /products/{barcode}/resolve   新規/既存の分類（投稿フォーム用）
type ProductHandler struct {
	repo     proddom.Repository
	resolver *resolver.BarcodeResolver
}

func NewProductHandler(repo proddom.Repository, res *resolver.BarcodeResolver) http.Handler {
	return &ProductHandler{repo: repo, resolver: res}
}

func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case r.Method == http.MethodGet && (path == "/products/categories" || path == "/products/categories/"):
		h.categories(w, r)

	case r.Method == http.MethodGet && strings.HasSuffix(path, "/resolve"):
		barcode := strings.TrimSuffix(strings.TrimPrefix(path, "/products/"), "/resolve")
		h.resolve(w, r, strings.Trim(barcode, "/"))

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/products/"):
		barcode := strings.TrimPrefix(path, "/products/")
		h.get(w, r, strings.Trim(barcode, "/"))

	default:
		writeErrMsg(w, http.StatusNotFound, "not_found")
	}
}

func (h *ProductHandler) categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": proddom.Categories()})
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request, barcode string) {
	if barcode == "" {
		writeErrMsg(w, http.StatusBadRequest, "barcode is required")
		return
	}
	p, err := h.repo.GetByBarcode(r.Context(), barcode)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// resolve は同期版のバーコード分類。デバウンスはクライアント側の
// 入力欄で済んでいる前提なので、ここでは即時に引いて返す。
func (h *ProductHandler) resolve(w http.ResponseWriter, r *http.Request, barcode string) {
	if h.resolver == nil {
		writeErrMsg(w, http.StatusServiceUnavailable, "resolver not configured")
		return
	}
	res := h.resolver.ResolveNow(r.Context(), barcode)
	writeJSON(w, http.StatusOK, res)
}
