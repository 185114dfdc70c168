// internal/adapters/in/http/handlers/inventory_handler.go
package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"stockroom/internal/adapters/in/http/middleware"
	"stockroom/internal/application/query"
	uc "stockroom/internal/application/usecase"
	proddom "stockroom/internal/domain/product"
)

// 写真アップロードの上限（multipart メモリ上限も兼ねる）
const maxPhotoBytes = 10 << 20

// InventoryHandler は /inventory 関連のエンドポイントを担当します。
//
//	GET  /inventory                                     一覧（検索/絞り込み/並び替え）
//	POST /inventory                                     バッチ投稿（multipart）
//	POST /inventory/{barcode}/batches/{index}/remove    バッチの除去マーク
type InventoryHandler struct {
	uc   *uc.InventoryUsecase
	repo proddom.Repository
	live *query.LiveInventoryView // optional
}

func NewInventoryHandler(inventoryUC *uc.InventoryUsecase, repo proddom.Repository, live *query.LiveInventoryView) http.Handler {
	return &InventoryHandler{uc: inventoryUC, repo: repo, live: live}
}

// ServeHTTP はHTTPルーティングの入口です。
func (h *InventoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case r.Method == http.MethodGet && (path == "/inventory" || path == "/inventory/"):
		h.list(w, r)

	case r.Method == http.MethodPost && (path == "/inventory" || path == "/inventory/"):
		h.submit(w, r)

	// POST /inventory/{barcode}/batches/{index}/remove
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/remove"):
		h.markRemoved(w, r)

	default:
		writeErrMsg(w, http.StatusNotFound, "not_found")
	}
}

// GET /inventory?q=...&category=...&expiry=...&sort=...
func (h *InventoryHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.snapshot(r)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	q := r.URL.Query()
	opt := query.ViewOptions{
		Search:   q.Get("q"),
		Category: q.Get("category"),
		Expiry:   query.ExpiryFilter(q.Get("expiry")),
		Sort:     query.SortKey(q.Get("sort")),
	}
	if opt.Expiry == "" {
		opt.Expiry = query.ExpiryAll
	}
	if opt.Sort == "" {
		opt.Sort = query.SortNameAsc
	}

	view := query.BuildInventoryView(products, opt)
	if view == nil {
		view = []proddom.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": view})
}

// スナップショットはライブビュー優先、未準備なら直接読む。
func (h *InventoryHandler) snapshot(r *http.Request) ([]proddom.Product, error) {
	if h.live != nil && h.live.Ready() {
		return h.live.Snapshot(), nil
	}
	return h.repo.ListAll(r.Context())
}

// POST /inventory (multipart/form-data)
//
// fields: barcode, name, category, quantity, expiryDate
// file:   photo (optional)
func (h *InventoryHandler) submit(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErrMsg(w, http.StatusInternalServerError, "not_configured")
		return
	}
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		writeErrMsg(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	in := uc.SubmitInput{
		Barcode:    r.FormValue("barcode"),
		Name:       r.FormValue("name"),
		Category:   r.FormValue("category"),
		Quantity:   r.FormValue("quantity"),
		ExpiryDate: r.FormValue("expiryDate"),
		AddedBy:    submitterID(r),
	}

	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
		if err != nil {
			writeErrMsg(w, http.StatusBadRequest, "failed to read photo")
			return
		}
		if len(data) > maxPhotoBytes {
			writeErrMsg(w, http.StatusRequestEntityTooLarge, "photo too large")
			return
		}
		in.Photo = data
		in.PhotoContentType = header.Header.Get("Content-Type")
	}

	res, err := h.uc.Submit(r.Context(), in)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	code := http.StatusOK
	if res.Created {
		code = http.StatusCreated
	}
	writeJSON(w, code, res)
}

// POST /inventory/{barcode}/batches/{index}/remove
func (h *InventoryHandler) markRemoved(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErrMsg(w, http.StatusInternalServerError, "not_configured")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/inventory/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	// {barcode}/batches/{index}/remove
	if len(parts) != 4 || parts[1] != "batches" || parts[3] != "remove" {
		writeErrMsg(w, http.StatusNotFound, "not_found")
		return
	}
	barcode := strings.TrimSpace(parts[0])
	index, err := strconv.Atoi(parts[2])
	if err != nil {
		writeErrMsg(w, http.StatusBadRequest, "invalid batch index")
		return
	}

	p, err := h.uc.MarkRemoved(r.Context(), barcode, index, submitterID(r))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// submitterID はバッチに刻む事業者向け ID を返す。
// employeeId が未設定のプロフィールは email で代替する。
func submitterID(r *http.Request) string {
	if p, ok := middleware.CurrentProfile(r.Context()); ok {
		if strings.TrimSpace(p.EmployeeID) != "" {
			return p.EmployeeID
		}
		return p.Email
	}
	return middleware.CurrentEmail(r.Context())
}
