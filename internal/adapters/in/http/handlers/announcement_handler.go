// internal/adapters/in/http/handlers/announcement_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"stockroom/internal/adapters/in/http/middleware"
	uc "stockroom/internal/application/usecase"
)

// AnnouncementHandler は /announcement（単一バナー）を担当します。
//
//	GET /announcement   現在のバナー取得
//	PUT /announcement   バナー更新（オーナーのみ）
type AnnouncementHandler struct {
	uc *uc.AnnouncementUsecase
}

func NewAnnouncementHandler(announcementUC *uc.AnnouncementUsecase) http.Handler {
	return &AnnouncementHandler{uc: announcementUC}
}

func (h *AnnouncementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErrMsg(w, http.StatusInternalServerError, "not_configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		writeErrMsg(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *AnnouncementHandler) get(w http.ResponseWriter, r *http.Request) {
	a, err := h.uc.Get(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	// canPost で UI 側が編集フォームの出し分けをする
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"announcement": a,
		"canPost":      h.uc.CanPost(middleware.CurrentEmail(r.Context())),
	})
}

func (h *AnnouncementHandler) put(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErrMsg(w, http.StatusBadRequest, "invalid json body")
		return
	}

	a, err := h.uc.Post(r.Context(), body.Message, middleware.CurrentEmail(r.Context()))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
