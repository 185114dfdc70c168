// internal/adapters/in/http/handlers/recognition_handler.go
package handlers

import (
	"io"
	"net/http"

	"stockroom/internal/application/ocr"
)

// RecognitionHandler は POST /recognize を担当します。
// 写真から商品名候補を返すだけで、フォームへの自動反映はしない。
// Recognizer が未設定なら機能ごと 503 で落とす。
type RecognitionHandler struct {
	recognizer ocr.Recognizer // optional
}

func NewRecognitionHandler(rec ocr.Recognizer) http.Handler {
	return &RecognitionHandler{recognizer: rec}
}

func (h *RecognitionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrMsg(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.recognizer == nil {
		writeErrMsg(w, http.StatusServiceUnavailable, "text recognition not configured")
		return
	}

	image, err := readImage(r)
	if err != nil {
		writeErrMsg(w, http.StatusBadRequest, err.Error())
		return
	}

	cands, err := h.recognizer.Recognize(r.Context(), image)
	if err != nil {
		// 認識失敗は提案ゼロとして扱い、投稿フローは止めない
		writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": []string{}})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": ocr.Suggest(cands, ocr.DefaultMinConfidence),
	})
}

func readImage(r *http.Request) ([]byte, error) {
	// multipart（photo フィールド）または生ボディの両対応
	if file, _, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, maxPhotoBytes))
	}
	return io.ReadAll(io.LimitReader(r.Body, maxPhotoBytes))
}
