// internal/adapters/in/http/handlers/signup_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	uc "stockroom/internal/application/usecase"
)

// SignupHandler は POST /signup を担当します（未認証エンドポイント）。
// 作成されたアカウントは isAllowed=false で始まり、管理者承認までは
// ログインしてもミドルウェアで弾かれる。
type SignupHandler struct {
	uc *uc.SignupUsecase
}

func NewSignupHandler(signupUC *uc.SignupUsecase) http.Handler {
	return &SignupHandler{uc: signupUC}
}

func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrMsg(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.uc == nil {
		writeErrMsg(w, http.StatusInternalServerError, "not_configured")
		return
	}

	var body struct {
		Email        string `json:"email"`
		Password     string `json:"password"`
		MobileNumber string `json:"mobileNumber"`
		EmployeeID   string `json:"employeeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErrMsg(w, http.StatusBadRequest, "invalid json body")
		return
	}

	profile, err := h.uc.SignUp(r.Context(), body.Email, body.Password, body.MobileNumber, body.EmployeeID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}
