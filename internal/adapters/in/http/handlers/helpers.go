// internal/adapters/in/http/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	uc "stockroom/internal/application/usecase"
	anndom "stockroom/internal/domain/announcement"
	proddom "stockroom/internal/domain/product"
	userdom "stockroom/internal/domain/user"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrMsg(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeDomainErr maps domain/application sentinels onto HTTP statuses.
func writeDomainErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, proddom.ErrNotFound), errors.Is(err, userdom.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, proddom.ErrConflict), errors.Is(err, uc.ErrEmailInUse):
		code = http.StatusConflict
	case errors.Is(err, anndom.ErrNotOwner), errors.Is(err, userdom.ErrNotAllowed):
		code = http.StatusForbidden
	case errors.Is(err, proddom.ErrInvalidBarcode),
		errors.Is(err, proddom.ErrInvalidName),
		errors.Is(err, proddom.ErrInvalidCategory),
		errors.Is(err, proddom.ErrInvalidQuantity),
		errors.Is(err, proddom.ErrInvalidExpiryDate),
		errors.Is(err, proddom.ErrBatchIndex),
		errors.Is(err, anndom.ErrEmptyMessage),
		errors.Is(err, userdom.ErrInvalidMobileNumber),
		errors.Is(err, uc.ErrBarcodeRequired),
		errors.Is(err, uc.ErrQuantityRequired),
		errors.Is(err, uc.ErrExpiryDateRequired),
		errors.Is(err, uc.ErrNameRequired),
		errors.Is(err, uc.ErrCategoryRequired),
		errors.Is(err, uc.ErrWeakPassword),
		errors.Is(err, uc.ErrMissingSignupArg):
		code = http.StatusBadRequest
	case errors.Is(err, uc.ErrPhotoUpload):
		code = http.StatusBadGateway
	}
	writeErrMsg(w, code, err.Error())
}
