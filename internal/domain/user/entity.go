// internal/domain/user/entity.go
package user

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Domain errors
var (
	ErrNotFound            = errors.New("user: not found")
	ErrInvalidEmail        = errors.New("user: invalid email")
	ErrInvalidMobileNumber = errors.New("user: invalid mobile number")
	ErrNotAllowed          = errors.New("user: account pending admin approval")
)

// mobileRe: 7〜15 桁、先頭 + 任意（例: +447911123456 / 07911123456）。
var mobileRe = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// Profile is the per-user document stored at users/{uid}.
// EmployeeID is the business-facing identifier stamped onto batches
// (distinct from the raw auth uid).
type Profile struct {
	UID          string    `firestore:"uid" json:"uid"`
	Email        string    `firestore:"email" json:"email"`
	MobileNumber string    `firestore:"mobileNumber" json:"mobileNumber"`
	EmployeeID   string    `firestore:"employeeId,omitempty" json:"employeeId,omitempty"`
	IsAllowed    bool      `firestore:"isAllowed" json:"isAllowed"`
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
}

// NewProfile validates signup input and builds the initial profile.
// isAllowed は必ず false で開始（管理者承認待ち）。
func NewProfile(uid, email, mobileNumber, employeeID string, now time.Time) (Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return Profile{}, ErrInvalidEmail
	}
	mobileNumber = strings.TrimSpace(mobileNumber)
	if !mobileRe.MatchString(mobileNumber) {
		return Profile{}, ErrInvalidMobileNumber
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return Profile{
		UID:          strings.TrimSpace(uid),
		Email:        email,
		MobileNumber: mobileNumber,
		EmployeeID:   strings.TrimSpace(employeeID),
		IsAllowed:    false,
		CreatedAt:    now.UTC(),
	}, nil
}

// ValidMobileNumber reports whether s passes the signup mobile check.
func ValidMobileNumber(s string) bool {
	return mobileRe.MatchString(strings.TrimSpace(s))
}
