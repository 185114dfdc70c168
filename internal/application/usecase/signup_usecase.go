// internal/application/usecase/signup_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	user "stockroom/internal/domain/user"
)

// Auth errors mapped from the identity provider.
var (
	ErrEmailInUse       = errors.New("signup: this email is already in use")
	ErrWeakPassword     = errors.New("signup: password is too weak (use at least 6 characters)")
	ErrMissingSignupArg = errors.New("signup: email, password and mobile number are required")
)

// AuthPort is the identity-gate output port (Firebase Auth in production).
type AuthPort interface {
	// CreateUser registers the credentials and returns the new stable uid.
	CreateUser(ctx context.Context, email, password string) (uid string, err error)
}

// SignupMailerPort sends the post-signup notification mail.
type SignupMailerPort interface {
	SendSignupNotice(ctx context.Context, toEmail string) error
}

// SignupUsecase creates the auth user, the users/{uid} profile document
// (isAllowed=false, pending admin approval) and sends the notice mail.
type SignupUsecase struct {
	auth   AuthPort
	users  user.Repository
	mailer SignupMailerPort // optional

	now func() time.Time
}

func NewSignupUsecase(auth AuthPort, users user.Repository, mailer SignupMailerPort) *SignupUsecase {
	return &SignupUsecase{
		auth:   auth,
		users:  users,
		mailer: mailer,
		now:    time.Now,
	}
}

func (u *SignupUsecase) WithNow(now func() time.Time) *SignupUsecase {
	u.now = now
	return u
}

// SignUp runs the whole signup flow and returns the created profile.
func (u *SignupUsecase) SignUp(ctx context.Context, email, password, mobileNumber, employeeID string) (user.Profile, error) {
	email = strings.TrimSpace(email)
	mobileNumber = strings.TrimSpace(mobileNumber)
	if email == "" || password == "" || mobileNumber == "" {
		return user.Profile{}, ErrMissingSignupArg
	}
	if !user.ValidMobileNumber(mobileNumber) {
		return user.Profile{}, user.ErrInvalidMobileNumber
	}

	uid, err := u.auth.CreateUser(ctx, email, password)
	if err != nil {
		return user.Profile{}, err
	}

	profile, err := user.NewProfile(uid, email, mobileNumber, employeeID, u.now())
	if err != nil {
		return user.Profile{}, err
	}
	created, err := u.users.Create(ctx, profile)
	if err != nil {
		return user.Profile{}, fmt.Errorf("signup: profile create failed: %w", err)
	}

	// メール送信はベストエフォート。アカウントは作成済みなので
	// 失敗してもサインアップ自体は成功として返す。
	if u.mailer != nil {
		if err := u.mailer.SendSignupNotice(ctx, email); err != nil {
			log.Printf("[signup] WARN: notice mail failed for %s: %v", email, err)
		}
	}

	log.Printf("[signup] user created uid=%s (pending approval)", uid)
	return created, nil
}
