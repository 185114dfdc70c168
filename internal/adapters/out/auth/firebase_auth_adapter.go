// internal/adapters/out/auth/firebase_auth_adapter.go
package auth

import (
	"context"
	"errors"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	"stockroom/internal/application/usecase"
)

// FirebaseAuthAdapter implements usecase.AuthPort on top of the Firebase
// Admin SDK.
type FirebaseAuthAdapter struct {
	Client *fbauth.Client
}

func NewFirebaseAuthAdapter(client *fbauth.Client) *FirebaseAuthAdapter {
	return &FirebaseAuthAdapter{Client: client}
}

// Compile-time check
var _ usecase.AuthPort = (*FirebaseAuthAdapter)(nil)

// CreateUser registers credentials and returns the new uid.
// SDK のエラーをアプリ層のセンチネルに写像する。
func (a *FirebaseAuthAdapter) CreateUser(ctx context.Context, email, password string) (string, error) {
	if a.Client == nil {
		return "", errors.New("firebase auth client is nil")
	}

	params := (&fbauth.UserToCreate{}).
		Email(strings.TrimSpace(email)).
		Password(password)

	rec, err := a.Client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return "", usecase.ErrEmailInUse
		}
		// Admin SDK は弱いパスワードを invalid-argument として返す。
		if strings.Contains(err.Error(), "at least 6") {
			return "", usecase.ErrWeakPassword
		}
		return "", err
	}
	return rec.UID, nil
}
