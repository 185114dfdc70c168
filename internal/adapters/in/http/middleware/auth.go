// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	userdom "stockroom/internal/domain/user"
)

// FirebaseAuthClient は firebase auth クライアントのエイリアス。
// RouterDeps などからは *middleware.FirebaseAuthClient 型で受けられます。
type FirebaseAuthClient = fbauth.Client

// context key は string を使わず、衝突回避のため独自型を使用（SA1029 対策）
type ctxKey struct{ name string }

var (
	ctxKeyProfile = ctxKey{name: "currentProfile"}
	ctxKeyUID     = ctxKey{name: "uid"}
	ctxKeyEmail   = ctxKey{name: "email"}
)

// AuthMiddleware は
//
//   - Authorization: Bearer <ID_TOKEN>
//
// を検証し、現在ユーザーのプロフィールと uid/email を context に詰めて
// 次のハンドラへ渡す。isAllowed=false のアカウントはここで 403 になる:
// 認証は通っても、管理者承認が下りるまでアプリには入れない。
type AuthMiddleware struct {
	FirebaseAuth *FirebaseAuthClient
	UserRepo     userdom.Repository
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		// 依存チェック
		if m.FirebaseAuth == nil || m.UserRepo == nil {
			http.Error(w, "auth middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "unauthorized: missing bearer token", http.StatusUnauthorized)
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			http.Error(w, "unauthorized: empty bearer token", http.StatusUnauthorized)
			return
		}

		// Firebase ID トークン検証
		token, err := m.FirebaseAuth.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		uid := strings.TrimSpace(token.UID)
		if uid == "" {
			http.Error(w, "invalid uid in token", http.StatusUnauthorized)
			return
		}

		// uid → Profile
		profile, err := m.UserRepo.GetByUID(r.Context(), uid)
		if err != nil {
			http.Error(w, "profile not found", http.StatusForbidden)
			return
		}
		if !profile.IsAllowed {
			log.Printf("[AuthMiddleware] path=%s uid=%s blocked: pending approval", r.URL.Path, uid)
			http.Error(w, "account pending admin approval", http.StatusForbidden)
			return
		}

		// context に格納
		ctx := context.WithValue(r.Context(), ctxKeyProfile, profile)
		ctx = context.WithValue(ctx, ctxKeyUID, uid)

		// email はトークン claim を優先し、無ければプロフィールから
		emailStr := profile.Email
		if emailRaw, ok := token.Claims["email"]; ok {
			if e, ok2 := emailRaw.(string); ok2 && strings.TrimSpace(e) != "" {
				emailStr = strings.TrimSpace(e)
			}
		}
		ctx = context.WithValue(ctx, ctxKeyEmail, emailStr)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentProfile returns the approved profile stored by AuthMiddleware.
func CurrentProfile(ctx context.Context) (userdom.Profile, bool) {
	p, ok := ctx.Value(ctxKeyProfile).(userdom.Profile)
	return p, ok
}

// CurrentUID returns the verified auth uid.
func CurrentUID(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeyUID).(string)
	return s
}

// CurrentEmail returns the verified email, if any.
func CurrentEmail(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeyEmail).(string)
	return s
}
