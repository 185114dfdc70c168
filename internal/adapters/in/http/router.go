// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	firebaseauth "firebase.google.com/go/v4/auth"

	"stockroom/internal/adapters/in/http/handlers"
	"stockroom/internal/adapters/in/http/middleware"
	"stockroom/internal/application/ocr"
	"stockroom/internal/application/query"
	resolver "stockroom/internal/application/resolver"
	usecase "stockroom/internal/application/usecase"
	proddom "stockroom/internal/domain/product"
	userdom "stockroom/internal/domain/user"
)

type RouterDeps struct {
	InventoryUC    *usecase.InventoryUsecase
	AnnouncementUC *usecase.AnnouncementUsecase
	SignupUC       *usecase.SignupUsecase

	ProductRepo proddom.Repository
	LiveView    *query.LiveInventoryView // optional
	Resolver    *resolver.BarcodeResolver
	Recognizer  ocr.Recognizer // optional

	// 認証まわり
	FirebaseAuth *firebaseauth.Client
	UserRepo     userdom.Repository
}

func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// ================================
	// 共通 Auth ミドルウェア
	// ================================
	var authMw *middleware.AuthMiddleware
	if deps.FirebaseAuth != nil && deps.UserRepo != nil {
		authMw = &middleware.AuthMiddleware{
			FirebaseAuth: deps.FirebaseAuth,
			UserRepo:     deps.UserRepo,
		}
	}

	guarded := func(h http.Handler) http.Handler {
		if authMw != nil {
			return authMw.Handler(h)
		}
		return h
	}

	// ================================
	// Health check（認証なし）
	// ================================
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// ================================
	// Signup（認証なし: アカウントを作る前なので）
	// ================================
	if deps.SignupUC != nil {
		mux.Handle("/signup", handlers.NewSignupHandler(deps.SignupUC))
	}

	// ================================
	// Inventory
	// ================================
	if deps.InventoryUC != nil && deps.ProductRepo != nil {
		h := handlers.NewInventoryHandler(deps.InventoryUC, deps.ProductRepo, deps.LiveView)
		mux.Handle("/inventory", guarded(h))
		mux.Handle("/inventory/", guarded(h))
	}

	// ================================
	// Products（単品取得・バーコード解決・カテゴリ）
	// ================================
	if deps.ProductRepo != nil {
		h := handlers.NewProductHandler(deps.ProductRepo, deps.Resolver)
		mux.Handle("/products/", guarded(h))
	}

	// ================================
	// Announcement（単一バナー）
	// ================================
	if deps.AnnouncementUC != nil {
		h := handlers.NewAnnouncementHandler(deps.AnnouncementUC)
		mux.Handle("/announcement", guarded(h))
	}

	// ================================
	// Text recognition（任意機能）
	// ================================
	mux.Handle("/recognize", guarded(handlers.NewRecognitionHandler(deps.Recognizer)))

	// Recover → CORS の順で外側に積む
	var root http.Handler = mux
	root = middleware.Recover(root)
	root = middleware.CORS(root)
	return root
}
