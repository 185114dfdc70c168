// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	httpin "stockroom/internal/adapters/in/http"
	authadapter "stockroom/internal/adapters/out/auth"
	pgrepo "stockroom/internal/adapters/out/db"
	fsrepo "stockroom/internal/adapters/out/firestore"
	gcsrepo "stockroom/internal/adapters/out/gcs"
	mailout "stockroom/internal/adapters/out/mail"
	"stockroom/internal/application/query"
	resolver "stockroom/internal/application/resolver"
	usecase "stockroom/internal/application/usecase"
	proddom "stockroom/internal/domain/product"
	appcfg "stockroom/internal/infra/config"
	"stockroom/internal/infra/database"
	firestoreinfra "stockroom/internal/infra/firestore"
)

// Container は main.go から使う依存オブジェクトの束。
// 外部クライアントの所有権はここにあり、Close で確実に閉じる。
//
// 初期化の厳しさ:
//   - Firestore は strict（失敗したら起動しない）
//   - Firebase Auth / GCS / SecretManager / Postgres / SendGrid は
//     best-effort（WARN を出して該当機能を無効化したまま起動する）
type Container struct {
	Config *appcfg.Config

	// Clients (owned; Close-managed)
	Firestore     *firestoreinfra.ClientWrapper
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	DB            *database.DB // StoreDriver=postgres のときのみ

	// Repositories / application services
	productRepo    proddom.Repository
	inventoryUC    *usecase.InventoryUsecase
	announcementUC *usecase.AnnouncementUsecase
	signupUC       *usecase.SignupUsecase
	liveView       *query.LiveInventoryView
	barcodeRes     *resolver.BarcodeResolver
	userRepo       *fsrepo.UserRepositoryFS

	// liveView の購読を止めるための cancel
	cancelWatch context.CancelFunc
}

// NewContainer initializes the whole dependency graph.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("di: config is nil")
	}
	c := &Container{Config: cfg}

	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[di] using credentials file for GCP clients")
	} else {
		log.Printf("[di] using Application Default Credentials")
	}

	// 1) Firestore (strict): プロフィールとお知らせは常に Firestore。
	fsWrap, err := firestoreinfra.NewClient(ctx, cfg.FirestoreProjectID, credFile)
	if err != nil {
		return nil, err
	}
	c.Firestore = fsWrap

	// 2) Firebase Auth (best-effort)
	if app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, clientOpts...); err != nil {
		log.Printf("[di] WARN: firebase app init failed: %v (auth disabled)", err)
	} else {
		c.FirebaseApp = app
		if authClient, err := app.Auth(ctx); err != nil {
			log.Printf("[di] WARN: firebase auth init failed: %v (auth disabled)", err)
		} else {
			c.FirebaseAuth = authClient
		}
	}

	// 3) GCS (best-effort): 無ければ写真付き投稿が失敗するだけ。
	if gcsClient, err := storage.NewClient(ctx, clientOpts...); err != nil {
		log.Printf("[di] WARN: gcs init failed: %v (photo upload disabled)", err)
	} else {
		c.GCS = gcsClient
	}

	// 4) Secret Manager (best-effort): SendGrid キーのフォールバック用。
	if sm, err := secretmanager.NewClient(ctx, clientOpts...); err != nil {
		log.Printf("[di] WARN: secret manager init failed: %v", err)
	} else {
		c.SecretManager = sm
	}

	// 5) Product store: firestore（既定）または postgres
	if strings.EqualFold(cfg.StoreDriver, "postgres") {
		db, err := database.NewConnection(cfg.PostgresDSN())
		if err != nil {
			log.Printf("[di] WARN: postgres init failed: %v (falling back to firestore)", err)
		} else {
			c.DB = db
			pg := pgrepo.NewProductRepositoryPG(db.Client)
			if err := pg.Migrate(ctx); err != nil {
				log.Printf("[di] WARN: products migration failed: %v", err)
			}
			c.productRepo = pg
			log.Printf("[di] product store = postgres")
		}
	}
	if c.productRepo == nil {
		c.productRepo = fsrepo.NewProductRepositoryFS(fsWrap.Client, cfg.AppID)
		log.Printf("[di] product store = firestore (appId=%s)", cfg.AppID)
	}

	c.userRepo = fsrepo.NewUserRepositoryFS(fsWrap.Client)
	annRepo := fsrepo.NewAnnouncementRepositoryFS(fsWrap.Client)

	// 6) Photo storage port
	var photos proddom.PhotoStoragePort
	if c.GCS != nil && strings.TrimSpace(cfg.PhotoBucket) != "" {
		photos = gcsrepo.NewProductPhotoRepositoryGCS(c.GCS, cfg.PhotoBucket)
	} else {
		log.Printf("[di] WARN: photo storage not configured (PHOTO_BUCKET empty or gcs unavailable)")
	}

	// 7) Mailer (optional)
	var mailer usecase.SignupMailerPort
	if key := cfg.ResolveSendGridAPIKey(ctx, c.SecretManager); key != "" && cfg.SendGridFrom != "" {
		mailer = mailout.NewSignupMailer(mailout.NewSendGridClient(key), cfg.SendGridFrom, cfg.AppBaseURL)
		log.Printf("[di] signup mailer initialized from=%s", cfg.SendGridFrom)
	} else {
		log.Printf("[di] signup mailer not configured (mail disabled)")
	}

	// 8) Usecases
	c.inventoryUC = usecase.NewInventoryUsecase(c.productRepo, photos)
	c.announcementUC = usecase.NewAnnouncementUsecase(annRepo, cfg.AnnouncementOwnerEmail)
	if c.FirebaseAuth != nil {
		c.signupUC = usecase.NewSignupUsecase(authadapter.NewFirebaseAuthAdapter(c.FirebaseAuth), c.userRepo, mailer)
	} else {
		log.Printf("[di] WARN: signup disabled (no firebase auth)")
	}

	// 9) Live view + barcode resolver
	watchCtx, cancel := context.WithCancel(context.Background())
	c.cancelWatch = cancel
	c.liveView = query.NewLiveInventoryView()
	if err := c.liveView.Run(watchCtx, c.productRepo); err != nil {
		log.Printf("[di] WARN: live inventory view unavailable: %v", err)
		c.liveView = nil
	}
	c.barcodeRes = resolver.New(c.productRepo, time.Duration(cfg.ResolveDebounceMS)*time.Millisecond)

	return c, nil
}

// RouterDeps exposes the wired dependencies for the HTTP router.
func (c *Container) RouterDeps() httpin.RouterDeps {
	return httpin.RouterDeps{
		InventoryUC:    c.inventoryUC,
		AnnouncementUC: c.announcementUC,
		SignupUC:       c.signupUC,
		ProductRepo:    c.productRepo,
		LiveView:       c.liveView,
		Resolver:       c.barcodeRes,
		FirebaseAuth:   c.FirebaseAuth,
		UserRepo:       c.userRepo,
	}
}

// Close は Cloud Run 終了時などに呼んで安全にリソースを閉じる。
func (c *Container) Close() {
	if c.cancelWatch != nil {
		c.cancelWatch()
	}
	if c.barcodeRes != nil {
		c.barcodeRes.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.SecretManager != nil {
		_ = c.SecretManager.Close()
	}
	if c.Firestore != nil {
		_ = c.Firestore.Close()
	}
}
