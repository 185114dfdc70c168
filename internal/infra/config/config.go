// internal/infra/config/config.go
package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// Config はアプリケーション全体の環境変数設定を保持します。
type Config struct {
	Port     string
	GCPCreds string

	// Firestore / Firebase
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string

	// 在庫コレクションの名前空間（artifacts/{AppID}/public/data/...）
	AppID string

	// お知らせバナーの投稿を許可するオーナーのメールアドレス
	AnnouncementOwnerEmail string

	// 商品写真の保存先バケット
	PhotoBucket string

	// "firestore"（既定）または "postgres"
	StoreDriver string

	// PostgreSQL（StoreDriver=postgres のときのみ使用）
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// バーコード解決のデバウンス幅（ミリ秒）
	ResolveDebounceMS int

	// SendGrid
	SendGridAPIKey string
	SendGridFrom   string
	AppBaseURL     string
}

// Load は環境変数を読み込み Config を返します。
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "stockroom-app")

	cfg := &Config{
		Port:     getenvDefault("PORT", "8080"),
		GCPCreds: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		AppID:                  getenvDefault("APP_ID", "default-app-id"),
		AnnouncementOwnerEmail: os.Getenv("ANNOUNCEMENT_OWNER_EMAIL"),
		PhotoBucket:            os.Getenv("PHOTO_BUCKET"),
		StoreDriver:            getenvDefault("STORE_DRIVER", "firestore"),

		DBHost:     getenvDefault("DB_HOST", "localhost"),
		DBPort:     getenvDefault("DB_PORT", "5432"),
		DBUser:     getenvDefault("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getenvDefault("DB_NAME", "stockroom"),

		ResolveDebounceMS: getenvInt("RESOLVE_DEBOUNCE_MS", 400),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		SendGridFrom:   os.Getenv("SENDGRID_FROM"),
		AppBaseURL:     getenvDefault("APP_BASE_URL", "https://stockroom.example.com"),
	}

	return cfg
}

// ResolveSendGridAPIKey は SENDGRID_API_KEY が未設定のとき Secret Manager
// から取得を試みます（secret 名は SENDGRID_API_KEY_SECRET、例:
// projects/x/secrets/sendgrid-api-key/versions/latest）。
// どちらも無ければ空のまま返し、メール送信はスキップされます。
func (c *Config) ResolveSendGridAPIKey(ctx context.Context, sm *secretmanager.Client) string {
	if c.SendGridAPIKey != "" {
		return c.SendGridAPIKey
	}
	secretName := os.Getenv("SENDGRID_API_KEY_SECRET")
	if secretName == "" || sm == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		log.Printf("[config] WARN: failed to read sendgrid key from secret manager: %v", err)
		return ""
	}
	c.SendGridAPIKey = string(resp.GetPayload().GetData())
	log.Printf("[config] sendgrid api key loaded from secret manager")
	return c.SendGridAPIKey
}

// GetFirestoreProjectID は Firestore/GCP プロジェクト ID を返します。
func (c *Config) GetFirestoreProjectID() string {
	return c.FirestoreProjectID
}

// Firebase 用の ProjectID を返すヘルパー
func (c *Config) GetFirebaseProjectID() string {
	return c.FirebaseProjectID
}

// PostgresDSN は lib/pq 形式の接続文字列を組み立てます。
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] WARN: %s=%q is not an integer, using default %d", key, v, def)
		return def
	}
	return n
}
