package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/shouni/gemini-duo-kit/pkg/generator"
)

// Config はプロセス全体の設定です。環境変数と .env から読み込みます。
type Config struct {
	APIKey      string
	Model       string
	Endpoint    string
	HTTPTimeout time.Duration

	Addr           string
	BlobTTL        time.Duration
	MaxUploadBytes int64
	AllowedOrigins []string
}

// Load は .env / .env.local を読み込んだうえで環境変数から Config を組み立てます。
// ファイルが存在しなくてもエラーにはしません。
// GEMINI_API_KEY が空でも失敗しません（生成時に ErrMissingCredential になります）。
func Load() (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")
	return FromEnv(os.Getenv)
}

// FromEnv は getenv から Config を組み立てます。
func FromEnv(getenv func(string) string) (*Config, error) {
	httpTimeout, err := durationOr(getenv, "GEMINI_HTTP_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, err
	}
	blobTTL, err := durationOr(getenv, "BLOB_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	maxUpload, err := int64Or(getenv, "MAX_UPLOAD_BYTES", 20<<20)
	if err != nil {
		return nil, err
	}

	c := &Config{
		APIKey:         strings.TrimSpace(getenv("GEMINI_API_KEY")),
		Model:          stringOr(getenv, "GEMINI_MODEL", generator.DefaultModel),
		Endpoint:       stringOr(getenv, "GEMINI_ENDPOINT", generator.DefaultEndpoint),
		HTTPTimeout:    httpTimeout,
		Addr:           stringOr(getenv, "APP_ADDR", ":8080"),
		BlobTTL:        blobTTL,
		MaxUploadBytes: maxUpload,
		AllowedOrigins: splitList(stringOr(getenv, "CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
	}

	if c.APIKey == "" {
		slog.Warn("GEMINI_API_KEY が設定されていません。画像生成は失敗します")
	}
	return c, nil
}

func stringOr(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

func durationOr(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s の形式が不正です: %w", key, err)
	}
	return d, nil
}

func int64Or(getenv func(string) string, key string, def int64) (int64, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s は正の整数で指定してください: %q", key, v)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
