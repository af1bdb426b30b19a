package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/gemini-duo-kit/pkg/domain"
	"github.com/shouni/gemini-duo-kit/pkg/imgutil"
)

// GeminiGenerator は 2 枚の人物写真から合成画像を生成するオーケストレーターです。
// 保持するのは不変の設定だけで、呼び出しごとの状態は GenerateImage 内に閉じています。
type GeminiGenerator struct {
	apiKey     string
	endpoint   string
	model      string
	encoder    ImageEncoder
	httpClient HTTPClient
	backoff    Backoff
	sleep      SleepFunc
}

// Option は GeminiGenerator の設定を上書きします。
type Option func(*GeminiGenerator)

// WithEndpoint は API のベース URL を設定します。末尾の "/" は取り除かれます。
func WithEndpoint(endpoint string) Option {
	return func(g *GeminiGenerator) {
		if endpoint != "" {
			g.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithModel は使用するモデル名を設定します。
func WithModel(model string) Option {
	return func(g *GeminiGenerator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithHTTPClient は送信に使う HTTP クライアントを差し替えます。
func WithHTTPClient(client HTTPClient) Option {
	return func(g *GeminiGenerator) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// WithBackoff はリトライのスケジュールを差し替えます。
func WithBackoff(b Backoff) Option {
	return func(g *GeminiGenerator) {
		g.backoff = b
	}
}

// WithSleep はバックオフ待機の実装を差し替えます。主にテスト用です。
func WithSleep(sleep SleepFunc) Option {
	return func(g *GeminiGenerator) {
		if sleep != nil {
			g.sleep = sleep
		}
	}
}

// NewGeminiGenerator は依存関係を注入して GeminiGenerator を初期化します。
// apiKey が空でも生成はできますが、GenerateImage は通信前に ErrMissingCredential を返します。
func NewGeminiGenerator(apiKey string, encoder ImageEncoder, opts ...Option) (*GeminiGenerator, error) {
	if encoder == nil {
		return nil, fmt.Errorf("encoder is required")
	}

	g := &GeminiGenerator{
		apiKey:     apiKey,
		endpoint:   DefaultEndpoint,
		model:      DefaultModel,
		encoder:    encoder,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		backoff:    DefaultBackoff(),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.backoff.MaxAttempts < 1 {
		return nil, fmt.Errorf("backoff.MaxAttempts must be at least 1, got %d", g.backoff.MaxAttempts)
	}
	return g, nil
}

// GenerateImage は 2 枚の参照画像とジェスチャー・背景から合成画像を生成し、
// "data:image/png;base64,..." 形式で返します。
// 呼び出し元の ctx がキャンセルされても、開始した試行とバックオフ待機は最後まで実行されます。
// 全体の上限は HTTP クライアントのタイムアウトと試行回数で決まります。
func (g *GeminiGenerator) GenerateImage(ctx context.Context, image1, image2 domain.ImageReference, gesture, background string) (domain.GenerationResult, error) {
	ctx = context.WithoutCancel(ctx)

	// 1. 認証情報の確認（通信は一切行わない）
	if strings.TrimSpace(g.apiKey) == "" {
		slog.ErrorContext(ctx, "GEMINI_API_KEY が設定されていません")
		return "", domain.ErrMissingCredential
	}

	// 2. 参照画像のエンコード（並行）
	img1, img2, err := g.encoder.EncodePair(ctx, image1, image2)
	if err != nil {
		return "", err
	}

	req := domain.GenerationRequest{
		Image1:     *img1,
		Image2:     *img2,
		Gesture:    gesture,
		Background: background,
	}

	// 3. ペイロードの組み立て
	body, err := json.Marshal(buildPayload(req))
	if err != nil {
		return "", fmt.Errorf("failed to encode request payload: %w", err)
	}

	slog.InfoContext(ctx, "Geminiに画像生成をリクエストします",
		"model", g.model, "gesture", gesture, "background", background,
		"image1_mime_type", img1.MimeType, "image2_mime_type", img2.MimeType)

	// 4. リトライ付き送信
	raw, err := g.send(ctx, body)
	if err != nil {
		return "", err
	}

	// 5. レスポンスから画像データを抽出
	b64, err := extractImageData(raw)
	if err != nil {
		slog.ErrorContext(ctx, "レスポンスに画像データが含まれていませんでした",
			"error", err, "response", string(raw))
		return "", err
	}

	return domain.GenerationResult(imgutil.ToDataURI(ResultMimeType, b64)), nil
}
