package generator

import (
	"context"
	"net/http"
	"time"

	"github.com/shouni/gemini-duo-kit/pkg/domain"
)

// ImageGenerator はビジネスロジック層（HTTP ハンドラ等）が利用する統合窓口です。
type ImageGenerator interface {
	GenerateImage(ctx context.Context, image1, image2 domain.ImageReference, gesture, background string) (domain.GenerationResult, error)
}

// ImageEncoder は 2 枚の参照画像を並行にエンコードします。
type ImageEncoder interface {
	EncodePair(ctx context.Context, ref1, ref2 domain.ImageReference) (*domain.EncodedImage, *domain.EncodedImage, error)
}

// HTTPClient は Gemini API へのリクエストを実行します。*http.Client が満たします。
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// SleepFunc はリトライ前の待機を行います。テストでは実時間を待たない実装に差し替えます。
type SleepFunc func(ctx context.Context, d time.Duration) error

// JitterFunc は [0, limit) の範囲で待機時間に加算するジッターを返します。
type JitterFunc func(limit time.Duration) time.Duration
