package encoder

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/gemini-duo-kit/pkg/domain"
	"github.com/shouni/gemini-duo-kit/pkg/imgutil"
)

// LocalFetcher は "blob:" ロケータが指すローカルの一時データを取得します。
type LocalFetcher interface {
	Fetch(ctx context.Context, locator string) (data []byte, mimeType string, err error)
}

// Encoder は ImageReference を EncodedImage に正規化します。
type Encoder struct {
	fetcher LocalFetcher
}

// NewEncoder は LocalFetcher を注入して Encoder を初期化します。
func NewEncoder(fetcher LocalFetcher) (*Encoder, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	return &Encoder{fetcher: fetcher}, nil
}

// Encode は参照の種類ごとに生データと MIME タイプを取り出し、共通の encode に渡します。
func (e *Encoder) Encode(ctx context.Context, ref domain.ImageReference) (*domain.EncodedImage, error) {
	switch ref.Kind() {
	case domain.ReferenceLocalResource:
		if !domain.IsLocalLocator(ref.Locator()) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidImageFormat, ref.Locator())
		}
		data, mimeType, err := e.fetcher.Fetch(ctx, ref.Locator())
		if err != nil {
			return nil, domain.ReadError(err)
		}
		return encode(data, mimeType), nil

	case domain.ReferenceFileHandle:
		data, err := ref.ReadAll()
		if err != nil {
			return nil, domain.ReadError(err)
		}
		return encode(data, ref.MimeType()), nil

	default:
		return nil, domain.ErrInvalidImageFormat
	}
}

// EncodePair は 2 つの参照を並行してエンコードします。
// どちらかが失敗した場合は最初のエラーを返し、部分的な結果は返しません。
func (e *Encoder) EncodePair(ctx context.Context, ref1, ref2 domain.ImageReference) (*domain.EncodedImage, *domain.EncodedImage, error) {
	var img1, img2 *domain.EncodedImage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		img1, err = e.Encode(gctx, ref1)
		if err != nil {
			return fmt.Errorf("image1: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		img2, err = e.Encode(gctx, ref2)
		if err != nil {
			return fmt.Errorf("image2: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.WarnContext(ctx, "画像のエンコードに失敗しました", "error", err)
		return nil, nil, err
	}
	return img1, img2, nil
}

func encode(data []byte, mimeType string) *domain.EncodedImage {
	return &domain.EncodedImage{
		Data:     imgutil.EncodeBase64(data),
		MimeType: imgutil.DetectMimeType(mimeType, data),
	}
}
