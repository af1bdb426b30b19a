package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential  = errors.New("missing API key: set GEMINI_API_KEY and restart the server")
	ErrInvalidImageFormat = errors.New("invalid image format: expected a blob reference or a file")
	ErrReadImage          = errors.New("failed to read image")
	ErrAPIRequestFailed   = errors.New("API request failed")
	ErrMissingImageData   = errors.New("failed to generate image: the model did not return image data")
)

// APIRequestError は Gemini API 呼び出しの終端エラーです。
// StatusCode が 0 の場合はレスポンスを受け取る前に通信が失敗しています。
type APIRequestError struct {
	StatusCode int
	Attempts   int
	Exhausted  bool // リトライ上限に達した
	Err        error
}

func (e *APIRequestError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("%v: %v", ErrAPIRequestFailed, e.Err)
	case e.Exhausted:
		return fmt.Sprintf("%v after all retries with status: %d", ErrAPIRequestFailed, e.StatusCode)
	default:
		return fmt.Sprintf("%v: %d", ErrAPIRequestFailed, e.StatusCode)
	}
}

func (e *APIRequestError) Unwrap() error { return e.Err }

func (e *APIRequestError) Is(target error) bool { return target == ErrAPIRequestFailed }

// MissingImageDataError は成功レスポンスに画像パーツが含まれなかったことを表します。
// RawResponse は診断ログ用にレスポンス本文をそのまま保持します。
type MissingImageDataError struct {
	FinishReason string
	RawResponse  []byte
	Err          error
}

func (e *MissingImageDataError) Error() string {
	msg := ErrMissingImageData.Error()
	if e.FinishReason != "" {
		msg += fmt.Sprintf(" (FinishReason: %s)", e.FinishReason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MissingImageDataError) Unwrap() error { return e.Err }

func (e *MissingImageDataError) Is(target error) bool { return target == ErrMissingImageData }

// ReadError はローカル取得またはバイト読み出しの失敗を ErrReadImage として包みます。
func ReadError(err error) error {
	return fmt.Errorf("%w: %w", ErrReadImage, err)
}
