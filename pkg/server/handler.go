package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shouni/gemini-duo-kit/pkg/domain"
	"github.com/shouni/gemini-duo-kit/pkg/generator"
)

// BlobRegistry はアップロード画像を blob ロケータとして登録・解放します。
type BlobRegistry interface {
	Create(data []byte, mimeType string) string
	Revoke(locator string) bool
}

// Handler は UI から呼ばれる HTTP エンドポイント群です。
type Handler struct {
	generator      generator.ImageGenerator
	blobs          BlobRegistry
	maxUploadBytes int64
}

// New は依存関係を注入して Handler を初期化します。
func New(gen generator.ImageGenerator, blobs BlobRegistry, maxUploadBytes int64) (*Handler, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob registry is required")
	}
	if maxUploadBytes <= 0 {
		return nil, fmt.Errorf("maxUploadBytes must be positive")
	}
	return &Handler{
		generator:      gen,
		blobs:          blobs,
		maxUploadBytes: maxUploadBytes,
	}, nil
}

func (h *Handler) Attach(r chi.Router) {
	r.Get("/options", h.handleOptions)

	r.Post("/blobs", h.handleCreateBlob)
	r.Delete("/blobs/{id}", h.handleRevokeBlob)

	r.Post("/generate", h.handleGenerate)
}

// NewRouter は共通ミドルウェアと CORS を設定したルーターを返します。
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger,
		cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}),
	)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", h.Attach)

	return r
}

// requestLogger は chi の WrapResponseWriter でステータスを拾い、slog に出力します。
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		slog.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJson(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		slog.Warn("レスポンスの書き込みに失敗しました", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJson(w, code, errorResponse{Error: msg})
}

// statusForError はエラー分類を HTTP ステータスに対応付けます。
func statusForError(err error) int {
	var apiErr *domain.APIRequestError

	switch {
	case errors.Is(err, domain.ErrInvalidImageFormat), errors.Is(err, domain.ErrReadImage):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingCredential):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return http.StatusTooManyRequests
		}
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrMissingImageData):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isMaxBytesError(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge)
}
