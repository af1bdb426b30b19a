package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shouni/gemini-duo-kit/pkg/domain"
)

// multipartOverhead はファイル以外のフィールドとバウンダリ分の余裕です。
const multipartOverhead = 1 << 20

type generateResponse struct {
	Image string `json:"image"`
}

type optionsResponse struct {
	Gestures    []string `json:"gestures"`
	Backgrounds []string `json:"backgrounds"`
}

func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, optionsResponse{
		Gestures:    domain.Gestures(),
		Backgrounds: domain.Backgrounds(),
	})
}

// handleGenerate は image1 / image2 をファイルまたは blob ロケータで受け取り、合成画像を返します。
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxUploadBytes+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if isMaxBytesError(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "images are too large")
			return
		}
		writeError(w, http.StatusBadRequest, "expected a multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	image1, close1, ok1 := formImage(r, "image1")
	defer close1()
	image2, close2, ok2 := formImage(r, "image2")
	defer close2()

	if !ok1 || !ok2 {
		writeError(w, http.StatusBadRequest, "Please upload both photos before generating.")
		return
	}

	gesture := formValueOr(r, "gesture", domain.GestureHandshake)
	background := formValueOr(r, "background", domain.BackgroundBeach)

	result, err := h.generator.GenerateImage(r.Context(), image1, image2, gesture, background)
	if err != nil {
		slog.ErrorContext(r.Context(), "画像生成に失敗しました", "error", err)
		writeError(w, statusForError(err), "Failed to generate image: "+err.Error())
		return
	}

	writeJson(w, http.StatusOK, generateResponse{Image: result.String()})
}

// formImage はファイルパートを優先し、無ければ同名のフィールド値をロケータとして扱います。
// ロケータの形式は検証せず、そのままエンコーダに渡します。
func formImage(r *http.Request, field string) (domain.ImageReference, func(), bool) {
	noop := func() {}

	if file, header, err := r.FormFile(field); err == nil {
		ref := domain.FileHandleFromReader(file, header.Header.Get("Content-Type"))
		return ref, func() { _ = file.Close() }, true
	}

	if v := strings.TrimSpace(r.FormValue(field)); v != "" {
		return domain.LocalResource(v), noop, true
	}
	return domain.ImageReference{}, noop, false
}

func formValueOr(r *http.Request, field, def string) string {
	if v := strings.TrimSpace(r.FormValue(field)); v != "" {
		return v
	}
	return def
}
