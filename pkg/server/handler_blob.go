package server

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shouni/gemini-duo-kit/pkg/domain"
	"github.com/shouni/gemini-duo-kit/pkg/imgutil"
)

type blobResponse struct {
	Ref      string `json:"ref"`
	MimeType string `json:"mimeType"`
	Size     int    `json:"size"`
}

func (h *Handler) handleCreateBlob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		if isMaxBytesError(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "image is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "image is too large")
		return
	}

	mimeType := imgutil.DetectMimeType(header.Header.Get("Content-Type"), data)
	if !strings.HasPrefix(mimeType, "image/") {
		slog.WarnContext(r.Context(), "MIMEタイプが画像ではないため登録しませんでした", "mime_type", mimeType)
		writeError(w, http.StatusUnsupportedMediaType, "only image uploads are accepted")
		return
	}

	ref := h.blobs.Create(data, mimeType)
	writeJson(w, http.StatusCreated, blobResponse{Ref: ref, MimeType: mimeType, Size: len(data)})
}

func (h *Handler) handleRevokeBlob(w http.ResponseWriter, r *http.Request) {
	locator := domain.LocalResourceScheme + chi.URLParam(r, "id")

	if !h.blobs.Revoke(locator) {
		writeError(w, http.StatusNotFound, "blob not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
