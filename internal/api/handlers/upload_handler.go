package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/listing-studio/engine/internal/imaging"
	"github.com/listing-studio/engine/internal/services"
)

const multipartMemory = 32 << 20

type UploadHandler struct {
	upload   services.UploadService
	maxBytes int64
	defaults Defaults
}

// NewUploadHandler accepts files up to maxBytes each.
func NewUploadHandler(upload services.UploadService, maxBytes int64, d Defaults) *UploadHandler {
	return &UploadHandler{upload: upload, maxBytes: maxBytes, defaults: d}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes*imaging.CompositeTiles+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorStr(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeErrorStr(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["files"]
	if len(files) != imaging.CompositeTiles {
		writeErrorStr(w, http.StatusBadRequest, fmt.Sprintf("expected exactly %d images", imaging.CompositeTiles))
		return
	}

	photos := make([][]byte, 0, len(files))
	for _, fh := range files {
		if fh.Size > h.maxBytes {
			writeErrorStr(w, http.StatusBadRequest, fh.Filename+" exceeds the size limit")
			return
		}
		if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
			writeErrorStr(w, http.StatusBadRequest, fh.Filename+" is not an image")
			return
		}
		f, err := fh.Open()
		if err != nil {
			writeErrorStr(w, http.StatusBadRequest, "cannot read "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeErrorStr(w, http.StatusBadRequest, "cannot read "+fh.Filename)
			return
		}
		photos = append(photos, data)
	}

	res, err := h.upload.Upload(r.Context(), services.UploadInput{
		Photos: photos,
		Locale: locale(r.FormValue("locale")),
		UserID: h.defaults.UserID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, res)
}
