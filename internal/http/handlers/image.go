package handlers

import (
	"errors"
	"io"
	"net/http"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/http/middleware"
	"ecommerce-api/internal/logx"
	"ecommerce-api/internal/service/image"
)

const (
	uploadField     = "images"
	uploadMemoryMax = 32 << 20
	// a request body may carry this many max-size files plus multipart framing
	uploadBodyFiles    = 10
	uploadBodyOverhead = 1 << 20
	defaultFileMax     = 2 << 20
)

// ImageHandler serves /v1/admin/images.
type ImageHandler struct {
	logger  logx.Logger
	uc      imageUsecase
	url     URLFunc
	bodyMax int64
}

// NewImageHandler wires an image usecase into HTTP handlers. fileMax is the
// per-file upload limit and bounds the whole multipart body.
func NewImageHandler(logger logx.Logger, uc imageUsecase, url URLFunc, fileMax int64) *ImageHandler {
	if fileMax <= 0 {
		fileMax = defaultFileMax
	}
	return &ImageHandler{
		logger:  logger,
		uc:      uc,
		url:     url,
		bodyMax: fileMax*uploadBodyFiles + uploadBodyOverhead,
	}
}

func (h *ImageHandler) dto(img domain.Image) imageDTO { return toImageDTO(img, h.url) }

func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.uc.List(r.Context(), middleware.PageFromContext(r.Context()))
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toPageDTO(page, h.dto))
}

func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	img, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]any{"image": h.dto(*img)})
}

// Upload handles a multipart POST carrying one or more files in the "images" field.
// Per-file failures are reported next to the successes; a batch of one that fails is a 400.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.bodyMax)
	if err := r.ParseMultipartForm(uploadMemoryMax); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(h.logger, w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			writeError(h.logger, w, r, http.StatusBadRequest, "multipart form expected")
			return
		}
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File[uploadField]
	if len(headers) == 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "no files uploaded")
		return
	}

	files := make([]image.Upload, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		files = append(files, image.Upload{
			ClientName: fh.Filename,
			Size:       fh.Size,
			Open:       func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	res, err := h.uc.Upload(r.Context(), files)
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}

	resp := uploadResponse{
		Successes: make([]imageDTO, 0, len(res.Successes)),
		Errors:    make([]uploadErrorDTO, 0, len(res.Errors)),
	}
	for _, img := range res.Successes {
		resp.Successes = append(resp.Successes, h.dto(img))
	}
	for _, e := range res.Errors {
		resp.Errors = append(resp.Errors, uploadErrorDTO{ClientName: e.ClientName, Message: e.Message})
	}

	status := http.StatusCreated
	if len(files) == 1 && len(res.Errors) == 1 {
		status = http.StatusBadRequest
	}
	writeJSON(h.logger, w, r, status, resp)
}

// Rename handles PUT /images/{id}. Only original_name can change.
func (h *ImageHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	var req renameImageRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	img, err := h.uc.Rename(r.Context(), id, req.OriginalName)
	if err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]any{"image": h.dto(*img)})
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r)
	if !ok {
		return
	}
	if err := h.uc.Delete(r.Context(), id); err != nil {
		writeErr(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
