package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"ecommerce-api/internal/apperr"
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/logx"
	"ecommerce-api/internal/storage"
)

const sniffLen = 512

// Upload is one submitted file.
type Upload struct {
	ClientName string
	Size       int64
	Open       func() (io.ReadCloser, error)
}

// UploadError describes a rejected file.
type UploadError struct {
	ClientName string
	Message    string
}

// Result is the outcome of a batch upload.
type Result struct {
	Successes []domain.Image
	Errors    []UploadError
}

// Service stores uploaded images and their metadata.
type Service struct {
	repo             imageRepository
	store            ObjectStore
	counter          Counter
	maxSize          int64
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewService creates and configures an image Service.
func NewService(r imageRepository, store ObjectStore, counter Counter, maxSize int64, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		repo:             r,
		store:            store,
		counter:          counter,
		maxSize:          maxSize,
		operationTimeout: timeout,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// URL returns the public URL of a stored image path.
func (s *Service) URL(path string) string { return s.store.URL(path) }

// List returns a page of images, newest first.
func (s *Service) List(ctx context.Context, p domain.PageRequest) (domain.Page[domain.Image], error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	items, total, err := s.repo.List(ctx, p)
	if err != nil {
		return domain.Page[domain.Image]{}, err
	}
	return domain.NewPage(p, total, items), nil
}

// Get retrieves an image by its ID.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Image, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	img, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, apperr.ErrNotFound
	}
	return img, nil
}

// Upload stores every acceptable file and reports per-file failures.
// An empty batch is invalid.
func (s *Service) Upload(ctx context.Context, files []Upload) (Result, error) {
	if len(files) == 0 {
		v := apperr.NewValidationError()
		v.Add("images", "at least one file is required")
		return Result{}, v
	}

	res := Result{Successes: []domain.Image{}, Errors: []UploadError{}}
	for _, f := range files {
		img, err := s.uploadOne(ctx, f)
		if err != nil {
			msg := strings.TrimPrefix(err.Error(), apperr.ErrInvalid.Error()+": ")
			result := "rejected"
			if !errors.Is(err, apperr.ErrInvalid) {
				result = "failed"
				msg = "could not store file"
				s.logger.Error("image upload failed",
					logx.String("client_name", f.ClientName),
					logx.Err(err),
				)
			}
			s.counter.ImageUploaded(result)
			res.Errors = append(res.Errors, UploadError{ClientName: f.ClientName, Message: msg})
			continue
		}
		s.counter.ImageUploaded("ok")
		res.Successes = append(res.Successes, *img)
	}
	return res, nil
}

func (s *Service) uploadOne(ctx context.Context, f Upload) (*domain.Image, error) {
	if s.maxSize > 0 && f.Size > s.maxSize {
		return nil, fmt.Errorf("%w: file size exceeds %d bytes", apperr.ErrInvalid, s.maxSize)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := imageExtension(contentType)
	if !ok {
		return nil, fmt.Errorf("%w: invalid file type %s", apperr.ErrInvalid, contentType)
	}

	key := fmt.Sprintf("%d-%s.%s", s.now().UnixMilli(), strings.ToLower(ulid.Make().String()), ext)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	body := io.MultiReader(bytes.NewReader(head), rc)
	if err := s.store.Put(ctx, key, contentType, body); err != nil {
		return nil, err
	}

	img := &domain.Image{
		Path:         key,
		Size:         f.Size,
		OriginalName: f.ClientName,
		Extension:    ext,
	}
	if err := s.repo.Create(ctx, img); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphan upload left in storage", logx.String("key", key), logx.Err(delErr))
		}
		return nil, err
	}
	return img, nil
}

// Rename changes the original file name.
func (s *Service) Rename(ctx context.Context, id int64, name string) (*domain.Image, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		v := apperr.NewValidationError()
		v.Add("original_name", "is required")
		return nil, v
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.Rename(ctx, id, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Delete removes the stored object and then the metadata row.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	img, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if img == nil {
		return apperr.ErrNotFound
	}

	if err := s.store.Delete(ctx, img.Path); err != nil && !errors.Is(err, storage.ErrNotExist) {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}

// imageExtension maps a sniffed image content type to a file extension.
func imageExtension(contentType string) (string, bool) {
	mt, _, _ := strings.Cut(contentType, ";")
	typ, sub, ok := strings.Cut(strings.TrimSpace(mt), "/")
	if !ok || typ != "image" || sub == "" {
		return "", false
	}
	switch sub {
	case "jpeg":
		return "jpg", true
	case "x-icon", "vnd.microsoft.icon":
		return "ico", true
	}
	return sub, true
}
