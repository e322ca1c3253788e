package employee

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"
	"time"

	employeeerrors "go-payway/internal/employee/errors"
	"go-payway/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// ImageUploadDir is relative to the public web root.
const ImageUploadDir = "images/employee"

// ImageFileName builds the stored name: UTC two-digit year, minute, second
// and millisecond, then the original stem and extension.
func ImageFileName(now time.Time, original string) string {
	base := path.Base(strings.ReplaceAll(original, `\`, "/"))
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	now = now.UTC()
	return now.Format("060405") + fmt.Sprintf("%03d", now.Nanosecond()/int(time.Millisecond)) + stem + ext
}

func hasImage(fh *multipart.FileHeader) bool {
	return fh != nil && fh.Size > 0
}

type ImageStore struct {
	storage  storage.Storage
	maxBytes int64
	now      func() time.Time
	logger   *zap.Logger
}

type ImageOption func(*ImageStore)

func WithClock(now func() time.Time) ImageOption {
	return func(s *ImageStore) { s.now = now }
}

func NewImageStore(st storage.Storage, maxBytes int64, opts ...ImageOption) *ImageStore {
	s := &ImageStore{
		storage:  st,
		maxBytes: maxBytes,
		now:      time.Now,
		logger:   zap.L().Named("employee.image"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate accepts a missing or empty upload. Anything else must be an image
// no larger than the configured cap.
func (s *ImageStore) Validate(fh *multipart.FileHeader) error {
	if !hasImage(fh) {
		return nil
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return employeeerrors.ErrImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return employeeerrors.ErrImageNotAnImage
	}
	return nil
}

// Save stores the upload under ImageUploadDir and returns its web path.
func (s *ImageStore) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	name := ImageFileName(s.now(), fh.Filename)

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded image: %w", err)
	}
	defer f.Close()

	if err := s.storage.Save(ctx, ImageUploadDir+"/"+name, f); err != nil {
		s.logger.Error("store employee image failed", zap.String("file", name), zap.Error(err))
		return "", err
	}

	url := "/" + ImageUploadDir + "/" + name
	s.logger.Info("employee image stored", zap.String("url", url))
	return url, nil
}

// Discard removes an image stored by Save. Only used to undo an upload whose
// employee record was never written; failures are logged and swallowed.
func (s *ImageStore) Discard(ctx context.Context, url string) {
	rel, ok := strings.CutPrefix(url, "/"+ImageUploadDir+"/")
	if !ok || rel == "" {
		return
	}
	if err := s.storage.Delete(ctx, ImageUploadDir+"/"+rel); err != nil {
		s.logger.Warn("discard employee image failed", zap.String("url", url), zap.Error(err))
	}
}
