package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/avolkov/docstream/internal/core/domain"
)

const DefaultMaxUploadBytes = 10 << 20 // 10 MiB

// DefaultAllowedMediaTypes covers PDFs and the raster formats the
// classification service accepts.
var DefaultAllowedMediaTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/tiff",
}

// FileValidator is the pure pre-flight gate applied before a file is admitted
// as a task. Rules run in order, first failure wins, and a rejected file never
// reaches the remote service.
type FileValidator struct {
	allowed  map[string]struct{}
	maxBytes int64
}

func NewFileValidator(allowedTypes []string, maxBytes int64) *FileValidator {
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultAllowedMediaTypes
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, mt := range allowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(mt))] = struct{}{}
	}
	return &FileValidator{allowed: allowed, maxBytes: maxBytes}
}

func (v *FileValidator) Validate(meta domain.FileMeta) error {
	mediaType := strings.ToLower(strings.TrimSpace(meta.MediaType))
	if _, ok := v.allowed[mediaType]; !ok {
		return domain.WrapError(domain.ErrUnsupportedType, "validate file",
			fmt.Errorf("media type %q is not accepted", meta.MediaType))
	}
	if meta.Size > v.maxBytes {
		return domain.WrapError(domain.ErrFileTooLarge, "validate file",
			fmt.Errorf("%s is %d bytes, limit is %d", meta.Name, meta.Size, v.maxBytes))
	}
	if strings.TrimSpace(meta.Name) == "" {
		return domain.WrapError(domain.ErrEmptyName, "validate file",
			errors.New("file name is empty"))
	}
	return nil
}
