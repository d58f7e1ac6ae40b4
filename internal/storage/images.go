package storage

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"inkpress/internal/config"
	"inkpress/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultUploadDir       = "./uploads"
	DefaultMaxUploadSizeMB = 10
)

// ImageStore writes uploaded post images under <uploadDir>/images and
// hands back the relative URL path they are served from.
type ImageStore struct {
	uploadDir          string
	maxUploadSizeBytes int64
}

func NewImageStore(cfg *config.Config) *ImageStore {
	uploadDir := DefaultUploadDir
	maxUploadSizeMB := DefaultMaxUploadSizeMB

	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.MaxUploadMB > 0 {
			maxUploadSizeMB = cfg.MaxUploadMB
		}
	}

	return &ImageStore{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// ImagesDir is the directory served at /images.
func (s *ImageStore) ImagesDir() string {
	return filepath.Join(s.uploadDir, "images")
}

// Save validates and persists an uploaded image, returning the
// "/images/<name>" path to store on the post. Names are random UUIDs so
// client filenames never reach the filesystem.
func (s *ImageStore) Save(filename, contentType string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !isAllowedImageExt(ext) {
		return "", models.NewValidationError("Invalid image type. Allowed: jpg, jpeg, png, gif, webp")
	}
	if !isAllowedImageMIME(http.DetectContentType(content)) {
		return "", models.NewValidationError("Invalid image type")
	}
	if provided := normalizeContentType(contentType); provided != "" && strings.HasPrefix(provided, "image/") && !isAllowedImageMIME(provided) {
		return "", models.NewValidationError("Invalid image type")
	}

	name := uuid.NewString() + ext
	fullPath := filepath.Join(s.ImagesDir(), name)
	if err := writeBytesToFile(fullPath, content); err != nil {
		return "", models.NewInternalError(err)
	}

	return "/images/" + name, nil
}

// Remove deletes a previously saved image given its "/images/<name>"
// path. Unknown or malformed paths are ignored.
func (s *ImageStore) Remove(imagePath string) {
	name, ok := strings.CutPrefix(imagePath, "/images/")
	if !ok || name == "" || name != filepath.Base(name) {
		return
	}
	_ = os.Remove(filepath.Join(s.ImagesDir(), name))
}

func isAllowedImageExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	default:
		return false
	}
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
