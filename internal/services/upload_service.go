package services

import (
	"fmt"
	"io"
	"math/rand"
	"mime"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// DefaultUploadCategory is used when the requested category is not allowed.
const DefaultUploadCategory = "3d"

// MaxUploadSize caps upload request bodies.
const MaxUploadSize = 100 * 1024 * 1024

var allowedCategories = map[string]bool{
	"web":                              true,
	"ui-ux":                            true,
	"3d":                               true,
	"2d":                               true,
	"programming":                      true,
	"web-development":                  true,
	"ui-ux-design":                     true,
	"3d-design":                        true,
	"2d-illustration-animations":       true,
	"programming-software-development": true,
}

// UploadResult describes a stored media file.
type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Type     string `json:"type"` // image or video
}

// UploadService stores project media under the public directory.
type UploadService struct {
	publicDir string
	now       func() time.Time
	suffix    func() int64
}

// NewUploadService creates an UploadService rooted at publicDir.
func NewUploadService(publicDir string) *UploadService {
	return &UploadService{
		publicDir: publicDir,
		now:       time.Now,
		suffix:    func() int64 { return rand.Int63n(1_000_000_000) },
	}
}

// NormalizeCategory lowercases category and falls back to the default when
// it is not on the allow-list.
func NormalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if allowedCategories[c] {
		return c
	}
	return DefaultUploadCategory
}

// mediaExtensions maps the accepted media types to the extension stored
// files get. The client's file name is never used, so an upload cannot
// land in the public directory as markup or script.
var mediaExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/avif":      ".avif",
	"image/bmp":       ".bmp",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/ogg":       ".ogv",
	"video/quicktime": ".mov",
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// MediaKind classifies a declared MIME type as "image" or "video".
func MediaKind(contentType string) (string, error) {
	ct := mediaType(contentType)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return "image", nil
	case strings.HasPrefix(ct, "video/"):
		return "video", nil
	default:
		return "", ErrUnsupportedMedia
	}
}

// MediaExtension returns the file extension for an accepted media type.
// Image and video subtypes outside the list (SVG among them) are refused.
func MediaExtension(contentType string) (string, error) {
	ext, ok := mediaExtensions[mediaType(contentType)]
	if !ok {
		return "", ErrUnsupportedMedia
	}
	return ext, nil
}

// Store writes the uploaded file to
// <publicDir>/{images|videos}/projects/<category>/ under a generated name.
func (s *UploadService) Store(header *multipart.FileHeader, category string) (*UploadResult, error) {
	contentType := header.Header.Get("Content-Type")
	kind, err := MediaKind(contentType)
	if err != nil {
		return nil, err
	}
	ext, err := MediaExtension(contentType)
	if err != nil {
		return nil, err
	}
	category = NormalizeCategory(category)

	folder := kind + "s"
	dir := filepath.Join(s.publicDir, folder, "projects", category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename := fmt.Sprintf("%d-%d%s", s.now().UnixMilli(), s.suffix(), ext)

	if err := copyUpload(header, filepath.Join(dir, filename)); err != nil {
		return nil, err
	}

	return &UploadResult{
		URL:      path.Join("/", folder, "projects", category, filename),
		Filename: filename,
		Type:     kind,
	}, nil
}

func copyUpload(header *multipart.FileHeader, dst string) error {
	src, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create upload file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write upload file: %w", err)
	}
	return nil
}
