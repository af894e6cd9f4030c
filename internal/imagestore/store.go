// Package imagestore persists recipe images either in a local directory served
// as static files or in an S3 bucket.
package imagestore

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// ThumbDir is the sub-folder holding generated thumbnails.
const ThumbDir = "thumbs"

// AllowedExtensions are the image types accepted for upload and search.
var AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// AllowedMIMEs are the sniffed content types accepted for upload.
var AllowedMIMEs = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Store is a flat namespace of image files. List only reports top-level
// files, so thumbnails never show up in search.
type Store interface {
	List(ctx context.Context) ([]string, error)
	Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) error
	Path(name string) string
}

// IsImageName reports whether name is a visible file with an image extension.
func IsImageName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	return HasAllowedExtension(name)
}

func HasAllowedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func IsAllowedMIME(mime string) bool {
	for _, allowed := range AllowedMIMEs {
		if mime == allowed {
			return true
		}
	}
	return false
}
