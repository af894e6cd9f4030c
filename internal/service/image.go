package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"

	"github.com/matprat/matprat/backend/internal/imagestore"
	"github.com/matprat/matprat/backend/internal/types"
)

const (
	DefaultMaxUploadBytes = 5 << 20
	maxSearchResults      = 10
	thumbnailSize         = 320
)

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// ImageService searches stored image filenames and ingests uploads.
type ImageService struct {
	store    imagestore.Store
	maxBytes int64
	log      logrus.FieldLogger
}

// NewImageService creates a new ImageService instance
func NewImageService(store imagestore.Store, maxBytes int64, logger logrus.FieldLogger) *ImageService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &ImageService{store: store, maxBytes: maxBytes, log: logger}
}

func (s *ImageService) MaxBytes() int64 {
	return s.maxBytes
}

// Search returns up to ten image files whose name contains query, ignoring
// case, sorted by name. An empty query matches every image.
func (s *ImageService) Search(ctx context.Context, query string) ([]types.ImageFile, error) {
	names, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))

	matches := make([]string, 0, len(names))
	for _, name := range names {
		if !imagestore.IsImageName(name) {
			continue
		}
		if q == "" || strings.Contains(strings.ToLower(name), q) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	if len(matches) > maxSearchResults {
		matches = matches[:maxSearchResults]
	}

	out := make([]types.ImageFile, len(matches))
	for i, name := range matches {
		out[i] = types.ImageFile{Filename: name, Path: s.store.Path(name)}
	}
	return out, nil
}

// Upload validates an uploaded image, stores it under a unique name and
// writes a JPEG thumbnail next to it.
func (s *ImageService) Upload(ctx context.Context, header *multipart.FileHeader) (*types.UploadResult, error) {
	if header == nil {
		return nil, &UploadError{Message: "No file uploaded"}
	}
	if header.Size > s.maxBytes {
		return nil, FileTooLarge(s.maxBytes)
	}
	if !imagestore.HasAllowedExtension(header.Filename) {
		return nil, &UploadError{Message: "Invalid file type. Only JPG, PNG, GIF and WebP images are allowed"}
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, FileTooLarge(s.maxBytes)
	}

	mime := http.DetectContentType(data)
	if !imagestore.IsAllowedMIME(mime) {
		return nil, &UploadError{Message: "Invalid file type. Only JPG, PNG, GIF and WebP images are allowed"}
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &UploadError{Message: "The uploaded file is not a readable image"}
	}

	name := UniqueFilename(header.Filename)
	if err := s.store.Save(ctx, name, bytes.NewReader(data), int64(len(data)), mime); err != nil {
		return nil, err
	}

	result := &types.UploadResult{
		Success:  true,
		Filename: name,
		Path:     s.store.Path(name),
		Size:     int64(len(data)),
	}

	thumbName := imagestore.ThumbDir + "/" + strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
	var thumb bytes.Buffer
	if err := imaging.Encode(&thumb, imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Lanczos), imaging.JPEG); err != nil {
		s.log.WithFields(logrus.Fields{"file": name, "error": err.Error()}).Warn("Thumbnail encoding failed")
		return result, nil
	}
	if err := s.store.Save(ctx, thumbName, &thumb, int64(thumb.Len()), "image/jpeg"); err != nil {
		s.log.WithFields(logrus.Fields{"file": name, "error": err.Error()}).Warn("Thumbnail upload failed")
		return result, nil
	}
	result.Thumbnail = s.store.Path(thumbName)

	s.log.WithFields(logrus.Fields{"file": name, "size": result.Size}).Info("Image uploaded")
	return result, nil
}

// UniqueFilename keeps a readable, sanitized base name and appends a short
// random suffix: "Chocolate Cake.JPG" becomes "chocolate-cake-1a2b3c4d.jpg".
func UniqueFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(original), filepath.Ext(original)))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "-"), "-")
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%s-%s%s", base, uuid.New().String()[:8], ext)
}
