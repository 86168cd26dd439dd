// Package storage persists user-uploaded profile pictures.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"
	"strings"

	"devhub/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMaxDimension = 512
	WebPQuality         = 80
	// MaxSourcePixels bounds the decoded size of an upload, checked from its header.
	MaxSourcePixels = 40_000_000
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// AvatarUpload is a profile picture as received from the client.
type AvatarUpload struct {
	Filename string
	Content  []byte
}

// AvatarStore saves avatars and resolves stored references to files.
type AvatarStore interface {
	Save(ctx context.Context, upload AvatarUpload) (string, error)
	Path(name string) (string, error)
	Remove(name string) error
}

// LocalAvatarStore normalises avatars to WebP and writes them under a directory.
type LocalAvatarStore struct {
	dir          string
	maxBytes     int64
	maxDimension int
}

// NewLocalAvatarStore returns a store rooted at dir.
func NewLocalAvatarStore(dir string, maxUploadSizeMB, maxDimension int) *LocalAvatarStore {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &LocalAvatarStore{
		dir:          dir,
		maxBytes:     int64(maxUploadSizeMB) * 1024 * 1024,
		maxDimension: maxDimension,
	}
}

// Save validates, downsizes and re-encodes the upload, returning the stored file name.
func (s *LocalAvatarStore) Save(_ context.Context, upload AvatarUpload) (string, error) {
	if len(upload.Content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if s.maxBytes > 0 && int64(len(upload.Content)) > s.maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !allowedExtensions[ext] {
		return "", models.NewValidationError("Invalid file type")
	}

	header, _, err := image.DecodeConfig(bytes.NewReader(upload.Content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	if header.Width <= 0 || header.Height <= 0 ||
		int64(header.Width)*int64(header.Height) > MaxSourcePixels {
		return "", models.NewValidationError("Image dimensions too large")
	}

	decoded, _, err := image.Decode(bytes.NewReader(upload.Content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, resizeToFit(decoded, s.maxDimension), &webp.Options{Quality: WebPQuality}); err != nil {
		return "", models.NewInternalError(err)
	}

	name := uuid.NewString() + ".webp"
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), buf.Bytes(), 0o600); err != nil {
		return "", models.NewInternalError(err)
	}
	return name, nil
}

// Path resolves a stored name to a file inside the store directory.
func (s *LocalAvatarStore) Path(name string) (string, error) {
	base := filepath.Base(name)
	if base != name || base == "." || base == string(filepath.Separator) {
		return "", models.NewNotFoundError("File", name)
	}
	full := filepath.Join(s.dir, base)
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return "", models.NewNotFoundError("File", name)
		}
		return "", models.NewInternalError(err)
	}
	return full, nil
}

// Remove deletes a stored avatar. Unknown names are not an error.
func (s *LocalAvatarStore) Remove(name string) error {
	full, err := s.Path(name)
	if models.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return models.NewInternalError(err)
	}
	return nil
}

func resizeToFit(src image.Image, maxSide int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSide && h <= maxSide {
		return src
	}

	scale := float64(maxSide) / float64(w)
	if hs := float64(maxSide) / float64(h); hs < scale {
		scale = hs
	}
	newW := max(1, int(float64(w)*scale))
	newH := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
