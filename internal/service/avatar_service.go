package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"

	"pinmap/internal/config"
	"pinmap/internal/models"
	"pinmap/internal/repository"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMediaDir          = "/tmp/pinmap/media"
	DefaultAvatarMaxUploadMB = 5
	AvatarSize               = 256
	AvatarWebPQuality        = 80

	// MediaURLPrefix is where MediaDir is served.
	MediaURLPrefix = "/media"
	avatarSubdir   = "avatars"
)

type UploadAvatarInput struct {
	UserID  uint
	Content []byte
}

// AvatarService normalizes uploaded avatars to square WebP images in the
// local media store and points the profile at them.
type AvatarService struct {
	profiles           repository.ProfileRepository
	mediaDir           string
	maxUploadSizeBytes int64
}

func NewAvatarService(profiles repository.ProfileRepository, cfg *config.Config) *AvatarService {
	mediaDir := DefaultMediaDir
	maxUploadSizeMB := DefaultAvatarMaxUploadMB
	if cfg != nil {
		if cfg.MediaDir != "" {
			mediaDir = cfg.MediaDir
		}
		if cfg.AvatarMaxUploadMB > 0 {
			maxUploadSizeMB = cfg.AvatarMaxUploadMB
		}
	}
	return &AvatarService{
		profiles:           profiles,
		mediaDir:           mediaDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// MediaDir is the directory served under MediaURLPrefix.
func (s *AvatarService) MediaDir() string {
	return s.mediaDir
}

func (s *AvatarService) Upload(ctx context.Context, in UploadAvatarInput) (*models.Profile, error) {
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}
	if !isAllowedImageMIME(http.DetectContentType(in.Content)) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	square := resizeSquare(decoded, AvatarSize)
	var buf bytes.Buffer
	if err := webp.Encode(&buf, square, &webp.Options{Quality: AvatarWebPQuality}); err != nil {
		return nil, models.NewInternalError(err)
	}

	name := avatarFileName(in.UserID, buf.Bytes())
	path := filepath.Join(s.mediaDir, avatarSubdir, name)
	if err := writeBytesToFile(path, buf.Bytes()); err != nil {
		return nil, models.NewInternalError(err)
	}

	profile, err := s.profiles.GetByID(ctx, in.UserID)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	profile.AvatarURL = MediaURLPrefix + "/" + avatarSubdir + "/" + name
	if err := s.profiles.Update(ctx, profile); err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return profile, nil
}

// resizeSquare center-crops src to a square and scales it to size x size.
func resizeSquare(src image.Image, size int) image.Image {
	b := src.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, xdraw.Over, nil)
	return dst
}

func isAllowedImageMIME(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func avatarFileName(userID uint, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d:", userID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))[:32] + ".webp"
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
