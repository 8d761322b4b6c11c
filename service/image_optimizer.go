package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Preview sizes of a bill image
const (
	SizeThumb  = "thumb"
	SizeMedium = "medium"
	SizeFull   = "full"
)

const (
	qualityThumb  = 60
	qualityMedium = 75
	// Max dimension in pixels
	maxSizeThumb  = 300
	maxSizeMedium = 800
)

// ValidPreviewSize reports whether size names a known bill image size.
func ValidPreviewSize(size string) bool {
	return size == SizeThumb || size == SizeMedium || size == SizeFull
}

// PreviewCache stores optimized bill previews on disk.
type PreviewCache struct {
	dir string
}

// NewPreviewCache creates a cache rooted at dir and makes sure the directory exists.
func NewPreviewCache(dir string) (*PreviewCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &PreviewCache{dir: dir}, nil
}

// Path returns the cache file of an order preview. The update time is part of the name so an
// edited order never serves a stale image.
func (c *PreviewCache) Path(orderID int64, updatedAt time.Time, size string) string {
	return filepath.Join(c.dir, fmt.Sprintf("bill_%d_%d_%s.jpg", orderID, updatedAt.Unix(), size))
}

// Read returns the cached bytes, or false when the file is absent.
func (c *PreviewCache) Read(path string) ([]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			zap.S().Warnf("⚠️ PreviewCache: read %s failed: %v", path, err)
		}
		return nil, false
	}
	return data, true
}

// Write stores bytes at path.
func (c *PreviewCache) Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	zap.S().Infof("✅ Preview cached: %s", path)
	return nil
}

// OptimizeImage converts an image to a resized JPEG.
// size is "thumb" or "medium"; anything else is treated as medium.
func OptimizeImage(imageData []byte, size string) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	zap.S().Debugf("📸 Image decoded: format=%s, bounds=%v", format, img.Bounds())

	maxDim, quality := maxSizeMedium, qualityMedium
	switch size {
	case SizeThumb:
		maxDim, quality = maxSizeThumb, qualityThumb
	case SizeMedium:
	default:
		zap.S().Warnf("⚠️ Unknown size '%s', defaulting to medium", size)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	resized := img
	if width > maxDim || height > maxDim {
		var newWidth, newHeight int
		if width > height {
			newWidth = maxDim
			newHeight = int(float64(height) * float64(maxDim) / float64(width))
		} else {
			newHeight = maxDim
			newWidth = int(float64(width) * float64(maxDim) / float64(height))
		}
		zap.S().Debugf("🔄 Resizing image: %dx%d -> %dx%d", width, height, newWidth, newHeight)
		resized = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}

	zap.S().Debugf("✅ Image optimized: size=%s, quality=%d, output_size=%d bytes", size, quality, buf.Len())
	return buf.Bytes(), nil
}
